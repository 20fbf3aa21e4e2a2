package httpapi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// ErrNoMockResponse is returned by Mock when nothing was queued.
var ErrNoMockResponse = errors.New("no mock response queued")

// Mock is a Doer for testing. It records every request and replays queued
// responses in order.
type Mock struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	// OnDo, when set, replaces the queue.
	OnDo func(ctx context.Context, req *shipper.Request) (*shipper.Response, error)

	mu        sync.Mutex
	responses []*shipper.Response
	requests  []*shipper.Request
}

// NewMock creates a new mock with an empty queue.
func NewMock() *Mock {
	return &Mock{}
}

// Respond queues a response.
func (m *Mock) Respond(status int, body string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, &shipper.Response{Status: status, Body: body})
	return m
}

// Requests returns the requests seen so far.
func (m *Mock) Requests() []*shipper.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*shipper.Request(nil), m.requests...)
}

// LastRequest returns the most recent request, or nil.
func (m *Mock) LastRequest() *shipper.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// Do implements Doer.
func (m *Mock) Do(ctx context.Context, req *shipper.Request) (*shipper.Response, error) {
	if m.SimulateLatency > 0 {
		select {
		case <-time.After(m.SimulateLatency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.SimulateErrors {
		return nil, shipper.NewShipperError("mock", shipper.CodeHTTPError, "Simulated API error")
	}

	if m.OnDo != nil {
		return m.OnDo(ctx, req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.responses) == 0 {
		return nil, ErrNoMockResponse
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

var _ Doer = (*Mock)(nil)
