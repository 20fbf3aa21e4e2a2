package shipper

import (
	"fmt"
	"net/http"
)

// Request is the outbound call a carrier client made. It is kept on results
// only when Debug is set.
type Request struct {
	Method  string
	URL     string
	Body    string
	Headers map[string]string
	Debug   bool
}

// Response is the raw carrier reply.
type Response struct {
	Status  int
	Body    string
	Headers map[string]string
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r != nil && r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

// APIResult wraps successfully parsed carrier data.
type APIResult[T any] struct {
	Data             T
	OriginalRequest  *Request
	OriginalResponse *Response
}

// NewAPIResult builds a result. The request and response are attached only
// when req.Debug is true.
func NewAPIResult[T any](data T, req *Request, resp *Response) *APIResult[T] {
	result := &APIResult[T]{Data: data}
	if req != nil && req.Debug {
		result.OriginalRequest = req
		result.OriginalResponse = resp
	}
	return result
}

// APIFailure is returned when a carrier call could not be turned into data,
// either because the payload was malformed or because the carrier reported
// an error.
type APIFailure struct {
	Err              error
	OriginalRequest  *Request
	OriginalResponse *Response
}

// NewAPIFailure builds a failure. The request and response are attached only
// when req.Debug is true.
func NewAPIFailure(err error, req *Request, resp *Response) *APIFailure {
	failure := &APIFailure{Err: err}
	if req != nil && req.Debug {
		failure.OriginalRequest = req
		failure.OriginalResponse = resp
	}
	return failure
}

// Error implements the error interface.
func (f *APIFailure) Error() string {
	if f.Err == nil {
		return "api failure"
	}
	return fmt.Sprintf("api failure: %v", f.Err)
}

// Unwrap returns the underlying error.
func (f *APIFailure) Unwrap() error {
	return f.Err
}
