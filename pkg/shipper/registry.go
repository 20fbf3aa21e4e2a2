package shipper

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered shipping carriers.
type Registry struct {
	shippers map[string]Shipper
	mu       sync.RWMutex
}

// NewRegistry creates a new shipper registry.
func NewRegistry() *Registry {
	return &Registry{
		shippers: make(map[string]Shipper),
	}
}

// Register adds a shipper to the registry.
func (r *Registry) Register(s Shipper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shippers[s.Name()] = s
}

// Get returns a shipper by name.
func (r *Registry) Get(name string) (Shipper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.shippers[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// All returns all registered shippers ordered by name.
func (r *Registry) All() []Shipper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Shipper, 0, len(r.shippers))
	for _, s := range r.shippers {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Names returns the sorted names of all registered shippers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.shippers))
	for name := range r.shippers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered shippers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shippers)
}

// CarrierRates are the rates one carrier quoted.
type CarrierRates struct {
	Carrier  string
	Rates    []Rate
	Duration time.Duration
}

// CarrierTimings are the delivery estimates one carrier returned.
type CarrierTimings struct {
	Carrier  string
	Timings  []Timing
	Duration time.Duration
}

// CarrierError is a failure of one carrier during a fan-out.
type CarrierError struct {
	Carrier  string
	Err      error
	Duration time.Duration
}

func (e *CarrierError) Error() string {
	return e.Carrier + ": " + e.Err.Error()
}

func (e *CarrierError) Unwrap() error {
	return e.Err
}

// FindAllRates quotes the shipment with all registered carriers in parallel.
// Errors from individual carriers are collected but don't fail the entire request.
func (r *Registry) FindAllRates(ctx context.Context, shipment *Shipment) ([]CarrierRates, []error) {
	return r.FindRatesFromCarriers(ctx, shipment, nil)
}

// FindRatesFromCarriers quotes the shipment with specific carriers, or all of
// them when carriers is empty. Results are ordered by carrier name; errors
// are *CarrierError values.
func (r *Registry) FindRatesFromCarriers(ctx context.Context, shipment *Shipment, carriers []string) ([]CarrierRates, []error) {
	return fanOut(ctx, r, carriers, func(ctx context.Context, s Shipper) (CarrierRates, error) {
		result, err := s.FindRates(ctx, shipment)
		if err != nil {
			return CarrierRates{}, err
		}
		return CarrierRates{Carrier: s.Name(), Rates: result.Data}, nil
	}, func(c *CarrierRates, d time.Duration) { c.Duration = d }, func(c CarrierRates) string { return c.Carrier })
}

// FindTimingsFromCarriers asks the given carriers, or all of them, for
// delivery estimates. Carriers without estimates fail with ErrNotSupported.
func (r *Registry) FindTimingsFromCarriers(ctx context.Context, shipment *Shipment, carriers []string) ([]CarrierTimings, []error) {
	return fanOut(ctx, r, carriers, func(ctx context.Context, s Shipper) (CarrierTimings, error) {
		finder, ok := s.(TimingsFinder)
		if !ok {
			return CarrierTimings{}, ErrNotSupported
		}
		result, err := finder.FindTimings(ctx, shipment)
		if err != nil {
			return CarrierTimings{}, err
		}
		return CarrierTimings{Carrier: s.Name(), Timings: result.Data}, nil
	}, func(c *CarrierTimings, d time.Duration) { c.Duration = d }, func(c CarrierTimings) string { return c.Carrier })
}

func fanOut[T any](
	ctx context.Context,
	r *Registry,
	carriers []string,
	call func(context.Context, Shipper) (T, error),
	setDuration func(*T, time.Duration),
	carrierOf func(T) string,
) ([]T, []error) {
	if len(carriers) == 0 {
		carriers = r.Names()
	}
	if len(carriers) == 0 {
		return nil, []error{ErrCarrierNotFound}
	}

	results := make([]T, 0, len(carriers))
	errs := make([]error, 0)
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)

	for _, name := range carriers {
		g.Go(func() error {
			s, err := r.Get(name)
			if err != nil {
				mu.Lock()
				errs = append(errs, &CarrierError{Carrier: name, Err: err})
				mu.Unlock()
				return nil
			}

			start := time.Now()
			result, err := call(ctx, s)
			elapsed := time.Since(start)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, &CarrierError{Carrier: name, Err: err, Duration: elapsed})
				return nil // Don't fail the group, continue with other carriers
			}
			setDuration(&result, elapsed)
			results = append(results, result)
			return nil
		})
	}

	_ = g.Wait()
	sort.Slice(results, func(i, j int) bool { return carrierOf(results[i]) < carrierOf(results[j]) })
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return results, errs
}
