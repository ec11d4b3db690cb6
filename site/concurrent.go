package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Request describes one call in a Concurrent batch.
type Request struct {
	// Method defaults to GET when empty.
	Method  string
	Target  string
	Options []RequestOption
}

// Result holds the outcome of one request in a Concurrent batch. Exactly one
// of Response and Err is set.
type Result struct {
	Response *Response
	Err      error
}

// ConcurrentOption configures a Concurrent batch.
type ConcurrentOption func(*concurrentOptions)

type concurrentOptions struct {
	maxWorkers int
	limiter    *rate.Limiter
}

// MaxWorkers caps the number of requests in flight at once. The default is
// min(32, NumCPU+4).
func MaxWorkers(n int) ConcurrentOption {
	return func(co *concurrentOptions) {
		if n > 0 {
			co.maxWorkers = n
		}
	}
}

// RateLimit throttles request starts to r per second with the given burst.
func RateLimit(r float64, burst int) ConcurrentOption {
	return func(co *concurrentOptions) {
		co.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU() + 4
	if n > 32 {
		n = 32
	}
	return n
}

// Concurrent issues the given requests with bounded parallelism and returns
// one Result per request, in request order. Cancellation of ctx stops
// scheduling; already started requests still report their own outcome.
// The returned error is the join of all transport errors, so a batch where
// every call completed returns nil even when some responses carry error
// statuses.
func (s *Site) Concurrent(ctx context.Context, reqs []Request, opts ...ConcurrentOption) ([]Result, error) {
	co := &concurrentOptions{maxWorkers: defaultWorkers()}
	for _, opt := range opts {
		opt(co)
	}

	results := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(co.maxWorkers)

	for i, req := range reqs {
		if gctx.Err() != nil {
			results[i] = Result{Err: gctx.Err()}
			continue
		}
		g.Go(func() error {
			if co.limiter != nil {
				if err := co.limiter.Wait(gctx); err != nil {
					results[i] = Result{Err: err}
					return nil
				}
			}
			method := req.Method
			if method == "" {
				method = http.MethodGet
			}
			resp, err := s.Do(gctx, method, req.Target, req.Options...)
			if err != nil {
				results[i] = Result{Err: err}
				return nil
			}
			results[i] = Result{Response: resp}
			return nil
		})
	}
	// Workers never return errors; they report through results. Wait only
	// synchronizes completion.
	_ = g.Wait()

	errs := make([]error, 0, len(reqs))
	for i, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("request %d (%s): %w", i, reqs[i].Target, res.Err))
		}
	}
	return results, errors.Join(errs...)
}

// ConcurrentJSON fans out the given requests and decodes every response body
// into T. Per-request OnFail options absorb individual failures the same way
// DoJSON does; only unabsorbed failures surface in the joined error.
func ConcurrentJSON[T any](ctx context.Context, s *Site, reqs []Request, opts ...ConcurrentOption) ([]T, error) {
	results, _ := s.Concurrent(ctx, reqs, opts...)
	out := make([]T, len(results))
	errs := make([]error, 0, len(results))
	for i, res := range results {
		fb, err := extractFallback(reqs[i].Options)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		err = res.Err
		if err == nil {
			err = res.Response.statusError()
		}
		if err == nil {
			var v T
			if err = res.Response.JSON(&v); err == nil {
				out[i] = v
				continue
			}
		}
		if fb != nil {
			v, ferr := resolveFallback[T](fb)
			if ferr != nil {
				errs = append(errs, ferr)
				continue
			}
			out[i] = v
			continue
		}
		errs = append(errs, fmt.Errorf("request %d (%s): %w", i, reqs[i].Target, err))
	}
	return out, errors.Join(errs...)
}
