package site

import (
	"context"
	"fmt"
	"net/http"
)

// fallback captures the OnFail setting of a request. Exactly one of value
// and fn is used.
type fallback struct {
	value any
	fn    func() any
}

// OnFailValue makes the decoding helpers return v instead of an error when
// the request or the decode fails. On success v is never consulted.
func OnFailValue(v any) RequestOption {
	return func(ro *requestOptions) error {
		if ro.onFail != nil {
			return fmt.Errorf("OnFail set twice")
		}
		ro.onFail = &fallback{value: v}
		return nil
	}
}

// OnFailFunc makes the decoding helpers call f exactly once and return its
// result when the request or the decode fails.
func OnFailFunc(f func() any) RequestOption {
	return func(ro *requestOptions) error {
		if f == nil {
			return fmt.Errorf("OnFailFunc: nil func")
		}
		if ro.onFail != nil {
			return fmt.Errorf("OnFail set twice")
		}
		ro.onFail = &fallback{fn: f}
		return nil
	}
}

// resolve produces the typed fallback result. A fallback of the wrong
// dynamic type is a programming error and reported as such.
func resolveFallback[T any](fb *fallback) (T, error) {
	var zero T
	v := fb.value
	if fb.fn != nil {
		v = fb.fn()
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("on-fail value is %T, want %T", v, zero)
	}
	return t, nil
}

// extractFallback replays opts to pick out the OnFail setting, if any.
func extractFallback(opts []RequestOption) (*fallback, error) {
	ro := newRequestOptions()
	for _, opt := range opts {
		if err := opt(ro); err != nil {
			return nil, err
		}
	}
	return ro.onFail, nil
}

// DoJSON issues a request and decodes the JSON response body into T.
// Transport errors, non-success statuses and decode failures all count as
// failure and are subject to the OnFail convention.
func DoJSON[T any](ctx context.Context, s *Site, method, target string, opts ...RequestOption) (T, error) {
	var zero T
	fb, err := extractFallback(opts)
	if err != nil {
		return zero, err
	}
	resp, err := s.Do(ctx, method, target, opts...)
	if err == nil {
		err = resp.statusError()
	}
	if err == nil {
		var v T
		if err = resp.JSON(&v); err == nil {
			return v, nil
		}
	}
	if fb != nil {
		return resolveFallback[T](fb)
	}
	return zero, err
}

// GetJSON issues a GET request and decodes the JSON response into T.
func GetJSON[T any](ctx context.Context, s *Site, target string, opts ...RequestOption) (T, error) {
	return DoJSON[T](ctx, s, http.MethodGet, target, opts...)
}

// PostJSON issues a POST request and decodes the JSON response into T.
func PostJSON[T any](ctx context.Context, s *Site, target string, opts ...RequestOption) (T, error) {
	return DoJSON[T](ctx, s, http.MethodPost, target, opts...)
}

// PutJSON issues a PUT request and decodes the JSON response into T.
func PutJSON[T any](ctx context.Context, s *Site, target string, opts ...RequestOption) (T, error) {
	return DoJSON[T](ctx, s, http.MethodPut, target, opts...)
}

// PatchJSON issues a PATCH request and decodes the JSON response into T.
func PatchJSON[T any](ctx context.Context, s *Site, target string, opts ...RequestOption) (T, error) {
	return DoJSON[T](ctx, s, http.MethodPatch, target, opts...)
}

// DeleteJSON issues a DELETE request and decodes the JSON response into T.
func DeleteJSON[T any](ctx context.Context, s *Site, target string, opts ...RequestOption) (T, error) {
	return DoJSON[T](ctx, s, http.MethodDelete, target, opts...)
}

// DoText issues a request and returns the response body as text, subject to
// the OnFail convention.
func DoText(ctx context.Context, s *Site, method, target string, opts ...RequestOption) (string, error) {
	fb, err := extractFallback(opts)
	if err != nil {
		return "", err
	}
	resp, err := s.Do(ctx, method, target, opts...)
	if err == nil {
		err = resp.statusError()
	}
	if err == nil {
		return resp.Text(), nil
	}
	if fb != nil {
		return resolveFallback[string](fb)
	}
	return "", err
}

// GetText issues a GET request and returns the body as text.
func GetText(ctx context.Context, s *Site, target string, opts ...RequestOption) (string, error) {
	return DoText(ctx, s, http.MethodGet, target, opts...)
}

// PostText issues a POST request and returns the body as text.
func PostText(ctx context.Context, s *Site, target string, opts ...RequestOption) (string, error) {
	return DoText(ctx, s, http.MethodPost, target, opts...)
}
