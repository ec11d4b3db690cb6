package site

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
)

// Response is a fully buffered HTTP response. The underlying connection is
// already released, so Response carries no Close obligation.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	// URL is the final request URL after redirects.
	URL *url.URL

	body []byte
}

// OK reports whether the status code is below 400.
func (r *Response) OK() bool {
	return r.StatusCode < 400
}

// Bytes returns the raw response body.
func (r *Response) Bytes() []byte {
	return r.body
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.body)
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("decode JSON response: %w", err)
	}
	return nil
}

// StatusError is returned by decoding helpers when the response status
// indicates failure.
type StatusError struct {
	StatusCode int
	Status     string
	URL        *url.URL
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.URL, e.Status)
}

func (r *Response) statusError() error {
	if r.OK() {
		return nil
	}
	return &StatusError{StatusCode: r.StatusCode, Status: r.Status, URL: r.URL}
}
