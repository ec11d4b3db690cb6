package site

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// RequestOption configures a single request.
type RequestOption func(*requestOptions) error

type requestOptions struct {
	params   url.Values
	form     url.Values
	jsonBody any
	rawBody  []byte
	rawType  string
	headers  http.Header
	onFail   *fallback
}

func newRequestOptions() *requestOptions {
	return &requestOptions{
		params:  make(url.Values),
		headers: make(http.Header),
	}
}

// bodyReader builds the request body and its Content-Type from whichever of
// JSONBody, Form or Body was set. Setting more than one is an error.
func (ro *requestOptions) bodyReader() (io.Reader, string, error) {
	set := 0
	if ro.jsonBody != nil {
		set++
	}
	if len(ro.form) > 0 {
		set++
	}
	if ro.rawBody != nil {
		set++
	}
	if set > 1 {
		return nil, "", fmt.Errorf("conflicting request bodies: only one of JSONBody, Form or Body may be set")
	}
	switch {
	case ro.jsonBody != nil:
		data, err := json.Marshal(ro.jsonBody)
		if err != nil {
			return nil, "", fmt.Errorf("encode JSON body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	case len(ro.form) > 0:
		return strings.NewReader(ro.form.Encode()), "application/x-www-form-urlencoded", nil
	case ro.rawBody != nil:
		return bytes.NewReader(ro.rawBody), ro.rawType, nil
	}
	return nil, "", nil
}

// Params merges query-string parameters into the request URL.
func Params(values url.Values) RequestOption {
	return func(ro *requestOptions) error {
		for k, vs := range values {
			for _, v := range vs {
				ro.params.Add(k, v)
			}
		}
		return nil
	}
}

// Param adds a single query-string parameter.
func Param(key, value string) RequestOption {
	return func(ro *requestOptions) error {
		ro.params.Add(key, value)
		return nil
	}
}

// Form sends values as an application/x-www-form-urlencoded body.
func Form(values url.Values) RequestOption {
	return func(ro *requestOptions) error {
		ro.form = values
		return nil
	}
}

// JSONBody encodes v as the JSON request body and sets the JSON
// Content-Type and Accept headers.
func JSONBody(v any) RequestOption {
	return func(ro *requestOptions) error {
		ro.jsonBody = v
		return nil
	}
}

// Body sends raw bytes with the given Content-Type.
func Body(data []byte, contentType string) RequestOption {
	return func(ro *requestOptions) error {
		ro.rawBody = data
		ro.rawType = contentType
		return nil
	}
}

// Header sets a header on the request, overriding Site defaults.
func Header(key, value string) RequestOption {
	return func(ro *requestOptions) error {
		ro.headers.Set(key, value)
		return nil
	}
}
