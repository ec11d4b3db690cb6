package site

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageInfo struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

func TestGetJSONSuccess(t *testing.T) {
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"home","count":3}`))
	}))

	got, err := GetJSON[pageInfo](context.Background(), s, "/info")
	require.NoError(t, err)
	assert.Equal(t, pageInfo{Title: "home", Count: 3}, got)
}

func TestGetJSONFailurePropagatesWithoutOnFail(t *testing.T) {
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := GetJSON[pageInfo](context.Background(), s, "/info")
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestGetJSONOnFailValue(t *testing.T) {
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	want := pageInfo{Title: "fallback"}
	got, err := GetJSON[pageInfo](context.Background(), s, "/info", OnFailValue(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetJSONOnFailFuncCalledExactlyOnce(t *testing.T) {
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	calls := 0
	got, err := GetJSON[pageInfo](context.Background(), s, "/info", OnFailFunc(func() any {
		calls++
		return pageInfo{Title: "computed"}
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "computed", got.Title)
}

func TestGetJSONOnFailNotConsultedOnSuccess(t *testing.T) {
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"live"}`))
	}))

	calls := 0
	got, err := GetJSON[pageInfo](context.Background(), s, "/info", OnFailFunc(func() any {
		calls++
		return pageInfo{Title: "fallback"}
	}))
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, "live", got.Title)
}

func TestGetJSONOnFailCoversDecodeErrors(t *testing.T) {
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))

	got, err := GetJSON[pageInfo](context.Background(), s, "/info", OnFailValue(pageInfo{Title: "safe"}))
	require.NoError(t, err)
	assert.Equal(t, "safe", got.Title)

	_, err = GetJSON[pageInfo](context.Background(), s, "/info")
	assert.Error(t, err)
}

func TestGetJSONOnFailTypeMismatch(t *testing.T) {
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := GetJSON[pageInfo](context.Background(), s, "/info", OnFailValue("wrong type"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "on-fail value")
}

func TestGetTextOnFail(t *testing.T) {
	fail := true
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("hello"))
	}))

	got, err := GetText(context.Background(), s, "/page", OnFailValue("n/a"))
	require.NoError(t, err)
	assert.Equal(t, "n/a", got)

	fail = false
	got, err = GetText(context.Background(), s, "/page", OnFailValue("n/a"))
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestPostTextPropagatesTransportError(t *testing.T) {
	s, err := New(WithBase("http://127.0.0.1:1/"))
	require.NoError(t, err)
	_, err = PostText(context.Background(), s, "/x")
	assert.Error(t, err)
}
