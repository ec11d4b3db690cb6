package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSite(t *testing.T, handler http.Handler) (*Site, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s, err := New(WithBase(srv.URL))
	require.NoError(t, err)
	return s, srv
}

func TestGetReturnsResponseForAnyStatus(t *testing.T) {
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))

	resp, err := s.Get(context.Background(), "/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.Equal(t, "missing", resp.Text())
}

func TestDefaultHeaders(t *testing.T) {
	var got http.Header
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))

	_, err := s.Get(context.Background(), "/", Header("X-Token", "abc"))
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, got.Get("User-Agent"))
	assert.Equal(t, "*/*", got.Get("Accept"))
	assert.Equal(t, "abc", got.Get("X-Token"))
}

func TestJSONBodySetsContentType(t *testing.T) {
	var contentType, accept string
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		accept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := s.Post(context.Background(), "/", JSONBody(map[string]int{"a": 1}))
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "application/json", accept)
}

func TestParamsMergeIntoQuery(t *testing.T) {
	var query url.Values
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
	}))

	_, err := s.Get(context.Background(), "/list?page=2", Param("q", "foo"), Param("q", "bar"))
	require.NoError(t, err)
	assert.Equal(t, "2", query.Get("page"))
	assert.Equal(t, []string{"foo", "bar"}, query["q"])
}

func TestRelativeWithoutBase(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "/x")
	assert.ErrorIs(t, err, ErrNoBase)
}

// TestResolveEquivalence checks that an absolute-path target and the
// equivalent relative-to-document path resolve to the same URL.
func TestResolveEquivalence(t *testing.T) {
	s, err := New(WithBase("https://docs.python.org/3/library"))
	require.NoError(t, err)

	abs, err := s.Resolve("/3/tutorial/controlflow.html")
	require.NoError(t, err)

	doc, err := s.Resolve("runpy.html")
	require.NoError(t, err)
	rel, err := url.Parse("../tutorial/controlflow.html")
	require.NoError(t, err)
	viaDoc := doc.ResolveReference(rel)

	assert.Equal(t, viaDoc.String(), abs.String())
	assert.Equal(t, "https://docs.python.org/3/tutorial/controlflow.html", abs.String())
}

func TestResolveTreatsBaseAsDirectory(t *testing.T) {
	s, err := New(WithBase("https://host.example/api"))
	require.NoError(t, err)
	u, err := s.Resolve("v1/items")
	require.NoError(t, err)
	assert.Equal(t, "https://host.example/api/v1/items", u.String())
}

func TestResolveAbsoluteTargetPassesThrough(t *testing.T) {
	s, err := New(WithBase("https://host.example/api"))
	require.NoError(t, err)
	u, err := s.Resolve("https://other.example/x")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example/x", u.String())
}

func TestConflictingBodies(t *testing.T) {
	s, _ := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	_, err := s.Post(context.Background(), "/", JSONBody(1), Form(url.Values{"a": {"b"}}))
	assert.Error(t, err)
}

func TestWithInsecureTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	strict, err := New(WithBase(srv.URL))
	require.NoError(t, err)
	_, err = strict.Get(context.Background(), "x")
	require.Error(t, err, "self-signed certificate is rejected by default")

	lax, err := New(WithBase(srv.URL), WithInsecureTLS())
	require.NoError(t, err)
	resp, err := lax.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
}
