package site

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileJarRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	var gotCookie string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s3cret", Path: "/"})
	})

	jar, err := NewFileJar(path)
	require.NoError(t, err)
	s, srv := newTestSite(t, handler)
	s.client.Jar = jar

	_, err = s.Get(context.Background(), "/login")
	require.NoError(t, err)
	require.NoError(t, jar.Save())

	// A fresh jar from the same file carries the session over.
	jar2, err := NewFileJar(path)
	require.NoError(t, err)
	s2, err := New(WithBase(srv.URL), WithCookieJar(jar2))
	require.NoError(t, err)
	_, err = s2.Get(context.Background(), "/login")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", gotCookie)
}

func TestFileJarMissingFile(t *testing.T) {
	jar, err := NewFileJar(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.NotNil(t, jar)
}
