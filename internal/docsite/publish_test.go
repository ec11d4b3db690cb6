package docsite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenOrInitCreatesRepository(t *testing.T) {
	cfg := &Config{
		Output:  t.TempDir(),
		Publish: PublishConfig{URL: "https://forge.example/pages.git", Branch: "pages"},
	}

	repo, err := openOrInit(cfg)
	require.NoError(t, err)
	remote, err := repo.Remote("origin")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://forge.example/pages.git"}, remote.Config().URLs)

	// A second call opens the same repository instead of re-initializing.
	again, err := openOrInit(cfg)
	require.NoError(t, err)
	_, err = again.Remote("origin")
	assert.NoError(t, err)
}

func TestPublishRequiresURL(t *testing.T) {
	cfg := &Config{Output: t.TempDir()}
	err := Publish(cfg, &Build{ID: "x"})
	require.Error(t, err)
}

func TestPublishAuth(t *testing.T) {
	cfg := &Config{Publish: PublishConfig{Token: "secret"}}
	auth := publishAuth(cfg)
	require.NotNil(t, auth)

	assert.Nil(t, publishAuth(&Config{}))
}
