package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"moviereview/pkg/tmdb"
)

// clearEnv blanks every bound variable so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOVIE_DATABASE", "/tmp/movies.db")
	t.Setenv("EDITOR", "nvim")
	t.Setenv("TMDB_API_KEY", "secret")
	t.Setenv("TMDB_LANGUAGE", "fr-FR")
	t.Setenv("REVIEW_LOG_LEVEL", "debug")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "/tmp/movies.db", cfg.DatabasePath)
	assert.Equal(t, "nvim", cfg.Editor)
	assert.Equal(t, "secret", cfg.TMDBAPIKey)
	assert.Equal(t, "fr-FR", cfg.TMDBLanguage)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOVIE_DATABASE", "/tmp/movies.db")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, tmdb.DefaultBaseURL, cfg.TMDBBaseURL)
	assert.Equal(t, tmdb.DefaultLanguage, cfg.TMDBLanguage)
	assert.Equal(t, tmdb.DefaultTimeout, cfg.TMDBTimeout)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.Editor)
	assert.Empty(t, cfg.TMDBAPIKey)
}

func TestLoad_RequiresDatabasePath(t *testing.T) {
	clearEnv(t)

	_, err := Load(NewViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOVIE_DATABASE")
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOVIE_DATABASE", "/tmp/movies.db")
	t.Setenv("TMDB_TIMEOUT", "0s")

	_, err := Load(NewViper())
	require.Error(t, err)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("EDITOR", "vim")

	path := filepath.Join(t.TempDir(), "review.yaml")
	content := "database:\n  path: /data/movies.db\neditor: nano\ntmdb:\n  api_key: from-file\n  timeout: 3s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := NewViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/data/movies.db", cfg.DatabasePath)
	assert.Equal(t, "vim", cfg.Editor, "environment wins over the config file")
	assert.Equal(t, "from-file", cfg.TMDBAPIKey)
	assert.Equal(t, 3*time.Second, cfg.TMDBTimeout)
}
