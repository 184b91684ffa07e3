package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadReadsDeepSeekEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvAPIKey, "sk-env")
	t.Setenv(EnvAPIBase, "https://api.deepseek.example/v1")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "sk-env", c.APIKey)
	require.Equal(t, "https://api.deepseek.example/v1", c.APIBaseURL)
	require.Equal(t, "deepseek-chat", c.DefaultModel)
	require.Equal(t, 15, c.HistoryLimit)
	require.True(t, c.ExecuteCode)
	require.NotEmpty(t, c.ChartsDir)
}

func TestSaveThenLoadRoundTripsFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := &Global{DefaultModel: "deepseek-r1", Provider: "openai", HistoryLimit: 3, ChartsDir: "/tmp/charts"}
	require.NoError(t, Save(in, path))

	out, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "deepseek-r1", out.DefaultModel)
	require.Equal(t, "openai", out.Provider)
	require.Equal(t, 3, out.HistoryLimit)
	require.Equal(t, "/tmp/charts", out.ChartsDir)
}

func TestLoadDotEnvOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvAPIKey+"=from-dotenv\n"), 0o644))
	t.Setenv(EnvAPIKey, "from-shell")

	require.NoError(t, LoadDotEnv(envFile))
	require.Equal(t, "from-dotenv", os.Getenv(EnvAPIKey))
}

func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
