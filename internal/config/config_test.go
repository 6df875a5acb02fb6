package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("api", "", "")
	fs.String("token", "", "")
	fs.String("format", "json", "")
	fs.Bool("pretty", false, "")
	fs.String("log-level", "info", "")
	fs.String("log-file", "", "")
	fs.Int("limit", 20, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DirEnv, dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, 150*time.Millisecond, cfg.Nav.CloseDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.Nav.CollapseDelay)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, filepath.Join(dir, LogFileName), cfg.Log.File)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, dir, cfg.Dir)
	assert.Empty(t, cfg.FileUsed)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DirEnv, dir)
	yml := "api:\n  url: http://file.example\n  token: from-file\nnav:\n  close_delay: 50ms\noutput:\n  format: yaml\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yml), 0o600))

	t.Setenv("CLUBHUB_API_TOKEN", "from-env")
	t.Setenv("CLUBHUB_NAV_COLLAPSE_DELAY", "1s")

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--format", "table", "--limit", "5"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), cfg.FileUsed)
	assert.Equal(t, "http://file.example", cfg.API.URL)
	assert.Equal(t, "from-env", cfg.API.Token)
	assert.Equal(t, 50*time.Millisecond, cfg.Nav.CloseDelay)
	assert.Equal(t, time.Second, cfg.Nav.CollapseDelay)
	assert.Equal(t, "table", cfg.Output.Format)
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	t.Setenv(DirEnv, t.TempDir())
	t.Setenv("CLUBHUB_OUTPUT_FORMAT", "yaml")

	fs := newFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output.Format)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	t.Setenv(DirEnv, t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		errSubstr string
	}{
		{name: "format", env: map[string]string{"CLUBHUB_OUTPUT_FORMAT": "xml"}, errSubstr: "output.format"},
		{name: "level", env: map[string]string{"CLUBHUB_LOG_LEVEL": "loud"}, errSubstr: "log.level"},
		{name: "url", env: map[string]string{"CLUBHUB_API_URL": "localhost"}, errSubstr: "api.url"},
		{name: "timeout", env: map[string]string{"CLUBHUB_API_TIMEOUT": "0s"}, errSubstr: "api.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(DirEnv, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "nav.close_delay", envKey("CLUBHUB_NAV_CLOSE_DELAY"))
	assert.Equal(t, "api.url", envKey("CLUBHUB_API_URL"))
}

func TestRedacted(t *testing.T) {
	cfg := Config{API: APIConfig{Token: "secret"}}
	assert.Equal(t, "********", cfg.Redacted().API.Token)
	assert.Equal(t, "secret", cfg.API.Token)
}
