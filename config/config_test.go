package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/bikedash/pkg/errors"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	assert.Equal(t, ',', Default().DelimiterRune())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bikedash.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data_path":"hour.csv","addr":":9000","read_timeout":"2s"}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hour.csv", cfg.DataPath)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout.Std())
	assert.Equal(t, "info", cfg.LogLevel, "unset fields keep defaults")

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"read_timeout":"soon"}`), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bikedash.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"addr":":9000","language":"en","watch":false}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyEnv(env(map[string]string{
		"BIKEDASH_ADDR":  ":9100",
		"BIKEDASH_LANG":  "id",
		"BIKEDASH_WATCH": "true",
	})))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-addr", ":9200", "-write-timeout", "1m"}))

	assert.Equal(t, ":9200", cfg.Addr, "flag beats env")
	assert.Equal(t, "id", cfg.Language, "env beats file")
	assert.True(t, cfg.Watch)
	assert.Equal(t, time.Minute, cfg.WriteTimeout.Std())
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout.Std())
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"bad bool", map[string]string{"BIKEDASH_METRICS": "maybe"}},
		{"bad duration", map[string]string{"BIKEDASH_READ_TIMEOUT": "10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.ApplyEnv(env(tt.vars))
			var valErr *errors.ValidationError
			assert.True(t, errors.As(err, &valErr))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		param  string
	}{
		{"empty data", func(c *Config) { c.DataPath = " " }, "data_path"},
		{"long delimiter", func(c *Config) { c.Delimiter = ";;" }, "delimiter"},
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr"},
		{"bad language", func(c *Config) { c.Language = "not a tag" }, "language"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"negative timeout", func(c *Config) { c.ShutdownTimeout = Duration(-time.Second) }, "shutdown_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr), "got %v", err)
			assert.Equal(t, tt.param, valErr.ParamName)
		})
	}
}

func TestSemicolonDelimiter(t *testing.T) {
	cfg := Default()
	cfg.Delimiter = ";"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ';', cfg.DelimiterRune())
}
