// Package config loads the dashboard settings.
//
// Values are resolved in three layers, each overriding the previous one:
// an optional JSON file, BIKEDASH_* environment variables, and command-line
// flags.
package config

import (
	"encoding/json"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/YuminosukeSato/bikedash/pkg/errors"
	"github.com/YuminosukeSato/bikedash/pkg/log"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "BIKEDASH_"

// Config holds the settings of the bikedash binary.
type Config struct {
	DataPath        string   `json:"data_path"`        // input CSV
	Delimiter       string   `json:"delimiter"`        // single character
	Watch           bool     `json:"watch"`            // reload when the CSV changes
	Addr            string   `json:"addr"`             // HTTP listen address
	Language        string   `json:"language"`         // default label language
	LogLevel        string   `json:"log_level"`        // debug, info, warn, error
	Metrics         bool     `json:"metrics"`          // serve /metrics
	ReadTimeout     Duration `json:"read_timeout"`     // HTTP server read timeout
	WriteTimeout    Duration `json:"write_timeout"`    // HTTP server write timeout
	ShutdownTimeout Duration `json:"shutdown_timeout"` // graceful shutdown budget
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataPath:        "all_data.csv",
		Delimiter:       ",",
		Addr:            ":8080",
		Language:        "en",
		LogLevel:        "info",
		Metrics:         true,
		ReadTimeout:     Duration(10 * time.Second),
		WriteTimeout:    Duration(30 * time.Second),
		ShutdownTimeout: Duration(10 * time.Second),
	}
}

// Load returns Default overlaid with the JSON file at path. An empty path
// skips the file. Fields missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: read %s", path)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables looked up with
// lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.NewValidationError(EnvPrefix+name, "must be a boolean", v)
		}
		*dst = b
		return nil
	}
	duration := func(name string, dst *Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return errors.NewValidationError(EnvPrefix+name, "must be a duration", v)
		}
		*dst = Duration(d)
		return nil
	}

	str("DATA", &c.DataPath)
	str("DELIMITER", &c.Delimiter)
	str("ADDR", &c.Addr)
	str("LANG", &c.Language)
	str("LOG_LEVEL", &c.LogLevel)
	for _, err := range []error{
		boolean("WATCH", &c.Watch),
		boolean("METRICS", &c.Metrics),
		duration("READ_TIMEOUT", &c.ReadTimeout),
		duration("WRITE_TIMEOUT", &c.WriteTimeout),
		duration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// RegisterFlags binds fs to c. Flag defaults are the current values of c,
// so parsing fs only changes what was passed explicitly.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.DataPath, "data", c.DataPath, "path of the input CSV")
	fs.StringVar(&c.Delimiter, "delimiter", c.Delimiter, "CSV field delimiter")
	fs.BoolVar(&c.Watch, "watch", c.Watch, "reload the dataset when the file changes")
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fs.StringVar(&c.Language, "lang", c.Language, "default label language (en, id)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&c.Metrics, "metrics", c.Metrics, "serve Prometheus metrics on /metrics")
	fs.DurationVar((*time.Duration)(&c.ReadTimeout), "read-timeout", time.Duration(c.ReadTimeout), "HTTP read timeout")
	fs.DurationVar((*time.Duration)(&c.WriteTimeout), "write-timeout", time.Duration(c.WriteTimeout), "HTTP write timeout")
	fs.DurationVar((*time.Duration)(&c.ShutdownTimeout), "shutdown-timeout", time.Duration(c.ShutdownTimeout), "graceful shutdown timeout")
}

// Validate checks every field and returns the first problem found.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataPath) == "" {
		return errors.NewValidationError("data_path", "must not be empty", c.DataPath)
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return errors.NewValidationError("delimiter", "must be a single character", c.Delimiter)
	}
	if c.Addr == "" {
		return errors.NewValidationError("addr", "must not be empty", c.Addr)
	}
	if _, err := language.Parse(c.Language); err != nil {
		return errors.NewValidationError("language", "must be a BCP 47 tag", c.Language)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for name, d := range map[string]Duration{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if d < 0 {
			return errors.NewValidationError(name, "must not be negative", time.Duration(d).String())
		}
	}
	return nil
}

// DelimiterRune returns the delimiter as a rune. Call Validate first.
func (c Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Duration wraps time.Duration so it reads and writes JSON as "10s".
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
