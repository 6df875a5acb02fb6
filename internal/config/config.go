// Package config loads clubhub settings from defaults, the YAML config file,
// CLUBHUB_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix      = "CLUBHUB_"
	DirEnv         = "CLUBHUB_CONFIG_DIR"
	FileName       = "config.yaml"
	LogFileName    = "clubhub.log"
	DefaultAPIURL  = "http://localhost:8089"
	DefaultTimeout = 15 * time.Second
)

type APIConfig struct {
	URL     string        `koanf:"url" yaml:"url" validate:"required"`
	Token   string        `koanf:"token" yaml:"token,omitempty"`
	Timeout time.Duration `koanf:"timeout" yaml:"timeout" validate:"gt=0"`
}

type NavConfig struct {
	CloseDelay    time.Duration `koanf:"close_delay" yaml:"close_delay" validate:"gte=0"`
	CollapseDelay time.Duration `koanf:"collapse_delay" yaml:"collapse_delay" validate:"gte=0"`
}

type LogConfig struct {
	Level string `koanf:"level" yaml:"level" validate:"oneof=debug info warn error"`
	File  string `koanf:"file" yaml:"file,omitempty"`
}

type OutputConfig struct {
	Format string `koanf:"format" yaml:"format" validate:"oneof=json yaml table"`
	Pretty bool   `koanf:"pretty" yaml:"pretty"`
}

type Config struct {
	API    APIConfig    `koanf:"api" yaml:"api"`
	Nav    NavConfig    `koanf:"nav" yaml:"nav"`
	Log    LogConfig    `koanf:"log" yaml:"log"`
	Output OutputConfig `koanf:"output" yaml:"output"`

	// Dir is the config directory; FileUsed is the YAML file that was read,
	// if any.
	Dir      string `koanf:"-" yaml:"-"`
	FileUsed string `koanf:"-" yaml:"-"`
}

// Dir returns the clubhub config directory: $CLUBHUB_CONFIG_DIR when set,
// otherwise ~/.clubhub.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(DirEnv)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".clubhub"), nil
}

func defaults() map[string]any {
	return map[string]any{
		"api.url":            DefaultAPIURL,
		"api.token":          "",
		"api.timeout":        DefaultTimeout.String(),
		"nav.close_delay":    "150ms",
		"nav.collapse_delay": "300ms",
		"log.level":          "info",
		"log.file":           "",
		"output.format":      "json",
		"output.pretty":      false,
	}
}

// flagKeys maps command-line flag names to config keys. Flags not listed here
// are not configuration.
var flagKeys = map[string]string{
	"api":       "api.url",
	"token":     "api.token",
	"timeout":   "api.timeout",
	"format":    "output.format",
	"pretty":    "output.pretty",
	"log-level": "log.level",
	"log-file":  "log.file",
}

// envKey turns CLUBHUB_NAV_CLOSE_DELAY into nav.close_delay.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + rest
}

// Load builds the configuration. cfgFile overrides the default file location;
// a missing default file is not an error, a missing explicit one is.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	path := strings.TrimSpace(cfgFile)
	if path == "" {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Dir = dir
	cfg.FileUsed = path
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(dir, LogFileName)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate reports the first invalid setting by its config key.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config %s: %v fails %s%s", keyFor(fe.Namespace()), fe.Value(), fe.Tag(), param(fe.Param()))
		}
		return err
	}
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid config api.url: %q is not an http(s) URL", c.API.URL)
	}
	return nil
}

func param(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

// keyFor maps a validator namespace such as Config.Nav.CloseDelay to the
// config key nav.close_delay.
func keyFor(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	if s == "API" || s == "URL" {
		return strings.ToLower(s)
	}
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.API.Token != "" {
		c.API.Token = "********"
	}
	return c
}
