package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
)

// Environment variables read outside the KMAP_ prefix.
const (
	configPathEnv = "KMAP_CONFIG"
	apiKeyEnv     = "OSU_API_KEY"
	envPrefix     = "KMAP_"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if KMAP_CONFIG is set
//  3. env (prefix KMAP_)
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file
// layer.
func LoadFile(_ context.Context, path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// KMAP_DATA_FILE -> data_file. Underscores are kept to match the flat
	// koanf tags; KMAP_CONFIG names the file and is not a key.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		if key == configPathEnv {
			return "", nil
		}
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.OsuAPIKey == "" {
		cfg.OsuAPIKey = os.Getenv(apiKeyEnv)
	}
	cfg.BasePath = normalizeBasePath(cfg.BasePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// listKeys are read from env as comma separated ids.
var listKeys = map[string]struct{}{
	"allow_list": {},
	"deny_list":  {},
}

// splitList splits a comma separated env value, dropping blanks.
func splitList(v string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the values both binaries depend on.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataFile == "":
		return fmt.Errorf("%w: data_file must not be empty", ErrInvalidConfig)
	case c.DefaultPageSize <= 0 || c.MaxPageSize <= 0:
		return fmt.Errorf("%w: page sizes must be positive", ErrInvalidConfig)
	case c.DefaultPageSize > c.MaxPageSize:
		return fmt.Errorf("%w: default_page_size exceeds max_page_size", ErrInvalidConfig)
	case c.MaxAttempts < 1:
		return fmt.Errorf("%w: max_attempts must be at least 1", ErrInvalidConfig)
	case c.PageLimit <= 0:
		return fmt.Errorf("%w: page_limit must be positive", ErrInvalidConfig)
	case c.RequestIntervalMS < 0 || c.RetryBackoffMS < 0:
		return fmt.Errorf("%w: intervals must not be negative", ErrInvalidConfig)
	}
	if c.DiscoverSince != "" {
		if _, ok := model.ParseDate(c.DiscoverSince); !ok {
			return fmt.Errorf("%w: discover_since %q is not a date", ErrInvalidConfig, c.DiscoverSince)
		}
	}
	if c.CollationLocale != "" {
		if _, err := language.Parse(c.CollationLocale); err != nil {
			return fmt.Errorf("%w: collation_locale %q: %w", ErrInvalidConfig, c.CollationLocale, err)
		}
	}
	return nil
}

// normalizeBasePath returns "" for the root or a path with a leading slash
// and no trailing slash.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
