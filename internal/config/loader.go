package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TOWNCRIER_CONFIG is set
//  3. env (prefix TOWNCRIER_, "__" separating nested keys)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TOWNCRIER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, wrapLoadError(err)
		}
	}

	// Environment variables: TOWNCRIER_LOG_LEVEL, TOWNCRIER_EVENTS_API__TOKEN, ...
	// A double underscore separates nesting levels so single underscores
	// survive inside key names like log_level.
	envProvider := env.Provider("TOWNCRIER_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "towncrier_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, wrapLoadError(err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, wrapLoadError(err)
	}
	return &cfg, nil
}
