package config

import "time"

// Config represents the complete rundown configuration
type Config struct {
	BaseDir       string        `yaml:"-"`              // Directory containing config file, for resolving relative paths
	Input         string        `yaml:"input"`          // Document read when no file is given
	SexpLanguages []string      `yaml:"sexp_languages"` // Fence languages checked as S-expressions
	Watch         WatchConfig   `yaml:"watch"`
	Logging       LoggingConfig `yaml:"logging"`
}

// WatchConfig holds --watch settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Quiet period before re-running (default: 100ms)
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Input:         "input.md",
		SexpLanguages: []string{"sexp", "lisp", "scheme"},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// IsSexpLanguage reports whether a fence language holds S-expressions
func (c *Config) IsSexpLanguage(lang string) bool {
	for _, l := range c.SexpLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
