package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations and falls back to
// Defaults() when no file exists.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the resolved path.
// The path is empty when no config file was found.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg := Defaults()
		if wd, err := os.Getwd(); err == nil {
			cfg.BaseDir = wd
		}
		return cfg, "", nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.BaseDir = baseDir

	// Resolve relative input path
	if cfg.Input != "" && !filepath.IsAbs(cfg.Input) {
		cfg.Input = filepath.Join(baseDir, cfg.Input)
	}

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}

	return cfg, absPath, nil
}

// Validate checks the configuration and reports every problem at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Input == "" {
		errs = append(errs, "input is required")
	}

	for i, lang := range cfg.SexpLanguages {
		if lang == "" || strings.ContainsAny(lang, " \t") {
			errs = append(errs, fmt.Sprintf("sexp_languages[%d]: invalid language %q", i, lang))
		}
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("watch.debounce: must not be negative (got %s)", cfg.Watch.Debounce))
	} else if cfg.Watch.Debounce > time.Minute {
		errs = append(errs, fmt.Sprintf("watch.debounce: %s is too long (max 1m)", cfg.Watch.Debounce))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// resolveConfigPath finds the config file to use, or "" if there is none.
// Search order: explicit path > RUNDOWN_CONFIG env > ./rundown.yaml > ~/.config/rundown/rundown.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	// Try RUNDOWN_CONFIG environment variable
	if envPath := getenv("RUNDOWN_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("RUNDOWN_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	// Try ./rundown.yaml
	if _, err := os.Stat("rundown.yaml"); err == nil {
		return "rundown.yaml", nil
	}

	// Try ~/.config/rundown/rundown.yaml
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "rundown", "rundown.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${NAME} or ${NAME:-default} where NAME is a shell
// variable name
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// interpolateEnv substitutes environment values into the raw config.
// Anything that is not a well-formed reference is copied through unchanged.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	var out []byte
	last := 0
	for _, m := range envPattern.FindAllSubmatchIndex(data, -1) {
		out = append(out, data[last:m[0]]...)
		value := getenv(string(data[m[2]:m[3]]))
		if value == "" && m[4] >= 0 {
			value = string(data[m[4]:m[5]])
		}
		out = append(out, value...)
		last = m[1]
	}
	return append(out, data[last:]...)
}
