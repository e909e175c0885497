package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func noEnv(string) string { return "" }

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Input != "input.md" {
		t.Errorf("expected default input 'input.md', got %q", cfg.Input)
	}
	if !reflect.DeepEqual(cfg.SexpLanguages, []string{"sexp", "lisp", "scheme"}) {
		t.Errorf("unexpected default sexp languages %v", cfg.SexpLanguages)
	}
	if cfg.Watch.Debounce != 100*time.Millisecond {
		t.Errorf("expected default debounce 100ms, got %s", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %q", cfg.Logging.Level)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "DOC_DIR":
			return "/docs"
		case "LEVEL":
			return "debug"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple substitution",
			input:    "input: ${DOC_DIR}/a.md",
			expected: "input: /docs/a.md",
		},
		{
			name:     "with default (env set)",
			input:    "level: ${LEVEL:-info}",
			expected: "level: debug",
		},
		{
			name:     "with default (env not set)",
			input:    "level: ${UNSET_VAR:-warn}",
			expected: "level: warn",
		},
		{
			name:     "multiple substitutions",
			input:    "x: ${DOC_DIR}:${LEVEL}",
			expected: "x: /docs:debug",
		},
		{
			name:     "unset without default",
			input:    "x: ${UNSET_VAR}",
			expected: "x: ",
		},
		{
			name:     "no pattern",
			input:    "x: $HOME",
			expected: "x: $HOME",
		},
		{
			name:     "empty default",
			input:    "x: ${UNSET_VAR:-}",
			expected: "x: ",
		},
		{
			name:     "name starting with digit",
			input:    "x: ${1DOC}",
			expected: "x: ${1DOC}",
		},
		{
			name:     "name with space",
			input:    "x: ${DOC DIR}",
			expected: "x: ${DOC DIR}",
		},
		{
			name:     "empty name",
			input:    "x: ${}",
			expected: "x: ${}",
		},
		{
			name:     "invalid reference next to valid one",
			input:    "x: ${-bad}/${DOC_DIR}",
			expected: "x: ${-bad}//docs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(interpolateEnv([]byte(tt.input), getenv))
			if got != tt.expected {
				t.Errorf("interpolateEnv(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "rundown.yaml")

	configContent := `
input: notes/README.md
sexp_languages: [clojure, edn]
watch:
  debounce: 250ms
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, path, err := LoadWithPath(configPath, noEnv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if path != configPath {
		t.Errorf("expected resolved path %q, got %q", configPath, path)
	}
	if cfg.BaseDir != dir {
		t.Errorf("expected base dir %q, got %q", dir, cfg.BaseDir)
	}

	// Relative input is resolved against the config file
	expectedInput := filepath.Join(dir, "notes", "README.md")
	if cfg.Input != expectedInput {
		t.Errorf("expected input %q, got %q", expectedInput, cfg.Input)
	}
	if !reflect.DeepEqual(cfg.SexpLanguages, []string{"clojure", "edn"}) {
		t.Errorf("unexpected sexp languages %v", cfg.SexpLanguages)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %s", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %q", cfg.Logging.Level)
	}
	if !cfg.IsSexpLanguage("edn") || cfg.IsSexpLanguage("lisp") {
		t.Error("IsSexpLanguage does not follow configured languages")
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "rundown.yaml")
	if err := os.WriteFile(configPath, []byte("logging:\n  level: warn\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath, noEnv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Input != filepath.Join(dir, "input.md") {
		t.Errorf("expected default input resolved to config dir, got %q", cfg.Input)
	}
	if !cfg.IsSexpLanguage("lisp") {
		t.Error("expected default sexp languages to survive")
	}
	if cfg.Watch.Debounce != 100*time.Millisecond {
		t.Errorf("expected default debounce, got %s", cfg.Watch.Debounce)
	}
}

func TestLoadWithEnvInterpolation(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "rundown.yaml")

	configContent := `
input: ${RUNDOWN_DOC:-input.md}
logging:
  level: ${RUNDOWN_LEVEL:-info}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	getenv := func(key string) string {
		if key == "RUNDOWN_DOC" {
			return "/abs/doc.md"
		}
		return ""
	}

	cfg, err := Load(configPath, getenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Input != "/abs/doc.md" {
		t.Errorf("expected input '/abs/doc.md', got %q", cfg.Input)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %q", cfg.Logging.Level)
	}
}

func TestLoadParseError(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "rundown.yaml")
	if err := os.WriteFile(configPath, []byte("input: [unclosed\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath, noEnv)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr []string
	}{
		{
			name:   "valid defaults",
			modify: func(c *Config) {},
		},
		{
			name:    "empty input",
			modify:  func(c *Config) { c.Input = "" },
			wantErr: []string{"input is required"},
		},
		{
			name:    "bad language",
			modify:  func(c *Config) { c.SexpLanguages = []string{"lisp", "two words"} },
			wantErr: []string{`sexp_languages[1]: invalid language "two words"`},
		},
		{
			name:    "negative debounce",
			modify:  func(c *Config) { c.Watch.Debounce = -time.Second },
			wantErr: []string{"watch.debounce: must not be negative"},
		},
		{
			name:    "huge debounce",
			modify:  func(c *Config) { c.Watch.Debounce = time.Hour },
			wantErr: []string{"watch.debounce: 1h0m0s is too long"},
		},
		{
			name: "multiple problems reported together",
			modify: func(c *Config) {
				c.Input = ""
				c.Logging.Level = "loud"
			},
			wantErr: []string{"input is required", "invalid log level: loud"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			err := Validate(cfg)

			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.HasPrefix(err.Error(), "configuration errors:") {
				t.Errorf("unexpected error format: %v", err)
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("expected error containing %q, got %v", want, err)
				}
			}
		})
	}
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	// Explicit path not found
	if _, err := resolveConfigPath("/nonexistent/path/rundown.yaml", noEnv); err == nil {
		t.Error("expected error for nonexistent path")
	}

	// Nothing anywhere means defaults
	resolved, err := resolveConfigPath("", noEnv)
	if err != nil || resolved != "" {
		t.Errorf("expected no config, got %q, %v", resolved, err)
	}

	// XDG location
	xdgDir := filepath.Join(dir, ".config", "rundown")
	if err := os.MkdirAll(xdgDir, 0755); err != nil {
		t.Fatal(err)
	}
	xdgPath := filepath.Join(xdgDir, "rundown.yaml")
	if err := os.WriteFile(xdgPath, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	if resolved, _ := resolveConfigPath("", noEnv); resolved != xdgPath {
		t.Errorf("expected %q, got %q", xdgPath, resolved)
	}

	// ./rundown.yaml beats XDG
	if err := os.WriteFile("rundown.yaml", []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	if resolved, _ := resolveConfigPath("", noEnv); resolved != "rundown.yaml" {
		t.Errorf("expected rundown.yaml, got %q", resolved)
	}

	// RUNDOWN_CONFIG beats the working directory
	custom := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(custom, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	getenv := func(key string) string {
		if key == "RUNDOWN_CONFIG" {
			return custom
		}
		return ""
	}
	if resolved, _ := resolveConfigPath("", getenv); resolved != custom {
		t.Errorf("expected %q, got %q", custom, resolved)
	}

	// A dangling RUNDOWN_CONFIG is an error, not a silent fallback
	missing := func(key string) string {
		if key == "RUNDOWN_CONFIG" {
			return filepath.Join(dir, "missing.yaml")
		}
		return ""
	}
	if _, err := resolveConfigPath("", missing); err == nil {
		t.Error("expected error for missing RUNDOWN_CONFIG file")
	}

	// Explicit beats everything
	if resolved, _ := resolveConfigPath(custom, noEnv); resolved != custom {
		t.Errorf("expected %q, got %q", custom, resolved)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	cfg, path, err := LoadWithPath("", noEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected no config path, got %q", path)
	}
	if cfg.Input != "input.md" {
		t.Errorf("expected default input, got %q", cfg.Input)
	}
}
