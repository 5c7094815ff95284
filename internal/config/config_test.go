package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Paths) != 1 || cfg.Paths[0] != "." {
		t.Errorf("Paths = %v, want [.]", cfg.Paths)
	}
	if cfg.OutputFile != "output" {
		t.Errorf("OutputFile = %q, want %q", cfg.OutputFile, "output")
	}
	if cfg.Formats != "default" {
		t.Errorf("Formats = %q, want %q", cfg.Formats, "default")
	}
	if cfg.Depth != 0 {
		t.Errorf("Depth = %d, want 0", cfg.Depth)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
}

// TestLoadConfigValidFile tests loading a valid JSON config file
func TestLoadConfigValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configContent := `{
  "paths": ["src", "docs"],
  "output_file": "flattened.txt",
  "formats": "json,markdown",
  "depth": 3,
  "ignore_errors": true,
  "exclude_files": ["\\.log$"],
  "history": {"enabled": true, "db_path": "/tmp/history.db"}
}`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if len(cfg.Paths) != 2 || cfg.Paths[0] != "src" {
		t.Errorf("Paths = %v, want [src docs]", cfg.Paths)
	}
	if cfg.OutputFile != "flattened.txt" {
		t.Errorf("OutputFile = %q, want %q", cfg.OutputFile, "flattened.txt")
	}
	if cfg.Formats != "json,markdown" {
		t.Errorf("Formats = %q, want %q", cfg.Formats, "json,markdown")
	}
	if cfg.Depth != 3 {
		t.Errorf("Depth = %d, want 3", cfg.Depth)
	}
	if !cfg.IgnoreErrors {
		t.Error("IgnoreErrors = false, want true")
	}
	if len(cfg.ExcludeFiles) != 1 {
		t.Errorf("ExcludeFiles = %v, want one pattern", cfg.ExcludeFiles)
	}
	if !cfg.History.Enabled || cfg.History.DBPath != "/tmp/history.db" {
		t.Errorf("History = %+v, want enabled with /tmp/history.db", cfg.History)
	}

	// Keys absent from the file keep defaults
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default %q", cfg.LogLevel, "info")
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want default 1", cfg.Workers)
	}
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}
	if cfg.OutputFile != "output" {
		t.Errorf("OutputFile = %q, want default %q", cfg.OutputFile, "output")
	}
}

// TestLoadConfigMalformed tests that malformed JSON is an error
func TestLoadConfigMalformed(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("LoadConfig() expected error for malformed JSON")
	}
}

// TestLoadConfigFromDir tests the .singlefile/config.json convention
func TestLoadConfigFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, ".singlefile")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(`{"depth": 7}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfigFromDir(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfigFromDir() error = %v", err)
	}
	if cfg.Depth != 7 {
		t.Errorf("Depth = %d, want 7", cfg.Depth)
	}
}

// TestMergeWithFlags verifies flags override file values and nil flags don't
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Depth = 5
	cfg.Formats = "json"

	depth := 2
	outputFile := "custom.md"
	ignoreErrors := true

	cfg.MergeWithFlags(FlagOverrides{
		Depth:        &depth,
		OutputFile:   &outputFile,
		IgnoreErrors: &ignoreErrors,
	})

	if cfg.Depth != 2 {
		t.Errorf("Depth = %d, want 2 (flag override)", cfg.Depth)
	}
	if cfg.OutputFile != "custom.md" {
		t.Errorf("OutputFile = %q, want %q", cfg.OutputFile, "custom.md")
	}
	if !cfg.IgnoreErrors {
		t.Error("IgnoreErrors = false, want true")
	}
	if cfg.Formats != "json" {
		t.Errorf("Formats = %q, want unchanged %q", cfg.Formats, "json")
	}
}

// TestValidate verifies validation of configuration values
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty paths", func(c *Config) { c.Paths = nil }, true},
		{"empty output file", func(c *Config) { c.OutputFile = "" }, true},
		{"negative depth", func(c *Config) { c.Depth = -1 }, true},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"history enabled without path", func(c *Config) {
			c.History.Enabled = true
			c.History.DBPath = ""
		}, true},
		{"history enabled with path", func(c *Config) {
			c.History.Enabled = true
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestPrimaryRoot verifies the display-path base root selection
func TestPrimaryRoot(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.PrimaryRoot() != "." {
		t.Errorf("PrimaryRoot() = %q, want %q", cfg.PrimaryRoot(), ".")
	}

	cfg.Paths = []string{"src", "docs"}
	if cfg.PrimaryRoot() != "src" {
		t.Errorf("PrimaryRoot() = %q, want %q", cfg.PrimaryRoot(), "src")
	}

	cfg.Paths = nil
	if cfg.PrimaryRoot() != "." {
		t.Errorf("PrimaryRoot() = %q, want %q for empty paths", cfg.PrimaryRoot(), ".")
	}
}
