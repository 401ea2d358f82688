package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != BackendSQLite {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, BackendSQLite)
	}
	if cfg.MatchPolicy != PolicyUnit {
		t.Fatalf("MatchPolicy = %q, want %q", cfg.MatchPolicy, PolicyUnit)
	}
	if cfg.RecentLimit != 6 {
		t.Fatalf("RecentLimit = %d, want 6", cfg.RecentLimit)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	data := `{"backend": "file", "match_policy": "keyword", "recent_limit": 10}`
	if err := os.WriteFile(configPath, []byte(data), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != BackendFile {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendFile)
	}
	if cfg.MatchPolicy != PolicyKeyword {
		t.Errorf("MatchPolicy = %q, want %q", cfg.MatchPolicy, PolicyKeyword)
	}
	if cfg.RecentLimit != 10 {
		t.Errorf("RecentLimit = %d, want 10", cfg.RecentLimit)
	}
	// Untouched fields keep defaults
	if cfg.WebPort != DefaultConfig().WebPort {
		t.Errorf("WebPort = %d, want %d", cfg.WebPort, DefaultConfig().WebPort)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"backend": "postgres"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error for unknown backend, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"backend": "file"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("FITTRACK_BACKEND", "memory")
	t.Setenv("FITTRACK_MATCH_POLICY", "keyword")
	t.Setenv("FITTRACK_WEB_PORT", "9000")
	t.Setenv("FITTRACK_PRETTY_LOG", "true")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendMemory)
	}
	if cfg.MatchPolicy != PolicyKeyword {
		t.Errorf("MatchPolicy = %q, want %q", cfg.MatchPolicy, PolicyKeyword)
	}
	if cfg.WebPort != 9000 {
		t.Errorf("WebPort = %d, want 9000", cfg.WebPort)
	}
	if !cfg.PrettyLog {
		t.Errorf("PrettyLog = false, want true")
	}
}

func TestLoad_EnvInvalidInt(t *testing.T) {
	t.Setenv("FITTRACK_RECENT_LIMIT", "six")

	if _, err := Load(t.TempDir()); err == nil {
		t.Fatalf("Load() expected error for non-numeric FITTRACK_RECENT_LIMIT, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["tracker_clear", "tracker_sample"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "tracker_clear" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "tracker_clear")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"redis backend", func(c *Config) { c.Backend = BackendRedis }, false},
		{"unknown policy", func(c *Config) { c.MatchPolicy = "fuzzy" }, true},
		{"zero recent limit", func(c *Config) { c.RecentLimit = 0 }, true},
		{"port too large", func(c *Config) { c.WebPort = 70000 }, true},
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

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{Backend: BackendSQLite, RecentLimit: 6}
	overlay := &Config{Backend: BackendRedis}

	result := Merge(base, overlay)

	if result.Backend != BackendRedis {
		t.Errorf("Backend = %q, want %q", result.Backend, BackendRedis)
	}
	if result.RecentLimit != 6 {
		t.Errorf("RecentLimit = %d, want 6", result.RecentLimit)
	}
}

func TestMerge_BooleanOr(t *testing.T) {
	result := Merge(&Config{PrettyLog: true}, &Config{PrettyLog: false})
	if !result.PrettyLog {
		t.Error("PrettyLog should be true when base is true")
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{DisabledTools: []string{"goal_add", " tracker_clear "}}
	overlay := &Config{DisabledTools: []string{"tracker_clear", "", "tracker_sample"}}

	result := Merge(base, overlay)

	want := []string{"goal_add", "tracker_clear", "tracker_sample"}
	if len(result.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", result.DisabledTools, want)
	}
	for i := range want {
		if result.DisabledTools[i] != want[i] {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, result.DisabledTools[i], want[i])
		}
	}
}

func TestMerge_AllowedPaths(t *testing.T) {
	result := Merge(
		&Config{AllowedPaths: []string{"/srv/a"}},
		&Config{AllowedPaths: []string{"/srv/b", "/srv/a"}, AllowUnsafePaths: true},
	)
	if len(result.AllowedPaths) != 2 {
		t.Errorf("AllowedPaths = %v, want 2 entries", result.AllowedPaths)
	}
	if !result.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be true when overlay is true")
	}
}

func TestBaseDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FITTRACK_HOME", dir)

	got, err := BaseDir()
	if err != nil {
		t.Fatalf("BaseDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("BaseDir() = %q, want %q", got, dir)
	}
}
