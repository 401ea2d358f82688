package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Goal matching policies (see aggregate.Policy).
const (
	PolicyUnit    = "unit"
	PolicyKeyword = "keyword"
)

// Config holds application configuration.
type Config struct {
	// Backend selects the key-value slot holding the snapshot: sqlite|file|redis|memory.
	Backend string `json:"backend"`

	// MatchPolicy decides which activities count toward a goal.
	// "unit" counts every activity with the goal's unit; "keyword" also requires
	// the title keyword test to pass.
	MatchPolicy string `json:"match_policy"`

	// RecentLimit is the length of the recent-activities list.
	RecentLimit int `json:"recent_limit"`

	// Redis connection, only used by the redis backend.
	RedisAddr     string `json:"redis_addr,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty"`
	RedisPassword string `json:"redis_password,omitempty"`

	// DBMaxOpenConns limits open SQLite connections. 0 means sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits idle SQLite connections. 0 means sql.DB default.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// LogLevel is one of debug|info|warn|error.
	LogLevel string `json:"log_level"`

	// PrettyLog switches to the colored development encoder.
	PrettyLog bool `json:"pretty_log,omitempty"`

	// WebBind and WebPort are the listen address of `fittrack serve`.
	WebBind string `json:"web_bind"`
	WebPort int    `json:"web_port"`

	// AllowedPaths are extra absolute directories export/import may touch,
	// in addition to <base>/exports.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths lifts the directory restriction on export/import paths.
	// Symlink checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:     BackendSQLite,
		MatchPolicy: PolicyUnit,
		RecentLimit: 6,
		RedisAddr:   "localhost:6379",
		LogLevel:    "info",
		WebBind:     "127.0.0.1",
		WebPort:     8787,
	}
}

// BaseDir returns the data directory: $FITTRACK_HOME, or ~/.fittrack.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("FITTRACK_HOME")); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".fittrack"), nil
}

// Load loads configuration from baseDir/config.json and applies FITTRACK_*
// environment overrides on top.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.fittrack.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// ApplyEnv overrides fields from FITTRACK_* environment variables.
func ApplyEnv(cfg *Config) error {
	setString(&cfg.Backend, "FITTRACK_BACKEND")
	setString(&cfg.MatchPolicy, "FITTRACK_MATCH_POLICY")
	setString(&cfg.RedisAddr, "FITTRACK_REDIS_ADDR")
	setString(&cfg.RedisPassword, "FITTRACK_REDIS_PASSWORD")
	setString(&cfg.LogLevel, "FITTRACK_LOG_LEVEL")
	setString(&cfg.WebBind, "FITTRACK_WEB_BIND")

	if err := setInt(&cfg.RecentLimit, "FITTRACK_RECENT_LIMIT"); err != nil {
		return err
	}
	if err := setInt(&cfg.RedisDB, "FITTRACK_REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&cfg.WebPort, "FITTRACK_WEB_PORT"); err != nil {
		return err
	}

	if v, ok := lookup("FITTRACK_PRETTY_LOG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FITTRACK_PRETTY_LOG: %w", err)
		}
		cfg.PrettyLog = b
	}
	return nil
}

// Validate rejects unknown enum values and out-of-range numbers.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFile, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want sqlite|file|redis|memory)", c.Backend)
	}
	switch c.MatchPolicy {
	case PolicyUnit, PolicyKeyword:
	default:
		return fmt.Errorf("unknown match_policy %q (want unit|keyword)", c.MatchPolicy)
	}
	if c.RecentLimit < 1 {
		return fmt.Errorf("recent_limit must be positive, got %d", c.RecentLimit)
	}
	if c.WebPort < 1 || c.WebPort > 65535 {
		return fmt.Errorf("web_port out of range: %d", c.WebPort)
	}
	return nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Backend = firstString(overlay.Backend, base.Backend)
	result.MatchPolicy = firstString(overlay.MatchPolicy, base.MatchPolicy)
	result.RedisAddr = firstString(overlay.RedisAddr, base.RedisAddr)
	result.RedisPassword = firstString(overlay.RedisPassword, base.RedisPassword)
	result.LogLevel = firstString(overlay.LogLevel, base.LogLevel)
	result.WebBind = firstString(overlay.WebBind, base.WebBind)

	result.RecentLimit = firstInt(overlay.RecentLimit, base.RecentLimit)
	result.RedisDB = firstInt(overlay.RedisDB, base.RedisDB)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)
	result.WebPort = firstInt(overlay.WebPort, base.WebPort)

	// Booleans: overlay wins if true, else base
	result.PrettyLog = base.PrettyLog || overlay.PrettyLog
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return strings.TrimSpace(overlay)
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
