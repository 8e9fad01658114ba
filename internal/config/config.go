package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted in Config.Backend.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds application configuration.
type Config struct {
	// DebounceMs is the quiet period before the active draft is written, in milliseconds
	DebounceMs int `json:"debounce_ms"`

	// Backend selects the keyed storage: "sqlite" (default), "redis" or "memory".
	Backend string `json:"backend,omitempty"`

	// KeyPrefix namespaces the storage keys (prefix.draft, prefix.visited, prefix.drafts).
	KeyPrefix string `json:"key_prefix,omitempty"`

	// RedisAddr is host:port of the Redis server when Backend is "redis".
	RedisAddr string `json:"redis_addr,omitempty"`

	// RedisDB selects the Redis logical database.
	RedisDB int `json:"redis_db,omitempty"`

	// RedisPassword is only read from the environment (QUIRE_REDIS_PASSWORD).
	RedisPassword string `json:"-"`

	// DemoSeedPath points at a YAML or JSON demo seed replacing the built-in one.
	DemoSeedPath string `json:"demo_seed_path,omitempty"`

	// FeedLimit caps how many feed items become sources in one import.
	FeedLimit int `json:"feed_limit,omitempty"`

	// AllowedPaths is an allowlist of directories for export operations.
	// Paths outside ~/.quire/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DebounceMs: 500,
		Backend:    BackendSQLite,
		KeyPrefix:  "quire",
		RedisAddr:  "localhost:6379",
		FeedLimit:  10,
	}
}

// Debounce returns the debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want sqlite, redis or memory)", c.Backend)
	}
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must be non-negative, got %d", c.DebounceMs)
	}
	if strings.TrimSpace(c.KeyPrefix) == "" {
		return fmt.Errorf("key_prefix must not be empty")
	}
	return nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.quire.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.quire) and repo (.quire) directories.
// Repo config is found by walking upward from startDir to find the nearest .quire/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .quire/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".quire", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadEnv reads dir/.env (if present) into the process environment without
// overriding variables that are already set, then applies QUIRE_* overrides.
func LoadEnv(cfg *Config, dir string) error {
	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("load %s: %w", envPath, err)
		}
	}
	return ApplyEnv(cfg, os.LookupEnv)
}

// ApplyEnv overrides scalar settings from QUIRE_* variables.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("QUIRE_BACKEND"); ok && v != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup("QUIRE_REDIS_ADDR"); ok && v != "" {
		cfg.RedisAddr = v
	}
	if v, ok := lookup("QUIRE_REDIS_PASSWORD"); ok {
		cfg.RedisPassword = v
	}
	if v, ok := lookup("QUIRE_DEBOUNCE_MS"); ok && v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QUIRE_DEBOUNCE_MS: %w", err)
		}
		cfg.DebounceMs = ms
	}
	if v, ok := lookup("QUIRE_DEMO_SEED"); ok && v != "" {
		cfg.DemoSeedPath = v
	}
	return nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.DebounceMs = pickInt(overlay.DebounceMs, base.DebounceMs)
	result.Backend = pickString(overlay.Backend, base.Backend)
	result.KeyPrefix = pickString(overlay.KeyPrefix, base.KeyPrefix)
	result.RedisAddr = pickString(overlay.RedisAddr, base.RedisAddr)
	result.RedisDB = pickInt(overlay.RedisDB, base.RedisDB)
	result.RedisPassword = pickString(overlay.RedisPassword, base.RedisPassword)
	result.DemoSeedPath = pickString(overlay.DemoSeedPath, base.DemoSeedPath)
	result.FeedLimit = pickInt(overlay.FeedLimit, base.FeedLimit)
	result.DBMaxOpenConns = pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickString(overlay, base string) string {
	if overlay != "" {
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
