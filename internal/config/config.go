package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Config represents the prreview configuration.
type Config struct {
	Owner              string        `json:"owner,omitempty"`
	Repo               string        `json:"repo,omitempty"`
	APIURL             string        `json:"apiUrl,omitempty"`
	WebhookURL         string        `json:"webhookUrl,omitempty"`
	OutputDir          string        `json:"outputDir"`
	Format             string        `json:"format"`
	Concurrency        int           `json:"concurrency"`
	ToolTimeoutSeconds int           `json:"toolTimeoutSeconds"`
	NodeScript         string        `json:"nodeScript"`
	DebugCalls         []string      `json:"debugCalls,omitempty"`
	Cache              CacheConfig   `json:"cache"`
	Privacy            PrivacyConfig `json:"privacy"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		OutputDir:          "./report",
		Format:             "markdown",
		Concurrency:        4,
		ToolTimeoutSeconds: 30,
		NodeScript:         "analyze_ts_ast.js",
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for prreview.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "prreview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "prreview"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "prreview"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "prreview"), nil
	default:
		return filepath.Join(home, ".config", "prreview"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// filePresence records which boolean fields the config file explicitly set.
// encoding/json cannot distinguish false from absent on a plain bool field,
// so the file is decoded a second time through pointer fields.
type filePresence struct {
	cacheEnabled  *bool
	redactSecrets *bool
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	cfg, _, err := loadFileWithPresence()
	return cfg, err
}

func loadFileWithPresence() (Config, filePresence, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, filePresence{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, filePresence{}, nil
		}
		return Config{}, filePresence{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, filePresence{}, fmt.Errorf("parsing config file: %w", err)
	}
	var probe struct {
		Cache struct {
			Enabled *bool `json:"enabled"`
		} `json:"cache"`
		Privacy struct {
			RedactSecrets *bool `json:"redactSecrets"`
		} `json:"privacy"`
	}
	// Same bytes already parsed above, so this cannot fail.
	_ = json.Unmarshal(data, &probe)
	return cfg, filePresence{probe.Cache.Enabled, probe.Privacy.RedactSecrets}, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, present, err := loadFileWithPresence()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg, present)
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	mergeOverrides(&cfg, overrides)
	resolveNodeScript(&cfg)

	return cfg, nil
}

// resolveNodeScript resolves a bare script name against the config directory
// so the analyzer script can live next to config.json. A path that exists
// relative to the working directory, or an absolute path, is left alone.
func resolveNodeScript(cfg *Config) {
	if cfg.NodeScript == "" || filepath.IsAbs(cfg.NodeScript) {
		return
	}
	if _, err := os.Stat(cfg.NodeScript); err == nil {
		return
	}
	dir, err := ConfigDir()
	if err != nil {
		return
	}
	if p := filepath.Join(dir, cfg.NodeScript); fileExists(p) {
		cfg.NodeScript = p
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func mergeFile(dst *Config, src Config, present filePresence) {
	if src.Owner != "" {
		dst.Owner = src.Owner
	}
	if src.Repo != "" {
		dst.Repo = src.Repo
	}
	if src.APIURL != "" {
		dst.APIURL = src.APIURL
	}
	if src.WebhookURL != "" {
		dst.WebhookURL = src.WebhookURL
	}
	if src.OutputDir != "" {
		dst.OutputDir = src.OutputDir
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.Concurrency > 0 {
		dst.Concurrency = src.Concurrency
	}
	if src.ToolTimeoutSeconds > 0 {
		dst.ToolTimeoutSeconds = src.ToolTimeoutSeconds
	}
	if src.NodeScript != "" {
		dst.NodeScript = src.NodeScript
	}
	if len(src.DebugCalls) > 0 {
		dst.DebugCalls = src.DebugCalls
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// Bool fields only apply when the file explicitly set them; both default
	// to true, so a plain zero-value merge would make them impossible to
	// disable from the file.
	if present.cacheEnabled != nil {
		dst.Cache.Enabled = *present.cacheEnabled
	}
	if present.redactSecrets != nil {
		dst.Privacy.RedactSecrets = *present.redactSecrets
	}
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("PRREVIEW_OWNER"); v != "" {
		cfg.Owner = v
	}
	if v := os.Getenv("PRREVIEW_REPO"); v != "" {
		cfg.Repo = v
	}
	if v := os.Getenv("GITHUB_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.WebhookURL = v
	}
	if v := os.Getenv("PRREVIEW_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("PRREVIEW_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("PRREVIEW_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PRREVIEW_CONCURRENCY must be an integer: %w", err)
		}
		cfg.Concurrency = n
	}
	if v := os.Getenv("PRREVIEW_TOOL_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PRREVIEW_TOOL_TIMEOUT must be an integer: %w", err)
		}
		cfg.ToolTimeoutSeconds = n
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["owner"]; ok && v != "" {
		cfg.Owner = v
	}
	if v, ok := overrides["repo"]; ok && v != "" {
		cfg.Repo = v
	}
	if v, ok := overrides["apiUrl"]; ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := overrides["webhookUrl"]; ok && v != "" {
		cfg.WebhookURL = v
	}
	if v, ok := overrides["outputDir"]; ok && v != "" {
		cfg.OutputDir = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["concurrency"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
	if v, ok := overrides["toolTimeout"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ToolTimeoutSeconds = n
		}
	}
	if v, ok := overrides["nodeScript"]; ok && v != "" {
		cfg.NodeScript = v
	}
	if v, ok := overrides["debugCalls"]; ok && v != "" {
		cfg.DebugCalls = splitList(v)
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "owner":
		cfg.Owner = value
	case "repo":
		cfg.Repo = value
	case "apiUrl":
		cfg.APIURL = value
	case "webhookUrl":
		cfg.WebhookURL = value
	case "outputDir":
		cfg.OutputDir = value
	case "format":
		cfg.Format = value
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("concurrency must be an integer: %w", err)
		}
		cfg.Concurrency = n
	case "toolTimeout", "toolTimeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		cfg.ToolTimeoutSeconds = n
	case "nodeScript":
		cfg.NodeScript = value
	case "debugCalls":
		cfg.DebugCalls = splitList(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
