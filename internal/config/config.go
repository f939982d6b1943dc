package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL          = "http://127.0.0.1:7344"
	DefaultTablePath       = "data.csv"
	DefaultPODir           = "uploaded_po"
	DefaultGRNDir          = "uploaded_grn"
	DefaultHistoryFileName = ".pogrn-history.db"
	DefaultLogLevel        = "debug"

	DefaultMaxUploadBytes     int64 = 25 * 1024 * 1024
	DefaultMultipartMaxMemory int64 = 8 * 1024 * 1024

	configFileName           = ".pogrn.toml"
	configDirEnvKey          = "POGRN_CONFIG_DIR"
	trustProjectConfigEnvKey = "POGRN_TRUST_PROJECT_CONFIG"
	dotenvFileName           = ".env"
)

// Config defines runtime configuration for pogrn.
type Config struct {
	TablePath                string   `toml:"table_path"`
	PODir                    string   `toml:"po_dir"`
	GRNDir                   string   `toml:"grn_dir"`
	AllowedExtensions        []string `toml:"allowed_extensions"`
	APIURL                   string   `toml:"api_url"`
	HistoryPath              string   `toml:"history_path"`
	LogLevel                 string   `toml:"log_level"`
	MaxUploadBytes           int64    `toml:"max_upload_bytes"`
	MultipartMaxMemory       int64    `toml:"multipart_max_memory"`
	TrustedProjectConfigPath string   `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		TablePath:          DefaultTablePath,
		PODir:              DefaultPODir,
		GRNDir:             DefaultGRNDir,
		AllowedExtensions:  []string{"pdf", "jpg", "png"},
		APIURL:             DefaultAPIURL,
		HistoryPath:        "",
		LogLevel:           DefaultLogLevel,
		MaxUploadBytes:     DefaultMaxUploadBytes,
		MultipartMaxMemory: DefaultMultipartMaxMemory,
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"table_path",
	"po_dir",
	"grn_dir",
	"allowed_extensions",
	"api_url",
	"history_path",
	"log_level",
	"max_upload_bytes",
	"multipart_max_memory",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "table_path":
		return c.TablePath, nil
	case "po_dir":
		return c.PODir, nil
	case "grn_dir":
		return c.GRNDir, nil
	case "allowed_extensions":
		return strings.Join(c.AllowedExtensions, ","), nil
	case "api_url":
		return c.APIURL, nil
	case "history_path":
		return c.HistoryPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "max_upload_bytes":
		return strconv.FormatInt(c.MaxUploadBytes, 10), nil
	case "multipart_max_memory":
		return strconv.FormatInt(c.MultipartMaxMemory, 10), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	data[key] = parsedValue

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// LoadDotenv loads a .env file from the working directory. Variables already present
// in the environment are left alone.
func LoadDotenv() error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	path := filepath.Join(cwd, dotenvFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	if err := LoadDotenv(); err != nil {
		return nil, err
	}

	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, configFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if cfg.HistoryPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.HistoryPath = filepath.Join(cwd, DefaultHistoryFileName)
		}
	}

	envOverrides := []struct {
		key    string
		target *string
	}{
		{"POGRN_TABLE", &cfg.TablePath},
		{"POGRN_PO_DIR", &cfg.PODir},
		{"POGRN_GRN_DIR", &cfg.GRNDir},
		{"POGRN_API_URL", &cfg.APIURL},
		{"POGRN_HISTORY", &cfg.HistoryPath},
		{"POGRN_LOG_LEVEL", &cfg.LogLevel},
	}
	for _, o := range envOverrides {
		if v := strings.TrimSpace(os.Getenv(o.key)); v != "" {
			*o.target = v
		}
	}
	if raw := strings.TrimSpace(os.Getenv("POGRN_ALLOWED_EXTENSIONS")); raw != "" {
		cfg.AllowedExtensions = splitCSV(raw)
	}

	cfg.normalize()

	return &cfg, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "max_upload_bytes", "multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "allowed_extensions":
		parts := splitCSV(value)
		if len(parts) == 0 {
			return nil, fmt.Errorf("%s must list at least one extension", key)
		}
		return parts, nil
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			return strings.ToLower(value), nil
		}
		return nil, fmt.Errorf("%s must be one of debug, info, warn, error", key)
	default:
		if value == "" {
			return nil, fmt.Errorf("%s must not be empty", key)
		}
		return value, nil
	}
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.TablePath) == "" {
		c.TablePath = DefaultTablePath
	}
	if strings.TrimSpace(c.PODir) == "" {
		c.PODir = DefaultPODir
	}
	if strings.TrimSpace(c.GRNDir) == "" {
		c.GRNDir = DefaultGRNDir
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.MultipartMaxMemory <= 0 {
		c.MultipartMaxMemory = DefaultMultipartMaxMemory
	}

	exts := make([]string, 0, len(c.AllowedExtensions))
	seen := map[string]struct{}{}
	for _, ext := range c.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = Default().AllowedExtensions
	}
	c.AllowedExtensions = exts
}
