package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

const DefaultApiUrl = "https://insta-vibe-backend-8yxq.onrender.com"
const DevelopmentApiUrl = "http://localhost:8088"

const (
	SourceDefault     = "default"
	SourceDevelopment = "development"
	SourceFile        = "config file"
	SourceEnv         = "INSTAVIBE_API_URL"
	SourceFlag        = "--api flag"
)

type Config struct {
	ApiUrl     string            `yaml:"api_url,omitempty" json:"api_url,omitempty"`
	Quality    float64           `yaml:"quality,omitempty" json:"quality,omitempty"`
	Device     string            `yaml:"device,omitempty" json:"device,omitempty"`
	DevicePath string            `yaml:"device_path,omitempty" json:"device_path,omitempty"`
	Aliases    map[string]string `yaml:"aliases,omitempty" json:"aliases,omitempty"`

	// ApiUrlSource records which layer won, for `config show`.
	ApiUrlSource string `yaml:"-" json:"-"`
}

// Current is the resolved config, set once by the root command.
var Current *Config

// LoadFromFile reads the yaml config. A missing file is an empty config.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Resolve layers the file config, environment and --api flag on top of the defaults.
// Later layers win. The file config is not modified.
func Resolve(file *Config, getenv func(string) string, flagApi string) (*Config, error) {
	cfg := &Config{
		ApiUrl:       DefaultApiUrl,
		ApiUrlSource: SourceDefault,
	}
	if getenv("INSTAVIBE_ENV") == "development" {
		cfg.ApiUrl = DevelopmentApiUrl
		cfg.ApiUrlSource = SourceDevelopment
	}

	if file != nil {
		if file.ApiUrl != "" {
			cfg.ApiUrl = file.ApiUrl
			cfg.ApiUrlSource = SourceFile
		}
		cfg.Quality = file.Quality
		cfg.Device = file.Device
		cfg.DevicePath = file.DevicePath
		cfg.Aliases = file.Aliases
	}

	if v := strings.TrimSpace(getenv("INSTAVIBE_API_URL")); v != "" {
		cfg.ApiUrl = v
		cfg.ApiUrlSource = SourceEnv
	}
	if v := strings.TrimSpace(getenv("INSTAVIBE_QUALITY")); v != "" {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid INSTAVIBE_QUALITY %q: %v", v, err)
		}
		cfg.Quality = q
	}
	if v := strings.TrimSpace(getenv("INSTAVIBE_DEVICE")); v != "" {
		cfg.Device = v
	}
	if v := strings.TrimSpace(getenv("INSTAVIBE_DEVICE_PATH")); v != "" {
		cfg.DevicePath = v
	}

	if v := strings.TrimSpace(flagApi); v != "" {
		cfg.ApiUrl = v
		cfg.ApiUrlSource = SourceFlag
	}

	apiUrl, err := NormalizeApiUrl(cfg.ApiUrl)
	if err != nil {
		return nil, fmt.Errorf("api url from %s: %w", cfg.ApiUrlSource, err)
	}
	cfg.ApiUrl = apiUrl

	return cfg, nil
}

// NormalizeApiUrl checks for an absolute http(s) url and trims trailing slashes.
func NormalizeApiUrl(s string) (string, error) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %v", s, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid url %q: must be an absolute http or https url", s)
	}
	return strings.TrimRight(s, "/"), nil
}

// Load resolves config from the file at path and the process environment.
func Load(path, flagApi string) (*Config, error) {
	file, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return Resolve(file, os.Getenv, flagApi)
}
