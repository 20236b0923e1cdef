package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

type OpenAIConfig struct {
	BaseURL     string  `json:"base_url"`
	APIKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	FastModel   string  `json:"fast_model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type JobSearchConfig struct {
	SerpAPIKey string `json:"serpapi_key"`
	MaxResults int    `json:"max_results"`
}

type Config struct {
	Server struct {
		Host      string `json:"host"`
		Port      int    `json:"port"`
		Subpath   string `json:"subpath"`
		JWTSecret string `json:"jwtSecret"`
	} `json:"server"`
	Postgres struct {
		DSN string `json:"dsn"`
	} `json:"postgres"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	OpenAI    OpenAIConfig    `json:"openai"`
	JobSearch JobSearchConfig `json:"job_search"`
	Uploads   struct {
		Dir       string `json:"dir"`
		MaxSizeMB int    `json:"max_size_mb"`
	} `json:"uploads"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton)
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		// Minimal validation
		if c.Server.JWTSecret == "" {
			cfgErr = errors.New("jwtSecret must be set in config")
			return
		}
		if c.OpenAI.Model == "" {
			c.OpenAI.Model = "gpt-4o-mini"
		}
		if c.OpenAI.FastModel == "" {
			c.OpenAI.FastModel = c.OpenAI.Model
		}
		if c.Uploads.Dir == "" {
			c.Uploads.Dir = "uploads"
		}
		if c.Uploads.MaxSizeMB == 0 {
			c.Uploads.MaxSizeMB = 10
		}
		if c.JobSearch.MaxResults == 0 {
			c.JobSearch.MaxResults = 10
		}
		cfg = &c
	})
	return cfg, cfgErr
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
