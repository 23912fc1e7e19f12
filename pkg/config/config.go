// Package config loads service configuration from environment
// variables with an optional YAML file layered underneath: file values
// replace defaults, environment variables override both.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Environment  string `yaml:"environment"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	Port         string `yaml:"port"`
	DatabasePath string `yaml:"database_path"`

	// Refinement loop
	Domain            string  `yaml:"domain"`
	MaxRounds         int     `yaml:"max_rounds"`
	Tolerance         float64 `yaml:"tolerance"`
	ConvergenceWindow int     `yaml:"convergence_window"`
	RegressionRounds  int     `yaml:"regression_rounds"`

	// Learning adapter
	BaseThreshold float64 `yaml:"base_threshold"`
	EMAAlpha      float64 `yaml:"ema_alpha"`
	MinSamples    int     `yaml:"min_samples"`

	// Mediation
	ConfidenceFloor float64 `yaml:"confidence_floor"`

	// Batch extraction
	MaxConcurrent      int `yaml:"max_concurrent"`
	TimeoutPerItemSecs int `yaml:"timeout_per_item_secs"`

	// Periodic refinement, empty disables the schedule
	RefineCron string `yaml:"refine_cron"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Environment:        "development",
		LogLevel:           "info",
		LogFormat:          "text",
		Port:               "8080",
		DatabasePath:       "ontoforge.db",
		Domain:             "general",
		MaxRounds:          10,
		Tolerance:          0.02,
		ConvergenceWindow:  3,
		RegressionRounds:   3,
		BaseThreshold:      0.7,
		EMAAlpha:           0.3,
		MinSamples:         5,
		ConfidenceFloor:    0.3,
		MaxConcurrent:      4,
		TimeoutPerItemSecs: 30,
	}
}

// LoadConfig loads configuration from the optional YAML file named by
// ONTOFORGE_CONFIG, then applies environment variable overrides
func LoadConfig() (*Config, error) {
	config := Defaults()

	if path := os.Getenv("ONTOFORGE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.Environment = getEnv("ENVIRONMENT", config.Environment)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)
	config.LogFormat = getEnv("LOG_FORMAT", config.LogFormat)
	config.Port = getEnv("PORT", config.Port)
	config.DatabasePath = getEnv("DATABASE_PATH", config.DatabasePath)
	config.Domain = getEnv("REFINE_DOMAIN", config.Domain)
	config.MaxRounds = getEnvAsInt("MAX_ROUNDS", config.MaxRounds)
	config.Tolerance = getEnvAsFloat("TOLERANCE", config.Tolerance)
	config.ConvergenceWindow = getEnvAsInt("CONVERGENCE_WINDOW", config.ConvergenceWindow)
	config.RegressionRounds = getEnvAsInt("REGRESSION_ROUNDS", config.RegressionRounds)
	config.BaseThreshold = getEnvAsFloat("BASE_THRESHOLD", config.BaseThreshold)
	config.EMAAlpha = getEnvAsFloat("EMA_ALPHA", config.EMAAlpha)
	config.MinSamples = getEnvAsInt("MIN_SAMPLES", config.MinSamples)
	config.ConfidenceFloor = getEnvAsFloat("CONFIDENCE_FLOOR", config.ConfidenceFloor)
	config.MaxConcurrent = getEnvAsInt("MAX_CONCURRENT", config.MaxConcurrent)
	config.TimeoutPerItemSecs = getEnvAsInt("TIMEOUT_PER_ITEM_SECS", config.TimeoutPerItemSecs)
	config.RefineCron = getEnv("REFINE_CRON", config.RefineCron)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the cross-field configuration contract
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("MAX_ROUNDS must be positive, got %d", c.MaxRounds)
	}
	if c.Tolerance <= 0 || c.Tolerance >= 1 {
		return fmt.Errorf("TOLERANCE %f outside (0,1)", c.Tolerance)
	}
	if c.BaseThreshold < 0.1 || c.BaseThreshold > 0.9 {
		return fmt.Errorf("BASE_THRESHOLD %f outside [0.1,0.9]", c.BaseThreshold)
	}
	if c.EMAAlpha <= 0 || c.EMAAlpha > 1 {
		return fmt.Errorf("EMA_ALPHA %f outside (0,1]", c.EMAAlpha)
	}
	if c.MinSamples < 1 {
		return fmt.Errorf("MIN_SAMPLES must be positive, got %d", c.MinSamples)
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("CONFIDENCE_FLOOR %f outside [0,1]", c.ConfidenceFloor)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("MAX_CONCURRENT must be positive, got %d", c.MaxConcurrent)
	}
	if c.TimeoutPerItemSecs < 1 {
		return fmt.Errorf("TIMEOUT_PER_ITEM_SECS must be positive, got %d", c.TimeoutPerItemSecs)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
