package config

import (
	"fmt"
	"os"

	"layer-backend/internal/models"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AWS      AWSConfig      `yaml:"aws"`
	APNS     APNSConfig     `yaml:"apns"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	Reveal   RevealConfig   `yaml:"reveal"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// AWSConfig holds S3 configuration for layer photo storage
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"` // custom S3-compatible endpoint, optional
}

// APNSConfig holds Apple push notification configuration.
// Push is disabled when KeyPath is empty.
type APNSConfig struct {
	KeyPath string `yaml:"key_path"`
	KeyID   string `yaml:"key_id"`
	TeamID  string `yaml:"team_id"`
	Topic   string `yaml:"topic"`
	Sandbox bool   `yaml:"sandbox"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// RevealConfig holds per-strategy message-count thresholds at which the
// next layer unlocks. Missing strategies fall back to defaults.
type RevealConfig struct {
	Thresholds map[string][]int `yaml:"thresholds"`
}

// defaultThresholds is the reference reveal pacing; "balanced" matches the
// original {1,20,50,100} sequence, "open" reveals denser, "mysterious" sparser.
var defaultThresholds = map[models.PrivacyStrategy][]int{
	models.StrategyOpen:       {1, 10, 25, 50},
	models.StrategyBalanced:   {1, 20, 50, 100},
	models.StrategyMysterious: {1, 40, 100, 200},
}

// ThresholdsFor returns the reveal threshold sequence for a privacy strategy.
func (c *RevealConfig) ThresholdsFor(strategy models.PrivacyStrategy) []int {
	if seq, ok := c.Thresholds[string(strategy)]; ok && len(seq) > 0 {
		return seq
	}
	if seq, ok := defaultThresholds[strategy]; ok {
		return seq
	}
	return defaultThresholds[models.StrategyBalanced]
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
