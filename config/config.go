package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Gmail     GmailConfig     `yaml:"gmail"`
	Database  DatabaseConfig  `yaml:"database"`
	Couriers  CouriersConfig  `yaml:"couriers"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	ParcelBox ParcelBoxConfig `yaml:"parcelbox"`
}

type GmailConfig struct {
	BaseURL           string `yaml:"base_url"`
	TokenPath         string `yaml:"token_path"`
	SearchQuery       string `yaml:"search_query"`
	MaxEmailsPerCheck int    `yaml:"max_emails_per_check"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" (default) | "postgres"

	// sqlite
	Path string `yaml:"path"`

	// postgres
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type CouriersConfig struct {
	FedExAPIKey  string `yaml:"fedex_api_key"`
	FedExBaseURL string `yaml:"fedex_base_url"`
	UPSAPIKey    string `yaml:"ups_api_key"`
	UPSBaseURL   string `yaml:"ups_base_url"`
}

type KafkaConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ParcelUpdatedTopicName string `yaml:"parcel_updated_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type ParcelBoxConfig struct {
	CheckIntervalMinutes      int `yaml:"check_interval_minutes"`
	TerminalRefreshSeconds    int `yaml:"terminal_refresh_seconds"`
	MaxDisplayParcels         int `yaml:"max_display_parcels"`
	StalenessMinutes          int `yaml:"staleness_minutes"`
	ErrorCooldownSeconds      int `yaml:"error_cooldown_seconds"`
	CourierRateLimitPerMinute int `yaml:"courier_rate_limit_per_minute"`

	HTTPAddr    string `yaml:"http_addr"`
	SwaggerPath string `yaml:"swagger_path"`
	StateDir    string `yaml:"state_dir"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
