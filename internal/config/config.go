package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	AWS      AWSConfig      `yaml:"aws"`
	Storage  StorageConfig  `yaml:"storage"`
	Mail     MailConfig     `yaml:"mail"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AWSConfig holds region and credential settings shared by all AWS clients.
// When AccessKey/SecretKey are empty the default credential chain is used.
type AWSConfig struct {
	Region    string `yaml:"region"`
	Profile   string `yaml:"profile"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// StorageConfig holds table and bucket names
type StorageConfig struct {
	SubscribersTable string `yaml:"subscribers_table"`
	ScheduleTable    string `yaml:"schedule_table"`
	ContentBucket    string `yaml:"content_bucket"`
	// KeyStrategy selects how content blob keys are generated:
	// "letters" (10 lowercase letters) or "uuid".
	KeyStrategy string `yaml:"key_strategy"`
}

// MailConfig holds outbound email settings
type MailConfig struct {
	SourceEmail string `yaml:"source_email"`
}

// DispatchConfig holds dispatcher settings.
// LookbackBuckets widens the due-message query to that many previous hour
// buckets; 0 queries the current hour only, silently dropping entries whose
// hour passed without a dispatcher run.
type DispatchConfig struct {
	CronSpec        string `yaml:"cron_spec"`
	LookbackBuckets int    `yaml:"lookback_buckets"`
}

// AuthConfig holds the group capability token map. Each token grants access
// to exactly one group's operations.
type AuthConfig struct {
	Enabled bool              `yaml:"enabled"`
	Tokens  map[string]string `yaml:"tokens"` // token -> group name
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-east-1"
	}
	if cfg.Storage.SubscribersTable == "" {
		cfg.Storage.SubscribersTable = "subscribers"
	}
	if cfg.Storage.ScheduleTable == "" {
		cfg.Storage.ScheduleTable = "scheduled_messages"
	}
	if cfg.Storage.KeyStrategy == "" {
		cfg.Storage.KeyStrategy = "letters"
	}
	if cfg.Dispatch.CronSpec == "" {
		cfg.Dispatch.CronSpec = "@hourly"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so secrets can
// live in .env locally and in real env vars in the deployed environment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.AWS.Region = region
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		cfg.AWS.AccessKey = key
	}
	if secret := os.Getenv("AWS_SECRET_ACCESS_KEY"); secret != "" {
		cfg.AWS.SecretKey = secret
	}
	if bucket := os.Getenv("SCHEDULED_MESSAGES_BUCKET_NAME"); bucket != "" {
		cfg.Storage.ContentBucket = bucket
	}
	if source := os.Getenv("SOURCE_EMAIL"); source != "" {
		cfg.Mail.SourceEmail = source
	}
	if spec := os.Getenv("DISPATCH_CRON_SPEC"); spec != "" {
		cfg.Dispatch.CronSpec = spec
	}
	if lookback := os.Getenv("DISPATCH_LOOKBACK_BUCKETS"); lookback != "" {
		if n, err := strconv.Atoi(lookback); err == nil {
			cfg.Dispatch.LookbackBuckets = n
		}
	}

	return cfg, nil
}
