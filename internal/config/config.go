package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Env             string `yaml:"env"`
		ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
		WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	} `yaml:"server"`

	Database struct {
		DSN         string `yaml:"url"`
		MaxOpenConn int    `yaml:"max_open_conns"`
		MaxIdleConn int    `yaml:"max_idle_conns"`
		AutoMigrate bool   `yaml:"auto_migrate"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		Issuer string `yaml:"issuer"`
	} `yaml:"jwt"`

	Notifications struct {
		// ServiceKey or ServiceKeyHash (bcrypt) authorizes the privileged create path.
		ServiceKey      string `yaml:"service_key"`
		ServiceKeyHash  string `yaml:"service_key_hash"`
		DefaultType     string `yaml:"default_type"`
		UnreadCacheTTL  int    `yaml:"unread_cache_ttl_sec"`
		RetentionDays   int    `yaml:"retention_days"`
		CleanupSchedule string `yaml:"cleanup_schedule"`
	} `yaml:"notifications"`

	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`

	Delivery struct {
		Mode       string `yaml:"mode"` // direct, http, disabled
		BaseURL    string `yaml:"base_url"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"delivery"`

	Email struct {
		Enabled      bool   `yaml:"enabled"`
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Storage struct {
		Type         string   `yaml:"type"`      // local, cloudflare_r2
		BasePath     string   `yaml:"base_path"` // local only
		BaseURL      string   `yaml:"base_url"`
		Bucket       string   `yaml:"bucket"`
		AccessKey    string   `yaml:"access_key"`
		SecretKey    string   `yaml:"secret_key"`
		Endpoint     string   `yaml:"endpoint"`
		MaxSize      int64    `yaml:"max_size"`
		AllowedTypes []string `yaml:"allowed_types"`

		// MaxImageDimension downscales larger JPEG/PNG scans; 0 keeps originals.
		MaxImageDimension int `yaml:"max_image_dimension"`
	} `yaml:"storage"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

var AppConfig *Config

// Default returns a config usable for local runs and tests.
func Default() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 4000
	cfg.Server.Env = "development"
	cfg.Server.ReadTimeoutSec = 15
	cfg.Server.WriteTimeoutSec = 30

	cfg.Database.MaxOpenConn = 20
	cfg.Database.MaxIdleConn = 5
	cfg.Database.AutoMigrate = true

	cfg.JWT.Issuer = "pharmacy-auth"

	cfg.Notifications.DefaultType = "pharmacy"
	cfg.Notifications.UnreadCacheTTL = 60
	cfg.Notifications.RetentionDays = 30
	cfg.Notifications.CleanupSchedule = "@daily"

	cfg.Delivery.Mode = "direct"
	cfg.Delivery.TimeoutSec = 5

	cfg.Email.SMTPPort = 587

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/uploads"
	cfg.Storage.MaxSize = 10 * 1024 * 1024
	cfg.Storage.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}
	cfg.Storage.MaxImageDimension = 1600

	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}

	return &cfg
}

// LoadConfig reads .env (if present), then the YAML file, then env overrides,
// and stores the result in AppConfig.
func LoadConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to read .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	explicit := configPath != ""
	if !explicit {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Failed to load config file at %s: %v", configPath, err)
		}
		log.Printf("config file %s not found, using defaults and environment", configPath)
		cfg = Default()
	}

	applyEnv(cfg)
	AppConfig = cfg
}

// Load decodes a YAML file on top of Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SERVER_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("NOTIFICATIONS_SERVICE_KEY"); v != "" {
		cfg.Notifications.ServiceKey = v
	}
	if v := os.Getenv("NOTIFICATIONS_SERVICE_KEY_HASH"); v != "" {
		cfg.Notifications.ServiceKeyHash = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("DELIVERY_MODE"); v != "" {
		cfg.Delivery.Mode = v
	}
	if v := os.Getenv("DELIVERY_BASE_URL"); v != "" {
		cfg.Delivery.BaseURL = v
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func (c *Config) UnreadCacheTTL() time.Duration {
	return time.Duration(c.Notifications.UnreadCacheTTL) * time.Second
}

func (c *Config) DeliveryTimeout() time.Duration {
	if c.Delivery.TimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Delivery.TimeoutSec) * time.Second
}
