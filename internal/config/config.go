package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Geocode  GeocodeConfig  `yaml:"geocode"`
	Caption  CaptionConfig  `yaml:"caption"`
	Enrich   EnrichConfig   `yaml:"enrich"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type GeocodeConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

type CaptionConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
}

type EnrichConfig struct {
	// Sizes are the derivative size tiers, in the order variants are
	// generated and stored.
	Sizes       []int `yaml:"sizes"`
	JPEGQuality int   `yaml:"jpeg_quality"`
	WorkerCount int   `yaml:"worker_count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Geocode.Endpoint == "" {
		cfg.Geocode.Endpoint = "https://nominatim.openstreetmap.org/reverse"
	}
	if cfg.Geocode.UserAgent == "" {
		cfg.Geocode.UserAgent = "photodisplay/1.0"
	}
	if cfg.Geocode.Timeout == 0 {
		cfg.Geocode.Timeout = 10 * time.Second
	}
	if cfg.Caption.Language == "" {
		cfg.Caption.Language = "en"
	}
	if cfg.Caption.Timeout == 0 {
		cfg.Caption.Timeout = 30 * time.Second
	}
	if len(cfg.Enrich.Sizes) == 0 {
		cfg.Enrich.Sizes = []int{256, 1024, 2048}
	}
	if cfg.Enrich.JPEGQuality == 0 {
		cfg.Enrich.JPEGQuality = 85
	}
	if cfg.Enrich.WorkerCount == 0 {
		cfg.Enrich.WorkerCount = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PD_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PD_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("PD_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("PD_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("PD_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("PD_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("PD_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("PD_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("PD_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("PD_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("PD_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("PD_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("PD_GEOCODE_ENDPOINT"); v != "" {
		cfg.Geocode.Endpoint = v
	}
	if v := os.Getenv("PD_CAPTION_ENDPOINT"); v != "" {
		cfg.Caption.Endpoint = v
	}
	if v := os.Getenv("PD_CAPTION_API_KEY"); v != "" {
		cfg.Caption.APIKey = v
	}
	if v := os.Getenv("PD_ENRICH_SIZES"); v != "" {
		var sizes []int
		for _, part := range strings.Split(v, ",") {
			if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && n > 0 {
				sizes = append(sizes, n)
			}
		}
		if len(sizes) > 0 {
			cfg.Enrich.Sizes = sizes
		}
	}
	if v := os.Getenv("PD_ENRICH_WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Enrich.WorkerCount = n
		}
	}
}
