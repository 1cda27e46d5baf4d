package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"

	// MaxUploadBytes caps a single image upload (16 MiB).
	MaxUploadBytes = 16 << 20
)

type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// Config is built once at startup and handed to constructors. Nothing reads
// the environment after Load returns.
type Config struct {
	Port           string        `yaml:"port"`
	DBDriver       string        `yaml:"db_driver"`
	DatabaseURL    string        `yaml:"database_url"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"-"`
	UploadFolder   string        `yaml:"upload_folder"`
	MaxUploadBytes int64         `yaml:"-"`
	StorageBackend string        `yaml:"storage_backend"`
	S3             S3Config      `yaml:"s3"`
	Debug          bool          `yaml:"debug"`
	MetricsEnabled bool          `yaml:"metrics_enabled"`

	// CORSAllowedOrigins lists browser origins allowed to call the API.
	// "*" allows any origin.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

func defaults() *Config {
	return &Config{
		Port:               "8080",
		DBDriver:           DriverPostgres,
		TokenTTL:           24 * time.Hour,
		UploadFolder:       "uploads",
		MaxUploadBytes:     MaxUploadBytes,
		StorageBackend:     StorageLocal,
		S3:                 S3Config{Region: "auto"},
		MetricsEnabled:     true,
		CORSAllowedOrigins: []string{"*"},
	}
}

// Load reads .env (if present), then the optional YAML file at path, then
// lets environment variables override both.
func Load(path string) (*Config, error) {
	// Missing .env is fine in production.
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	cfg.applyEnv()

	if cfg.DatabaseURL == "" && cfg.DBDriver == DriverPostgres {
		cfg.DatabaseURL = postgresDSNFromParts()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.DBDriver, "DB_DRIVER")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.JWTSecret, "JWT_SECRET_KEY")
	setString(&c.UploadFolder, "UPLOAD_FOLDER")
	setString(&c.StorageBackend, "STORAGE_BACKEND")
	setString(&c.S3.Endpoint, "S3_ENDPOINT")
	setString(&c.S3.Region, "S3_REGION")
	setString(&c.S3.Bucket, "S3_BUCKET")
	setString(&c.S3.Prefix, "S3_PREFIX")
	setString(&c.S3.AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&c.S3.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setBool(&c.S3.UsePathStyle, "S3_USE_PATH_STYLE")
	setBool(&c.Debug, "DEBUG")
	setBool(&c.MetricsEnabled, "METRICS_ENABLED")
	setList(&c.CORSAllowedOrigins, "CORS_ALLOWED_ORIGINS")
	c.DBDriver = strings.ToLower(c.DBDriver)
	c.StorageBackend = strings.ToLower(c.StorageBackend)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	switch c.StorageBackend {
	case StorageLocal:
		if c.UploadFolder == "" {
			return errors.New("UPLOAD_FOLDER must not be empty")
		}
	case StorageS3:
		if c.S3.Bucket == "" || c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "" {
			return errors.New("S3_BUCKET, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}
	for _, origin := range c.CORSAllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS: %q must be * or start with http:// or https://", origin)
		}
	}
	return nil
}

func postgresDSNFromParts() string {
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return ""
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		dbHost, os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"), dbPort)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setList splits a comma separated variable, dropping empty items.
func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) > 0 {
		*dst = items
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
