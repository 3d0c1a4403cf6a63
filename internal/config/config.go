package config

import (
	"fmt"
	"os"
)

type Config struct {
	DatabaseURL        string
	HTTPListenAddr     string
	MetricsListenAddr  string
	BaseDomain         string
	JWTSecret          string
	JWTIssuer          string
	OpsAPIKey          string
	LogLevel           string
	ServiceName        string
	DevMode            bool
	StorageS3Endpoint  string
	StorageS3Bucket    string
	StorageS3AccessKey string
	StorageS3SecretKey string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		HTTPListenAddr:     getEnv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsListenAddr:  getEnv("METRICS_LISTEN_ADDR", ":9090"),
		BaseDomain:         getEnv("BASE_DOMAIN", "example.com"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "crm"),
		OpsAPIKey:          getEnv("OPS_API_KEY", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ServiceName:        getEnv("SERVICE_NAME", "crm-api"),
		DevMode:            os.Getenv("DEV_MODE") == "true",
		StorageS3Endpoint:  getEnv("STORAGE_S3_ENDPOINT", ""),
		StorageS3Bucket:    getEnv("STORAGE_S3_BUCKET", ""),
		StorageS3AccessKey: getEnv("STORAGE_S3_ACCESS_KEY", ""),
		StorageS3SecretKey: getEnv("STORAGE_S3_SECRET_KEY", ""),
	}

	return cfg, nil
}

// Validate checks that the fields required by the given binary are set.
func (c *Config) Validate(service string) error {
	switch service {
	case "crm-api":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required")
		}
	case "seed-demo":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
