package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	DalleAPIURL              string
	OpenAIAPIKey             string
	OpenAIOrg                string
	OpenAIActive             bool
	CloudinaryCloudName      string
	CloudinaryUploadPreset   string
	PlaceholderImageURL      string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		DalleAPIURL:              "https://api.openai.com/v1/images",
		PlaceholderImageURL:      "https://res.cloudinary.com/demo/image/upload/placeholder.png",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("DALLE_API_URL"); raw != "" {
		cfg.DalleAPIURL = raw
	}
	if raw := os.Getenv("OPENAI_API_KEY"); raw != "" {
		cfg.OpenAIAPIKey = raw
	}
	if raw := os.Getenv("OPENAI_ORG"); raw != "" {
		cfg.OpenAIOrg = raw
	}
	if raw := os.Getenv("OPENAI_API_ACTIVE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.OpenAIActive = value
		}
	}
	if raw := os.Getenv("CLOUDINARY_CLOUD_NAME"); raw != "" {
		cfg.CloudinaryCloudName = raw
	}
	if raw := os.Getenv("CLOUDINARY_UPLOAD_PRESET"); raw != "" {
		cfg.CloudinaryUploadPreset = raw
	}
	if raw := os.Getenv("PLACEHOLDER_IMAGE_URL"); raw != "" {
		cfg.PlaceholderImageURL = raw
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	return cfg
}
