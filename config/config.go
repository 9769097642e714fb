package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/pmarinho/classxp/internal/utils"
)

type Config struct {
	AppPort string
	AppEnv  string

	// External blob service persisting the record document. Empty BlobURL
	// means self-hosted persistence through the built-in blob endpoint.
	BlobURL string
	BlobKey string

	// Sqlite file backing the built-in blob endpoint; empty keeps blobs in
	// memory only.
	SQLitePath string

	// External suggestion model; empty disables the feature.
	SuggestURL string
	SuggestKey string

	// Default for cancelled-lesson handling in every rate denominator.
	// Excluded unless explicitly turned on; requests may override.
	IncludeCancelled bool
}

func Load() *Config {
	// load .env if it exists (ignore if it does not)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("config: loading .env: %v", err)
		}
	}
	return &Config{
		AppPort: utils.SafeEnv("APP_PORT", "8080"),
		AppEnv:  utils.SafeEnv("APP_ENV", "dev"),

		BlobURL: utils.SafeEnv("BLOB_URL", ""),
		BlobKey: utils.SafeEnv("BLOB_KEY", ""),

		SQLitePath: utils.SafeEnv("BLOB_SQLITE_PATH", ""),

		SuggestURL: utils.SafeEnv("SUGGEST_URL", ""),
		SuggestKey: utils.SafeEnv("SUGGEST_KEY", ""),

		IncludeCancelled: utils.SafeEnvBool("STATS_INCLUDE_CANCELLED", false),
	}
}
