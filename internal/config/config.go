// README: Config loader with env defaults for HTTP, Firebase, DB, Redis, and monitor settings.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type SessionConfig struct {
	TickSeconds int
}

type Config struct {
	HTTP struct {
		Addr string
	}
	Firebase struct {
		ProjectID       string
		CredentialsFile string
		DatabaseURL     string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Session SessionConfig
	Store   struct {
		WriteTimeout time.Duration
	}
	Maps struct {
		APIKey string
	}
}

func Load() (Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("LUBA_HTTP_ADDR", ":8080")
	cfg.Firebase.ProjectID = envOrDefault("LUBA_FIREBASE_PROJECT_ID", "")
	cfg.Firebase.CredentialsFile = envOrDefault("LUBA_FIREBASE_CREDENTIALS", "")
	cfg.Firebase.DatabaseURL = envOrDefault("LUBA_FIREBASE_DATABASE_URL", "")
	// empty DSN runs the server without the Postgres audit trail
	cfg.DB.DSN = os.Getenv("LUBA_DB_DSN")
	cfg.Redis.Addr = envOrDefault("LUBA_REDIS_ADDR", "localhost:6379")
	cfg.Session.TickSeconds = cast.ToInt(envOrDefault("LUBA_SESSION_TICK", "60"))
	cfg.Store.WriteTimeout = time.Duration(cast.ToInt(envOrDefault("LUBA_STORE_TIMEOUT_SECONDS", "10"))) * time.Second
	cfg.Maps.APIKey = envOrDefault("GOOGLE_MAPS_API_KEY", "")
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
