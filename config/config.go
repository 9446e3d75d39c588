package config

import (
	"fmt"
	"os"
	"strings"

	"actionitems/pkg/logger"

	"github.com/joho/godotenv"
)

// Config is everything the server and the TUI read from the environment.
type Config struct {
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBSSLMode  string

	JWTSecret     string
	Addr          string
	AllowedOrigin string

	APIURL  string
	Token   string
	LogFile string
}

// Load reads a .env file if one exists and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	return Config{
		DBUser:     env("user", ""),
		DBPassword: env("password", ""),
		DBHost:     env("host", "localhost"),
		DBPort:     env("port", "5432"),
		DBName:     env("dbname", "postgres"),
		DBSSLMode:  env("sslmode", "require"),

		JWTSecret:     env("SUPABASE_JWT_SECRET", ""),
		Addr:          env("ADDR", ":8080"),
		AllowedOrigin: env("ALLOWED_ORIGIN", "*"),

		APIURL:  env("ACTIONITEMS_API_URL", "http://localhost:8080"),
		Token:   env("ACTIONITEMS_TOKEN", ""),
		LogFile: env("ACTIONITEMS_LOG_FILE", "actionitems-tui.log"),
	}
}

// DSN builds the lib/pq connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func env(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
