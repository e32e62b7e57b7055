package config

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	getDuration := func(key string, fallback time.Duration) time.Duration {
		value, ok := os.LookupEnv(key)
		if !ok {
			return fallback
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Fatalf("Error: Environment variable %s is not a valid duration: %v", key, err)
		}
		return d
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Slack: SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN"),
			ChannelID: getEnv("SLACK_CHANNEL_ID"),
		},
		Port: getEnv("PORT"),
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL"),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN"),
		},
		Sweeper: SweeperConfig{
			EmptyAfter:     getDuration("SWEEP_EMPTY_AFTER", 10*time.Minute),
			AbandonedAfter: getDuration("SWEEP_ABANDONED_AFTER", time.Hour),
		},
		ProjectID: getEnv("GCP_PROJECT"),
	}
	return cfg
}
