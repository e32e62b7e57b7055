package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	Sweeper       SweeperConfig
	ProjectID     string
}
type SlackConfig struct {
	Token     string
	ChannelID string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// SweeperConfig controls when the periodic sweep deletes lobbies.
type SweeperConfig struct {
	// EmptyAfter is how long a lobby with no players may exist before
	// it is deleted.
	EmptyAfter time.Duration
	// AbandonedAfter is how long a lobby may sit without activity
	// before it is considered abandoned.
	AbandonedAfter time.Duration
}
