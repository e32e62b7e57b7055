package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	type demoPlayer struct {
		id     string
		name   string
		isAI   bool
		rating int
		games  int
	}
	demoPlayers := []demoPlayer{
		{"player-1", "Seeder Player A", false, 1240, 18},
		{"player-2", "Seeder Player B", false, 1015, 7},
		{"player-3", "Seeder Player C", false, 870, 31},
		{"player-4", "Seeder Bot D", true, 1000, 0},
	}

	for _, p := range demoPlayers {
		_, err := db.Exec("INSERT OR IGNORE INTO players (id, name, is_ai, skill_rating, games_played) VALUES (?, ?, ?, ?, ?)",
			p.id, p.name, p.isAI, p.rating, p.games)
		if err != nil {
			log.Fatalf("Failed to insert demo player %s: %s", p.name, err)
		}
	}
	log.Info("Ensured demo players exist.")

	now := time.Now().Unix()
	lobbyID := uuid.NewString()
	_, err = db.Exec(`
		INSERT INTO lobbies (id, host_id, phase, round_number, scored_round, total_rounds, competition_type, prompt_card_id, phase_started_at, time_left, created_at, last_activity)
		VALUES (?, ?, 'waiting', 1, 0, 5, 'COMPETITIVE', 'prompt-1', ?, 0, ?, ?)`,
		lobbyID, demoPlayers[0].id, now, now, now)
	if err != nil {
		log.Fatalf("Failed to insert demo lobby: %s", err)
	}

	for _, p := range demoPlayers {
		_, err := db.Exec("INSERT INTO lobby_players (lobby_id, player_id, score, joined_at) VALUES (?, ?, 0, ?)",
			lobbyID, p.id, now)
		if err != nil {
			log.Fatalf("Failed to seat demo player %s: %s", p.name, err)
		}
	}

	log.Info("Successfully seeded demo lobby.", "lobbyID", lobbyID, "players", len(demoPlayers))
}
