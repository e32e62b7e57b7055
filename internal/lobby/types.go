package lobby

import (
	"database/sql"
	"sync"
)

// store handles all database operations for lobbies and players.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
