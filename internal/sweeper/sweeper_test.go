package sweeper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardclash/cardclash/internal/config"
	"github.com/cardclash/cardclash/internal/database"
	"github.com/cardclash/cardclash/internal/game"
	"github.com/cardclash/cardclash/internal/lobby"
	"github.com/cardclash/cardclash/internal/metrics"
)

func setupSweeper(t *testing.T) (*Sweeper, lobby.LobbyStore, *metrics.Mock, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := lobby.New(db)
	metr := metrics.NewMock()
	sw := New(store, metr, config.SweeperConfig{
		EmptyAfter:     10 * time.Minute,
		AbandonedAfter: time.Hour,
	})
	return sw, store, metr, teardown
}

func addPlayer(t *testing.T, store lobby.LobbyStore, lobbyID, playerID string) {
	t.Helper()
	require.NoError(t, store.UpsertPlayer(game.PlayerInfo{ID: playerID, Name: playerID}))
	require.NoError(t, store.AddPlayerToLobby(lobbyID, playerID))
}

func TestSweep(t *testing.T) {
	t.Run("deletes empty lobbies past the threshold", func(t *testing.T) {
		sw, store, metr, teardown := setupSweeper(t)
		defer teardown()

		require.NoError(t, store.CreateLobby(&game.Lobby{ID: "empty", HostID: "h"}))

		sw.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
		swept, err := sw.Sweep(false)
		require.NoError(t, err)
		assert.Equal(t, 1, swept)
		assert.Equal(t, 1, metr.LobbiesSweptCount)

		_, err = store.GetLobby("empty")
		assert.Error(t, err)
	})

	t.Run("keeps a fresh empty lobby", func(t *testing.T) {
		sw, store, _, teardown := setupSweeper(t)
		defer teardown()

		require.NoError(t, store.CreateLobby(&game.Lobby{ID: "fresh", HostID: "h"}))

		swept, err := sw.Sweep(false)
		require.NoError(t, err)
		assert.Equal(t, 0, swept)

		_, err = store.GetLobby("fresh")
		assert.NoError(t, err)
	})

	t.Run("deletes populated lobbies idle past abandonment", func(t *testing.T) {
		sw, store, _, teardown := setupSweeper(t)
		defer teardown()

		require.NoError(t, store.CreateLobby(&game.Lobby{ID: "stale", HostID: "p1"}))
		addPlayer(t, store, "stale", "p1")

		sw.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		swept, err := sw.Sweep(false)
		require.NoError(t, err)
		assert.Equal(t, 1, swept)

		_, err = store.GetLobby("stale")
		assert.Error(t, err)
	})

	t.Run("keeps an active populated lobby past the empty threshold", func(t *testing.T) {
		sw, store, _, teardown := setupSweeper(t)
		defer teardown()

		require.NoError(t, store.CreateLobby(&game.Lobby{ID: "busy", HostID: "p1"}))
		addPlayer(t, store, "busy", "p1")

		// Past EmptyAfter but not AbandonedAfter; having players means
		// only the abandonment threshold applies.
		sw.now = func() time.Time { return time.Now().Add(30 * time.Minute) }
		swept, err := sw.Sweep(false)
		require.NoError(t, err)
		assert.Equal(t, 0, swept)
	})

	t.Run("touching activity defers abandonment", func(t *testing.T) {
		sw, store, _, teardown := setupSweeper(t)
		defer teardown()

		require.NoError(t, store.CreateLobby(&game.Lobby{ID: "l1", HostID: "p1"}))
		addPlayer(t, store, "l1", "p1")

		// The lobby would be abandoned at +2h, but a touch at test time
		// only moves last_activity to now, so simulate the touch landing
		// later by checking it survives at a horizon AbandonedAfter past
		// the touch.
		require.NoError(t, store.TouchActivity("l1"))
		sw.now = func() time.Time { return time.Now().Add(30 * time.Minute) }
		swept, err := sw.Sweep(false)
		require.NoError(t, err)
		assert.Equal(t, 0, swept)
	})

	t.Run("dry run reports without deleting", func(t *testing.T) {
		sw, store, metr, teardown := setupSweeper(t)
		defer teardown()

		require.NoError(t, store.CreateLobby(&game.Lobby{ID: "empty", HostID: "h"}))

		sw.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
		swept, err := sw.Sweep(true)
		require.NoError(t, err)
		assert.Equal(t, 1, swept)
		assert.Equal(t, 0, metr.LobbiesSweptCount)

		_, err = store.GetLobby("empty")
		assert.NoError(t, err, "dry run must not delete")
	})
}
