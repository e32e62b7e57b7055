// Package sweeper removes lobbies nobody is coming back to. It runs on a
// scheduler trigger rather than a timer so the service stays stateless.
package sweeper

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/cardclash/cardclash/internal/config"
	"github.com/cardclash/cardclash/internal/game"
	"github.com/cardclash/cardclash/internal/lobby"
	"github.com/cardclash/cardclash/internal/metrics"
)

type Sweeper struct {
	store   lobby.LobbyStore
	metrics metrics.Metrics
	cfg     config.SweeperConfig

	// now is swappable for tests.
	now func() time.Time
}

func New(store lobby.LobbyStore, metr metrics.Metrics, cfg config.SweeperConfig) *Sweeper {
	return &Sweeper{
		store:   store,
		metrics: metr,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Sweep deletes lobbies that were never filled or have gone quiet past
// the configured thresholds. It returns the number of lobbies deleted
// (or that would be deleted under dry run).
func (s *Sweeper) Sweep(dryRun bool) (int, error) {
	lobbies, err := s.store.GetAllLobbies()
	if err != nil {
		return 0, err
	}

	now := s.now().Unix()
	swept := 0
	for _, lob := range lobbies {
		reason, ok := s.sweepReason(lob, now)
		if !ok {
			continue
		}

		if dryRun {
			log.Info("[Dry Run] Would delete lobby", "lobbyID", lob.ID, "phase", lob.Phase, "reason", reason)
			swept++
			continue
		}

		if err := s.store.DeleteLobby(lob.ID); err != nil {
			log.Error("Failed to delete lobby", "lobbyID", lob.ID, "error", err)
			continue
		}
		log.Info("Deleted lobby", "lobbyID", lob.ID, "phase", lob.Phase, "reason", reason)
		s.metrics.IncLobbiesSwept()
		swept++
	}

	if swept > 0 {
		log.Info("Sweep complete", "deleted", swept, "checked", len(lobbies), "dryRun", dryRun)
	}
	return swept, nil
}

func (s *Sweeper) sweepReason(lob *game.Lobby, now int64) (string, bool) {
	roster, err := s.store.GetRoster(lob.ID)
	if err != nil {
		log.Error("Failed to load roster for sweep", "lobbyID", lob.ID, "error", err)
		return "", false
	}

	if len(roster) == 0 && now-lob.CreatedAt > int64(s.cfg.EmptyAfter.Seconds()) {
		return "empty", true
	}
	if len(roster) > 0 && now-lob.LastActivity > int64(s.cfg.AbandonedAfter.Seconds()) {
		return "abandoned", true
	}
	return "", false
}
