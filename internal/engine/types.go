package engine

import (
	"github.com/cardclash/cardclash/internal/ai"
	"github.com/cardclash/cardclash/internal/events"
	"github.com/cardclash/cardclash/internal/lobby"
	"github.com/cardclash/cardclash/internal/metrics"
	"github.com/cardclash/cardclash/internal/notifier"
)

// Per-phase countdown hints, in seconds. Scheduling only; correctness
// never depends on them.
const (
	submissionTimeLimit = 60
	votingTimeLimit     = 30
	resultsTimeLimit    = 10
)

// Points awarded by the results scorer. These constants are load-bearing
// for game balance; do not retune casually.
const (
	participationBonus = 1
	winnerBonus        = 3
)

// Engine drives each lobby through the round lifecycle. All of its
// handlers are safe under at-least-once, out-of-order delivery: every
// side effect sits behind a compare-and-swap in the store.
type Engine struct {
	store    lobby.LobbyStore
	events   events.Publisher
	notifier notifier.Notifier
	metrics  metrics.Metrics
	decider  ai.Decider
}

// New creates a new Engine.
func New(store lobby.LobbyStore, ev events.Publisher, notif notifier.Notifier, metr metrics.Metrics, decider ai.Decider) *Engine {
	return &Engine{
		store:    store,
		events:   ev,
		notifier: notif,
		metrics:  metr,
		decider:  decider,
	}
}
