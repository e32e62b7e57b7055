package http

import (
	"net/http"

	"github.com/cardclash/cardclash/internal/config"
	"github.com/cardclash/cardclash/internal/engine"
	"github.com/cardclash/cardclash/internal/events"
	"github.com/cardclash/cardclash/internal/lobby"
	"github.com/cardclash/cardclash/internal/metrics"
	"github.com/cardclash/cardclash/internal/notifier"
	"github.com/cardclash/cardclash/internal/sweeper"
)

func NewServer(store lobby.LobbyStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, eng *engine.Engine, sw *sweeper.Sweeper, events events.Publisher) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Engine:         eng,
		Sweeper:        sw,
		Events:         events,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))

	// Client-facing game API.
	s.Router.Handle("/lobbies", Chain(s.LobbiesHandler(), paramsMiddleware))
	s.Router.Handle("/lobbies/join", Chain(s.JoinLobbyHandler(), paramsMiddleware))
	s.Router.Handle("/lobby", Chain(s.GetLobbyHandler(), paramsMiddleware))
	s.Router.Handle("/submit", Chain(s.SubmitHandler(), paramsMiddleware))
	s.Router.Handle("/vote", Chain(s.VoteHandler(), paramsMiddleware))
	s.Router.Handle("/abstain", Chain(s.AbstainHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/ratings/estimate", Chain(s.EstimateRatingHandler(), paramsMiddleware))

	// Pub/Sub push subscriptions.
	s.Router.Handle("/on-submission", Chain(s.OnSubmissionHandler(), paramsMiddleware))
	s.Router.Handle("/on-vote", Chain(s.OnVoteHandler(), paramsMiddleware))
	s.Router.Handle("/score-round", Chain(s.ScoreRoundHandler(), paramsMiddleware))

	// Scheduler triggers.
	s.Router.Handle("/sweep", Chain(s.SweepHandler(), paramsMiddleware))
	s.Router.Handle("/force-advance", Chain(s.ForceAdvanceHandler(), paramsMiddleware))
	s.Router.Handle("/ai-turn", Chain(s.AITurnHandler(), paramsMiddleware))
	s.Router.Handle("/notify-leaderboard", Chain(s.NotifyLeaderboardHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
