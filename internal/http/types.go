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

type Server struct {
	Store          lobby.LobbyStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Engine         *engine.Engine
	Sweeper        *sweeper.Sweeper
	Events         events.Publisher
	Router         *http.ServeMux
}
