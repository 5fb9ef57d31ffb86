// Package public binds the public routes of the miner service.
package public

import (
	"net/http"
	"slices"
	"time"

	"github.com/ardanlabs/powminer/app/services/miner/handlers/v1/public"
	"github.com/ardanlabs/powminer/foundation/blockchain/miner"
	"github.com/ardanlabs/powminer/foundation/events"
	"github.com/ardanlabs/powminer/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log         *zap.SugaredLogger
	CORSOrigins []string
	Evts        *events.Events
	EvHandler   miner.EventHandler
	Timeout     time.Duration
	MaxAttempts uint64
	ReportEvery uint64
}

// Routes binds all the public routes and returns the handlers so the
// application can mine a chain at startup.
func Routes(app *web.App, cfg Config) *public.Handlers {
	pbl := public.Handlers{
		Log:         cfg.Log,
		Evts:        cfg.Evts,
		WS:          websocket.Upgrader{CheckOrigin: checkOrigin(cfg.CORSOrigins)},
		EvHandler:   cfg.EvHandler,
		Timeout:     cfg.Timeout,
		MaxAttempts: cfg.MaxAttempts,
		ReportEvery: cfg.ReportEvery,
	}

	const version = "v1"

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodPost, version, "/mine", pbl.Mine)
	app.Handle(http.MethodGet, version, "/chain", pbl.Chain)
	app.Handle(http.MethodGet, version, "/chain/:number", pbl.Block)

	return &pbl
}

// checkOrigin accepts websocket upgrades from the same origins the CORS
// middleware allows. Requests without an Origin header don't come from a
// browser and are accepted.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	wildcard := slices.Contains(allowed, "*")

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || wildcard || slices.Contains(allowed, origin)
	}
}
