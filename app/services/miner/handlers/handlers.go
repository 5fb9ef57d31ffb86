// Package handlers manages the different versions of the API.
package handlers

import (
	"context"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/ardanlabs/powminer/app/services/miner/handlers/debug/checkgrp"
	"github.com/ardanlabs/powminer/app/services/miner/handlers/public"
	v1 "github.com/ardanlabs/powminer/app/services/miner/handlers/v1/public"
	"github.com/ardanlabs/powminer/business/web/mid"
	"github.com/ardanlabs/powminer/foundation/blockchain/miner"
	"github.com/ardanlabs/powminer/foundation/events"
	"github.com/ardanlabs/powminer/foundation/web"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown    chan os.Signal
	CORSOrigins []string
	Log         *zap.SugaredLogger
	Evts        *events.Events
	EvHandler   miner.EventHandler
	Timeout     time.Duration
	MaxAttempts uint64
	ReportEvery uint64
}

// PublicMux constructs a http.Handler with all application routes defined.
// The mining handlers are returned so the caller can mine a chain without
// going through the router.
func PublicMux(cfg MuxConfig) (http.Handler, *v1.Handlers) {

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Cors(cfg.CORSOrigins...),
		mid.Panics(),
	)

	// Accept CORS 'OPTIONS' preflight requests.
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	}
	app.Handle(http.MethodOptions, "", "/*", h)

	pbl := public.Routes(app, public.Config{
		Log:         cfg.Log,
		CORSOrigins: cfg.CORSOrigins,
		Evts:        cfg.Evts,
		EvHandler:   cfg.EvHandler,
		Timeout:     cfg.Timeout,
		MaxAttempts: cfg.MaxAttempts,
		ReportEvery: cfg.ReportEvery,
	})

	return app, pbl
}

// DebugStandardLibraryMux registers all the debug routes from the standard library
// into a new mux bypassing the use of the DefaultServerMux. Using the
// DefaultServerMux would be a security risk since a dependency could inject a
// handler into our service without us knowing it.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Register all the standard library debug endpoints.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux registers all the debug standard library routes and then custom
// debug application routes for the service.
func DebugMux(build string, log *zap.SugaredLogger) http.Handler {
	mux := DebugStandardLibraryMux()

	cgh := checkgrp.Handlers{
		Build: build,
		Log:   log,
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	return mux
}
