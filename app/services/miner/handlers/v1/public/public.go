// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/ardanlabs/powminer/business/web/errs"
	"github.com/ardanlabs/powminer/foundation/blockchain/chain"
	"github.com/ardanlabs/powminer/foundation/blockchain/chain/memory"
	"github.com/ardanlabs/powminer/foundation/blockchain/hash"
	"github.com/ardanlabs/powminer/foundation/blockchain/miner"
	"github.com/ardanlabs/powminer/foundation/blockchain/worker"
	"github.com/ardanlabs/powminer/foundation/events"
	"github.com/ardanlabs/powminer/foundation/validate"
	"github.com/ardanlabs/powminer/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrNoChain is returned when a chain is requested before one was mined.
var ErrNoChain = errors.New("no chain has been mined")

// Handlers manages the set of mining endpoints.
type Handlers struct {
	Log         *zap.SugaredLogger
	Evts        *events.Events
	WS          websocket.Upgrader // CheckOrigin is set once at construction.
	EvHandler   miner.EventHandler
	Timeout     time.Duration
	MaxAttempts uint64
	ReportEvery uint64

	mu     sync.RWMutex
	latest *Chain
}

// Mine mines a new chain using the requested settings. The request waits
// until the chain is mined or the mining timeout expires.
func (h *Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req MineRequest
	if err := web.Decode(r, &req); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	c, err := h.MineChain(ctx, req)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, c, http.StatusOK)
}

// MineChain runs the scheduler for the request and records the result as
// the latest chain.
func (h *Handlers) MineChain(ctx context.Context, req MineRequest) (Chain, error) {
	workers := req.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	s, err := worker.New(worker.Config{
		Store:       memory.New(),
		Difficulty:  req.Difficulty,
		BlockCount:  req.Blocks,
		Workers:     workers,
		Digest:      hash.Algorithm(req.Digest),
		MaxAttempts: h.MaxAttempts,
		ReportEvery: h.ReportEvery,
		EvHandler:   h.EvHandler,
	})
	if err != nil {
		return Chain{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	blocks, err := s.Run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, miner.ErrAttemptsExhausted):
			return Chain{}, errs.NewTrusted(fmt.Errorf("mining did not finish: %w", err), http.StatusServiceUnavailable)
		default:
			return Chain{}, fmt.Errorf("mining: %w", err)
		}
	}

	c := Chain{
		Difficulty:      req.Difficulty,
		Workers:         s.Workers(),
		Digest:          hash.Algorithm(req.Digest).String(),
		Length:          len(blocks),
		Inconsistencies: chain.Inconsistencies(blocks),
		Blocks:          toBlockResults(blocks),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = &c

	return c, nil
}

// Chain returns the most recently mined chain.
func (h *Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.mu.RLock()
	latest := h.latest
	h.mu.RUnlock()

	if latest == nil {
		return errs.NewTrusted(ErrNoChain, http.StatusNotFound)
	}

	return web.Respond(ctx, w, latest, http.StatusOK)
}

// Block returns a single block from the most recently mined chain by its
// position in the chain.
func (h *Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	num, err := strconv.Atoi(web.Param(r, "number"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block number: %w", err), http.StatusBadRequest)
	}

	h.mu.RLock()
	latest := h.latest
	h.mu.RUnlock()

	if latest == nil {
		return errs.NewTrusted(ErrNoChain, http.StatusNotFound)
	}

	if num < 0 || num >= len(latest.Blocks) {
		return errs.NewTrusted(fmt.Errorf("block %d does not exist", num), http.StatusNotFound)
	}

	return web.Respond(ctx, w, latest.Blocks[num], http.StatusOK)
}

// Events handles a web socket to provide mining events to a client.
func (h *Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {

		// The upgrader has already replied to the client.
		h.Log.Infow("events", "traceid", v.TraceID, "status", "upgrade refused", "ERROR", err)
		return nil
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer func() {
		if dropped, err := h.Evts.Release(v.TraceID); err == nil && dropped > 0 {
			h.Log.Infow("events", "traceid", v.TraceID, "status", "subscriber fell behind", "dropped", dropped)
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
