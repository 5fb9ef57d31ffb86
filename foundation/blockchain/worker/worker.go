// Package worker implements the scheduling of mining work across a fixed
// size pool of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/ardanlabs/powminer/foundation/blockchain/block"
	"github.com/ardanlabs/powminer/foundation/blockchain/chain"
	"github.com/ardanlabs/powminer/foundation/blockchain/hash"
	"github.com/ardanlabs/powminer/foundation/blockchain/miner"
	"github.com/ardanlabs/powminer/foundation/validate"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyChainRead is returned when the chain has no tail after the
// genesis block was mined. This means the store lost the genesis append.
var ErrEmptyChainRead = errors.New("chain tail read before genesis was appended")

// =============================================================================

// Config represents the configuration required to construct a scheduler.
type Config struct {
	Store       chain.Store    `validate:"required"`
	Difficulty  uint           `validate:"gte=1,lte=64"`
	BlockCount  uint           // Includes the genesis block.
	Workers     int            `validate:"gte=1"`
	Digest      hash.Algorithm `validate:"omitempty,oneof=sha256 keccak256"`
	MaxAttempts uint64         // Per block, zero means unbounded.
	ReportEvery uint64
	Payload     func(n int) string
	EvHandler   miner.EventHandler
}

// Scheduler mines the genesis block and then dispatches one mining task per
// pending block onto the pool.
type Scheduler struct {
	store      chain.Store
	miner      *miner.Miner
	blockCount uint
	workers    int
	digest     hash.Algorithm
	payload    func(n int) string
	evHandler  miner.EventHandler
}

// New constructs a scheduler. A bad configuration fails here, before any
// mining takes place.
func New(cfg Config) (*Scheduler, error) {
	if err := validate.Check(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	mnr, err := miner.New(miner.Config{
		Store:       cfg.Store,
		Difficulty:  cfg.Difficulty,
		MaxAttempts: cfg.MaxAttempts,
		ReportEvery: cfg.ReportEvery,
		EvHandler:   ev,
	})
	if err != nil {
		return nil, err
	}

	// The pool is bounded by the available parallelism.
	workers := cfg.Workers
	if procs := runtime.GOMAXPROCS(0); workers > procs {
		ev("worker: New: workers[%d] bounded to procs[%d]", workers, procs)
		workers = procs
	}

	payload := cfg.Payload
	if payload == nil {
		payload = func(n int) string {
			return fmt.Sprintf("Block %d data", n)
		}
	}

	s := Scheduler{
		store:      cfg.Store,
		miner:      mnr,
		blockCount: cfg.BlockCount,
		workers:    workers,
		digest:     cfg.Digest,
		payload:    payload,
		evHandler:  ev,
	}

	return &s, nil
}

// Workers returns the size of the pool.
func (s *Scheduler) Workers() int {
	return s.workers
}

// Run mines the genesis block synchronously, then mines the remaining
// blocks concurrently and returns the chain in store order. There is no
// ordering between the concurrent blocks, whichever solves first is
// appended first. The chain as it stands is returned with any error so a
// partial run can be inspected.
func (s *Scheduler) Run(ctx context.Context) ([]block.Block, error) {
	s.evHandler("worker: Run: started: blocks[%d]: workers[%d]: difficulty[%d]: digest[%s]", s.blockCount, s.workers, s.miner.Difficulty(), s.digest)
	defer s.evHandler("worker: Run: completed")

	if s.blockCount == 0 {
		return s.store.Snapshot(), nil
	}

	// Construct the pending blocks. Their link fields are resolved while
	// they are being mined.
	pending := make([]block.Block, s.blockCount-1)
	for i := range pending {
		pending[i] = block.New(s.payload(i + 1)).WithDigest(s.digest)
	}

	s.evHandler("worker: Run: MINING: genesis")

	genesis := block.NewGenesis().WithDigest(s.digest)
	if _, err := s.miner.Mine(ctx, genesis); err != nil {
		return s.store.Snapshot(), fmt.Errorf("mining genesis: %w", err)
	}

	// Every concurrent miner depends on the chain having a tail.
	if _, exists := s.store.Last(); !exists {
		return s.store.Snapshot(), ErrEmptyChainRead
	}

	s.evHandler("worker: Run: MINING: dispatch: pending[%d]", len(pending))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, b := range pending {
		g.Go(func() error {
			if _, err := s.miner.Mine(ctx, b); err != nil {
				return fmt.Errorf("mining blk[%s]: %w", b.Header.ID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return s.store.Snapshot(), err
	}

	return s.store.Snapshot(), nil
}
