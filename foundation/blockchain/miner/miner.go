// Package miner implements the proof of work search for a single block.
package miner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/powminer/foundation/blockchain/block"
	"github.com/ardanlabs/powminer/foundation/blockchain/chain"
	"github.com/ardanlabs/powminer/foundation/validate"
)

// ErrAttemptsExhausted is returned when the configured number of attempts
// is used up without solving the block.
var ErrAttemptsExhausted = errors.New("mining attempts exhausted")

// defaultReportEvery is the number of attempts between progress events
// when one is not configured.
const defaultReportEvery = 100_000

// EventHandler defines a function that is called when events
// occur in the processing of mining blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to construct a miner.
type Config struct {
	Store       chain.Store `validate:"required"`
	Difficulty  uint        `validate:"gte=1,lte=64"`
	MaxAttempts uint64      // Zero means unbounded.
	ReportEvery uint64      // Attempts between progress events.
	EvHandler   EventHandler
}

// Miner searches for a nonce that solves the difficulty for a block and
// appends the solved block to the chain store.
type Miner struct {
	store       chain.Store
	difficulty  uint
	maxAttempts uint64
	reportEvery uint64
	evHandler   EventHandler
}

// New constructs a miner for use.
func New(cfg Config) (*Miner, error) {
	if err := validate.Check(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	reportEvery := cfg.ReportEvery
	if reportEvery == 0 {
		reportEvery = defaultReportEvery
	}

	m := Miner{
		store:       cfg.Store,
		difficulty:  cfg.Difficulty,
		maxAttempts: cfg.MaxAttempts,
		reportEvery: reportEvery,
		evHandler:   ev,
	}

	return &m, nil
}

// Difficulty returns the number of leading zeros the miner is solving for.
func (m *Miner) Difficulty() uint {
	return m.difficulty
}

// Mine performs the work of finding a valid hash for the specified block.
// On every attempt the block is relinked to whatever block is the chain
// tail at that moment, so a block that waits while other miners append
// picks up the new tail. Once solved the block is appended to the store
// and the confirmed block is returned.
func (m *Miner) Mine(ctx context.Context, b block.Block) (block.Block, error) {
	m.evHandler("miner: Mine: MINING: started: blk[%s]", b.Header.ID)
	defer m.evHandler("miner: Mine: MINING: completed: blk[%s]", b.Header.ID)

	var attempts uint64
	for {
		// Did we timeout or get cancelled trying to solve the problem.
		if ctx.Err() != nil {
			m.evHandler("miner: Mine: MINING: CANCELLED: blk[%s]: attempts[%d]", b.Header.ID, attempts)
			return block.Block{}, ctx.Err()
		}

		attempts++

		// Relink the block against the current tail. An empty chain means
		// this is the genesis block.
		b.Header.PrevBlockHash = block.GenesisPrevHash
		b.Header.Number = 0
		if tail, exists := m.store.Last(); exists {
			b.Header.PrevBlockHash = tail.Hash()
			b.Header.Number = tail.Header.Number + 1
		}
		b.Header.TimeStamp = uint64(time.Now().UTC().Unix())

		// Hash the block and check if we have solved the puzzle.
		hash := b.Hash()
		if block.IsHashSolved(m.difficulty, hash) {
			b.MinedAt = time.Now()

			if err := m.store.Append(b); err != nil {
				return block.Block{}, fmt.Errorf("append blk[%s]: %w", b.Header.ID, err)
			}

			m.evHandler("miner: Mine: MINING: SOLVED: blk[%s]: num[%d]: prevBlk[%s]: newBlk[%s]", b.Header.ID, b.Header.Number, b.Header.PrevBlockHash, hash)
			m.evHandler("miner: Mine: MINING: attempts[%d]: nonce[%d]", attempts, b.Header.Nonce)

			return b, nil
		}

		if m.maxAttempts > 0 && attempts >= m.maxAttempts {
			m.evHandler("miner: Mine: MINING: EXHAUSTED: blk[%s]: attempts[%d]", b.Header.ID, attempts)
			return block.Block{}, fmt.Errorf("blk[%s]: %w", b.Header.ID, ErrAttemptsExhausted)
		}

		if attempts%m.reportEvery == 0 {
			m.evHandler("miner: Mine: MINING: blk[%s]: nonce[%d]: hash[%s]: attempts[%d]", b.Header.ID, b.Header.Nonce, hash, attempts)
		}

		b.Header.Nonce++
	}
}
