// Package memory implements the chain store in memory using a slice.
package memory

import (
	"sync"

	"github.com/ardanlabs/powminer/foundation/blockchain/block"
)

// Memory represents the in memory implementation of the chain.Store
// interface. Blocks are stored by value so a block can't be mutated
// after it has been appended.
type Memory struct {
	mu     sync.RWMutex
	blocks []block.Block
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Append adds the block to the end of the chain.
func (m *Memory) Append(b block.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = append(m.blocks, b)

	return nil
}

// Last returns the block at the tail of the chain. False is returned when
// the chain is empty.
func (m *Memory) Last() (block.Block, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.blocks) == 0 {
		return block.Block{}, false
	}

	return m.blocks[len(m.blocks)-1], true
}

// Snapshot returns a copy of the chain in append order.
func (m *Memory) Snapshot() []block.Block {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blocks := make([]block.Block, len(m.blocks))
	copy(blocks, m.blocks)

	return blocks
}

// Len returns the number of blocks in the chain.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.blocks)
}
