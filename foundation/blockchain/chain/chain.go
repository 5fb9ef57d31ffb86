// Package chain defines the behavior of the shared, append-only sequence
// of confirmed blocks.
package chain

import (
	"github.com/ardanlabs/powminer/foundation/blockchain/block"
)

// Store interface represents the behavior required to be implemented by any
// package providing support for holding the chain. Appends must be safe for
// concurrent callers and must never lose an entry. Reads of the tail may
// happen at any time, including while another miner is appending.
type Store interface {
	Append(b block.Block) error
	Last() (block.Block, bool)
	Snapshot() []block.Block
	Len() int
}

// Inconsistencies returns the positions of blocks whose recorded number or
// previous hash don't match the block actually preceding them. Concurrent
// miners link against whatever tail existed when they solved, so a chain
// mined with more than one worker can legitimately contain these.
func Inconsistencies(blocks []block.Block) []int {
	var positions []int

	for i := 1; i < len(blocks); i++ {
		if blocks[i].Header.Number != uint64(i) || blocks[i].Header.PrevBlockHash != blocks[i-1].Hash() {
			positions = append(positions, i)
		}
	}

	return positions
}
