package public

import (
	"github.com/ardanlabs/powminer/foundation/blockchain/block"
)

// MineRequest is the payload for requesting a new chain to be mined.
type MineRequest struct {
	Difficulty uint   `json:"difficulty" validate:"required,gte=1,lte=6"`
	Blocks     uint   `json:"blocks" validate:"lte=100"` // Includes the genesis block, zero mines nothing.
	Workers    int    `json:"workers" validate:"omitempty,gte=1"`
	Digest     string `json:"digest" validate:"omitempty,oneof=sha256 keccak256"`
}

// Chain is the response for a mined chain.
type Chain struct {
	Difficulty      uint          `json:"difficulty"`
	Workers         int           `json:"workers"`
	Digest          string        `json:"digest"`
	Length          int           `json:"length"`
	Inconsistencies []int         `json:"inconsistencies"`
	Blocks          []blockResult `json:"blocks"`
}

type blockResult struct {
	Hash  string      `json:"hash"`
	Block block.Block `json:"block"`
}

func toBlockResults(blocks []block.Block) []blockResult {
	results := make([]blockResult, len(blocks))
	for i, b := range blocks {
		results[i] = blockResult{
			Hash:  b.Hash(),
			Block: b,
		}
	}
	return results
}
