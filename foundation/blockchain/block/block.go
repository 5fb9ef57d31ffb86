// Package block provides the block entity that is mined and stored in
// the chain.
package block

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/powminer/foundation/blockchain/hash"
)

// Genesis values used when the chain has no blocks yet.
const (
	GenesisData     = "Genesis block"
	GenesisPrevHash = "0"
)

// =============================================================================

// Header represents the fields that are set while a block is being mined.
type Header struct {
	ID            string `json:"id" yaml:"id"`                           // Assigned at creation.
	Number        uint64 `json:"number" yaml:"number"`                   // Position in the chain, assigned at mining time.
	PrevBlockHash string `json:"prev_block_hash" yaml:"prev_block_hash"` // Hash of the chain tail at the time the block was solved.
	TimeStamp     uint64 `json:"timestamp" yaml:"timestamp"`             // Unix seconds, restamped on every attempt.
	Data          string `json:"data" yaml:"data"`                       // Arbitrary payload.
	Nonce         uint64 `json:"nonce" yaml:"nonce"`                     // Value identified to solve the hash solution.
}

// Block represents a payload waiting to be, or having been, mined.
type Block struct {
	Header    Header         `json:"header" yaml:"header"`
	Digest    hash.Algorithm `json:"digest" yaml:"digest"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	MinedAt   time.Time      `json:"mined_at" yaml:"mined_at"`
}

// New constructs a block for the specified payload. The position and link
// fields are left unset since they are resolved by the miner.
func New(data string) Block {
	return Block{
		Header: Header{
			ID:    hash.NewID(),
			Data:  data,
			Nonce: 0,
		},
		CreatedAt: time.Now(),
	}
}

// NewGenesis constructs the sentinel block that starts every chain.
func NewGenesis() Block {
	return New(GenesisData)
}

// WithDigest returns a copy of the block that is hashed with the
// specified algorithm.
func (b Block) WithDigest(alg hash.Algorithm) Block {
	b.Digest = alg
	return b
}

// Hash returns the content hash for the block. The sequence number and the
// creation/mined times are not part of the hash.
func (b Block) Hash() string {
	return hash.Sum(b.Digest, b.content())
}

// content serializes the hashed fields in a fixed order. Strings are quoted
// so a separator inside the data can't shift the field boundaries.
func (b Block) content() []byte {
	data := make([]byte, 0, 160+len(b.Header.Data))

	data = strconv.AppendQuote(data, b.Header.ID)
	data = append(data, ':')
	data = strconv.AppendUint(data, b.Header.TimeStamp, 10)
	data = append(data, ':')
	data = strconv.AppendQuote(data, b.Header.Data)
	data = append(data, ':')
	data = strconv.AppendQuote(data, b.Header.PrevBlockHash)
	data = append(data, ':')
	data = strconv.AppendUint(data, b.Header.Nonce, 10)

	return data
}

// IsGenesis reports whether this block sits at the start of the chain.
func (b Block) IsGenesis() bool {
	return b.Header.Number == 0 && b.Header.PrevBlockHash == GenesisPrevHash
}

// Render returns a human readable dump of the block.
func (b Block) Render() string {
	const line = "-----------------------------------------------------------------------------------"

	var sb strings.Builder
	row := func(title string, value any) {
		fmt.Fprintf(&sb, "| %-15s %-63v |\n", title, value)
	}

	sb.WriteString(line + "\n")
	row("Previous hash:", b.Header.PrevBlockHash)
	row("Block number:", b.Header.Number)
	row("Block ID:", b.Header.ID)
	row("Timestamp:", fmt.Sprintf("%d (%s)", b.Header.TimeStamp, time.Unix(int64(b.Header.TimeStamp), 0).UTC().Format(time.DateTime)))
	row("Data:", b.Header.Data)
	row("Nonce:", b.Header.Nonce)
	row("Digest:", b.Digest)
	row("Created:", b.CreatedAt.UTC().Format(time.RFC3339Nano))
	row("Mined:", b.MinedAt.UTC().Format(time.RFC3339Nano))
	row("Hash:", b.Hash())
	sb.WriteString(line + "\n")

	return sb.String()
}

// =============================================================================

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// We need to match a difficulty number of leading '0' hex characters.
func IsHashSolved(difficulty uint, hash string) bool {
	if uint(len(hash)) < difficulty {
		return false
	}

	for i := range difficulty {
		if hash[i] != '0' {
			return false
		}
	}

	return true
}
