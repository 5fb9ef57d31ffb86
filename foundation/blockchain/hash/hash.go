// Package hash provides the digest functions used to hash blocks and to
// mint block identifiers.
package hash

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// Algorithm names a cryptographic digest that can be used to hash blocks.
type Algorithm string

// Set of supported digest algorithms.
const (
	SHA256    Algorithm = "sha256"
	Keccak256 Algorithm = "keccak256"
)

// Valid reports whether the algorithm is supported. The empty value is
// valid and means SHA256.
func (a Algorithm) Valid() bool {
	switch a {
	case "", SHA256, Keccak256:
		return true
	}
	return false
}

// String implements the fmt.Stringer interface.
func (a Algorithm) String() string {
	if a == "" {
		return string(SHA256)
	}
	return string(a)
}

// =============================================================================

// Digest returns the SHA-256 of the data as 64 lowercase hex characters.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Sum returns the hex encoded digest of the data using the specified
// algorithm. An unknown algorithm falls back to SHA-256.
func Sum(alg Algorithm, data []byte) string {
	switch alg {
	case Keccak256:
		return hex.EncodeToString(crypto.Keccak256(data))
	default:
		return Digest(data)
	}
}

// =============================================================================

// ID returns the MD5 of the data as hex. This is only used to produce short
// identifiers and carries no security property.
func ID(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// NewID returns a practically unique identifier. The current time alone
// can collide when blocks are created in the same instant, so a uuid is
// mixed in before hashing.
func NewID() string {
	seed := strconv.FormatInt(time.Now().UnixNano(), 10) + uuid.NewString()
	return ID([]byte(seed))
}
