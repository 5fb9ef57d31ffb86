// Package avalanche demonstrates the avalanche effect of SHA-256 and how
// hopeless it is to find an input for a digest by guessing.
package avalanche

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/ardanlabs/powminer/foundation/blockchain/hash"
)

// ErrEmptyInput is returned when there is no character to change.
var ErrEmptyInput = errors.New("input is empty")

// reportEvery is the number of attempts between progress events.
const reportEvery = 10_000

// Alphabet is the ordered set of characters used to enumerate guesses:
// lowercase, uppercase, digits and then the printable specials.
var Alphabet = []rune(alphabet())

func alphabet() string {
	var r []rune
	for c := 'a'; c <= 'z'; c++ {
		r = append(r, c)
	}
	for c := 'A'; c <= 'Z'; c++ {
		r = append(r, c)
	}
	for c := '0'; c <= '9'; c++ {
		r = append(r, c)
	}
	for c := ' '; c <= '/'; c++ {
		r = append(r, c)
	}
	for c := ':'; c <= '@'; c++ {
		r = append(r, c)
	}
	return string(r)
}

// EventHandler defines a function that is called as the search progresses.
type EventHandler func(v string, args ...any)

// =============================================================================

// ChangeOne returns a copy of the input with one randomly chosen character
// replaced by a different lowercase letter, and the index that changed.
func ChangeOne(input string, rnd *rand.Rand) (string, int, error) {
	runes := []rune(input)
	if len(runes) == 0 {
		return "", 0, ErrEmptyInput
	}

	idx := rnd.IntN(len(runes))

	for {
		c := 'a' + rune(rnd.IntN(26))
		if c != runes[idx] {
			runes[idx] = c
			break
		}
	}

	return string(runes), idx, nil
}

// Diff describes which characters differ between two strings of equal
// length.
type Diff struct {
	Positions []int
	Total     int
}

// String implements the fmt.Stringer interface.
func (d Diff) String() string {
	return fmt.Sprintf("%d/%d", len(d.Positions), d.Total)
}

// Compare returns the positions where the two strings differ. Only the
// length of the shorter string is compared.
func Compare(a, b string) Diff {
	ra, rb := []rune(a), []rune(b)

	n := min(len(ra), len(rb))

	d := Diff{Total: n}
	for i := range n {
		if ra[i] != rb[i] {
			d.Positions = append(d.Positions, i)
		}
	}

	return d
}

// =============================================================================

// Next returns the guess that follows prev in the enumeration over the
// alphabet, like counting in a base of len(Alphabet). A character that is
// not in the alphabet is treated as coming before the first character.
func Next(prev string) string {
	runes := []rune(prev)

	for i := len(runes) - 1; i >= 0; i-- {
		idx := indexOf(runes[i])
		if idx+1 < len(Alphabet) {
			runes[i] = Alphabet[idx+1]
			return string(runes)
		}

		// Roll this character over and carry into the one before it.
		runes[i] = Alphabet[0]
	}

	return string(Alphabet[0]) + string(runes)
}

func indexOf(c rune) int {
	for i, a := range Alphabet {
		if a == c {
			return i
		}
	}
	return -1
}

// Result is the outcome of a search.
type Result struct {
	Attempts uint64
	Value    string
	Found    bool
}

// Search enumerates guesses until one hashes to the target digest, the
// attempts run out or the context is cancelled. Zero attempts means no
// limit other than the context.
func Search(ctx context.Context, target string, maxAttempts uint64, ev EventHandler) (Result, error) {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("avalanche: Search: started: target[%s]: max[%d]", target, maxAttempts)
	defer ev("avalanche: Search: completed")

	var res Result
	for maxAttempts == 0 || res.Attempts < maxAttempts {
		if ctx.Err() != nil {
			ev("avalanche: Search: CANCELLED: attempts[%d]", res.Attempts)
			return res, ctx.Err()
		}

		res.Attempts++
		res.Value = Next(res.Value)

		digest := hash.Digest([]byte(res.Value))
		if digest == target {
			res.Found = true
			ev("avalanche: Search: FOUND: attempts[%d]: value[%q]", res.Attempts, res.Value)
			return res, nil
		}

		if res.Attempts%reportEvery == 0 {
			ev("avalanche: Search: attempt[%d]: value[%q]: diff[%s]", res.Attempts, res.Value, Compare(target, digest))
		}
	}

	return res, nil
}
