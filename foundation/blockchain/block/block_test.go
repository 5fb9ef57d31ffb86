package block_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powminer/foundation/blockchain/block"
	"github.com/ardanlabs/powminer/foundation/blockchain/hash"
	fuzz "github.com/google/gofuzz"
	"gopkg.in/yaml.v3"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_New(t *testing.T) {
	t.Log("Given the need to construct blocks.")
	{
		t.Logf("\tTest 0:\tWhen constructing a block with a payload.")
		{
			b := block.New("some data")

			if b.Header.Nonce != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould start with a zero nonce: %d", failed, b.Header.Nonce)
			}
			t.Logf("\t%s\tTest 0:\tShould start with a zero nonce.", success)

			if b.Header.PrevBlockHash != "" || b.Header.Number != 0 || b.Header.TimeStamp != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould leave the link fields unset: %+v", failed, b.Header)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the link fields unset.", success)

			if len(b.Header.ID) != 32 {
				t.Fatalf("\t%s\tTest 0:\tShould have a 32 character id: %q", failed, b.Header.ID)
			}
			t.Logf("\t%s\tTest 0:\tShould have a 32 character id.", success)

			if b.CreatedAt.IsZero() {
				t.Fatalf("\t%s\tTest 0:\tShould set the creation time.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould set the creation time.", success)
		}

		t.Logf("\tTest 1:\tWhen constructing the genesis block.")
		{
			g := block.NewGenesis()
			if g.Header.Data != block.GenesisData {
				t.Fatalf("\t%s\tTest 1:\tShould carry the genesis payload: %q", failed, g.Header.Data)
			}
			t.Logf("\t%s\tTest 1:\tShould carry the genesis payload.", success)

			if g.Header.ID == block.New("x").Header.ID {
				t.Fatalf("\t%s\tTest 1:\tShould get distinct ids.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould get distinct ids.", success)
		}
	}
}

func Test_HashIsPure(t *testing.T) {
	f := fuzz.New().NilChance(0)

	t.Log("Given the need for the content hash to be a pure function.")
	{
		for i := range 100 {
			var b block.Block
			f.Fuzz(&b.Header)

			h1 := b.Hash()
			h2 := b.Hash()
			if h1 != h2 {
				t.Fatalf("\t%s\tTest %d:\tShould get the same hash twice: %s %s", failed, i, h1, h2)
			}

			if len(h1) != 64 {
				t.Fatalf("\t%s\tTest %d:\tShould get 64 hex characters: %s", failed, i, h1)
			}
		}
		t.Logf("\t%s\tShould get the same hash twice for an unmutated block.", success)

		b := block.New("data")
		h := b.Hash()

		b.Header.Number = 42
		b.MinedAt = time.Now()
		if b.Hash() != h {
			t.Fatalf("\t%s\tShould not hash the number or the timestamps outside the header.", failed)
		}
		t.Logf("\t%s\tShould not hash the number or the timestamps outside the header.", success)

		b.Header.Nonce++
		if b.Hash() == h {
			t.Fatalf("\t%s\tShould change the hash when the nonce changes.", failed)
		}
		t.Logf("\t%s\tShould change the hash when the nonce changes.", success)

		k := b.WithDigest(hash.Keccak256)
		if k.Hash() == b.Hash() {
			t.Fatalf("\t%s\tShould hash differently with another digest.", failed)
		}
		t.Logf("\t%s\tShould hash differently with another digest.", success)
	}
}

func Test_HashFields(t *testing.T) {
	t.Log("Given the need to hash a fixed serialization of the header.")
	{
		b := block.Block{
			Header: block.Header{
				ID:            "abc",
				Number:        3,
				PrevBlockHash: "0",
				TimeStamp:     1700000000,
				Data:          `x:"y`,
				Nonce:         5,
			},
		}

		exp := hash.Digest([]byte(`"abc":1700000000:"x:\"y":"0":5`))
		if got := b.Hash(); got != exp {
			t.Fatalf("\t%s\tShould hash the quoted fields in order: got %s, exp %s", failed, got, exp)
		}
		t.Logf("\t%s\tShould hash the quoted fields in order.", success)

		a := b
		a.Header.Data, a.Header.PrevBlockHash = "a:b", "c"
		c := b
		c.Header.Data, c.Header.PrevBlockHash = "a", "b:c"
		if a.Hash() == c.Hash() {
			t.Fatalf("\t%s\tShould not let a separator in the data shift the fields.", failed)
		}
		t.Logf("\t%s\tShould not let a separator in the data shift the fields.", success)
	}
}

func Test_HashRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)

	t.Log("Given the need to reproduce a hash after serialization.")
	{
		t.Logf("\tTest 0:\tWhen round tripping through JSON.")
		{
			for i := range 100 {
				var b block.Block
				f.Fuzz(&b.Header)
				b.Digest = hash.Keccak256

				data, err := json.Marshal(b)
				if err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to marshal the block: %v", failed, err)
				}

				var got block.Block
				if err := json.Unmarshal(data, &got); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to unmarshal the block: %v", failed, err)
				}

				if got.Hash() != b.Hash() {
					t.Fatalf("\t%s\tTest 0:\tShould reproduce the same hash, iteration %d.", failed, i)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould reproduce the same hash.", success)
		}

		t.Logf("\tTest 1:\tWhen round tripping through YAML.")
		{
			b := block.New("yaml payload")
			b.Header.Number = 3
			b.Header.PrevBlockHash = strings.Repeat("0", 3) + strings.Repeat("a", 61)
			b.Header.TimeStamp = 1_700_000_000
			b.Header.Nonce = 4096
			b.MinedAt = time.Now()

			data, err := yaml.Marshal(b)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to marshal the block: %v", failed, err)
			}

			var got block.Block
			if err := yaml.Unmarshal(data, &got); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to unmarshal the block: %v", failed, err)
			}

			if got.Hash() != b.Hash() {
				t.Logf("\t%s\tTest 1:\tgot: %s", failed, got.Hash())
				t.Logf("\t%s\tTest 1:\texp: %s", failed, b.Hash())
				t.Fatalf("\t%s\tTest 1:\tShould reproduce the same hash.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reproduce the same hash.", success)
		}
	}
}

func Test_IsHashSolved(t *testing.T) {
	type table struct {
		name       string
		difficulty uint
		hash       string
		exp        bool
	}

	tt := []table{
		{name: "zero", difficulty: 0, hash: "abc", exp: true},
		{name: "one", difficulty: 1, hash: "0bc", exp: true},
		{name: "one-miss", difficulty: 1, hash: "a0c", exp: false},
		{name: "three", difficulty: 3, hash: "000f", exp: true},
		{name: "three-miss", difficulty: 3, hash: "00f0", exp: false},
		{name: "short", difficulty: 5, hash: "000", exp: false},
		{name: "exact", difficulty: 3, hash: "000", exp: true},
	}

	t.Log("Given the need to check the difficulty predicate.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				got := block.IsHashSolved(tst.difficulty, tst.hash)
				if got != tst.exp {
					t.Fatalf("\t%s\tTest %d:\tShould get %v for difficulty %d on %q.", failed, testID, tst.exp, tst.difficulty, tst.hash)
				}
				t.Logf("\t%s\tTest %d:\tShould get %v for difficulty %d on %q.", success, testID, tst.exp, tst.difficulty, tst.hash)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Render(t *testing.T) {
	t.Log("Given the need to display a block.")
	{
		b := block.New("render me")
		b.Header.Number = 7
		b.Header.PrevBlockHash = "00abc"
		b.Header.Nonce = 99

		out := b.Render()
		for _, want := range []string{"render me", b.Header.ID, "00abc", "99", "7", b.Hash(), "sha256"} {
			if !strings.Contains(out, want) {
				t.Fatalf("\t%s\tShould render %q in:\n%s", failed, want, out)
			}
		}
		t.Logf("\t%s\tShould render every field and the hash.", success)
	}
}
