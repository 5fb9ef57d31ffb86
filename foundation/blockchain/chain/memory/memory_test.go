package memory_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ardanlabs/powminer/foundation/blockchain/block"
	"github.com/ardanlabs/powminer/foundation/blockchain/chain"
	"github.com/ardanlabs/powminer/foundation/blockchain/chain/memory"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// The memory store must satisfy the store contract.
var _ chain.Store = (*memory.Memory)(nil)

// =============================================================================

func Test_Empty(t *testing.T) {
	t.Log("Given the need to read an empty chain.")
	{
		m := memory.New()

		if _, ok := m.Last(); ok {
			t.Fatalf("\t%s\tShould not find a tail in an empty chain.", failed)
		}
		t.Logf("\t%s\tShould not find a tail in an empty chain.", success)

		if n := len(m.Snapshot()); n != 0 {
			t.Fatalf("\t%s\tShould get an empty snapshot: %d", failed, n)
		}
		t.Logf("\t%s\tShould get an empty snapshot.", success)
	}
}

func Test_AppendOrder(t *testing.T) {
	t.Log("Given the need to append blocks in order.")
	{
		m := memory.New()

		for i := range 3 {
			b := block.New(fmt.Sprintf("block %d", i))
			if err := m.Append(b); err != nil {
				t.Fatalf("\t%s\tShould be able to append: %v", failed, err)
			}
		}
		t.Logf("\t%s\tShould be able to append.", success)

		last, ok := m.Last()
		if !ok || last.Header.Data != "block 2" {
			t.Fatalf("\t%s\tShould get the last appended block: %+v", failed, last.Header)
		}
		t.Logf("\t%s\tShould get the last appended block.", success)

		snap := m.Snapshot()
		for i, b := range snap {
			if exp := fmt.Sprintf("block %d", i); b.Header.Data != exp {
				t.Fatalf("\t%s\tShould keep append order: got %q exp %q", failed, b.Header.Data, exp)
			}
		}
		t.Logf("\t%s\tShould keep append order.", success)

		snap[0].Header.Data = "mutated"
		if first := m.Snapshot()[0]; first.Header.Data != "block 0" {
			t.Fatalf("\t%s\tShould not let a snapshot mutate the chain.", failed)
		}
		t.Logf("\t%s\tShould not let a snapshot mutate the chain.", success)
	}
}

func Test_ConcurrentAppend(t *testing.T) {
	t.Log("Given the need to append from many goroutines.")
	{
		const g = 50
		const perG = 20

		m := memory.New()

		var wg sync.WaitGroup
		wg.Add(g)

		for i := range g {
			go func() {
				defer wg.Done()
				for j := range perG {
					m.Last()
					m.Append(block.New(fmt.Sprintf("%d-%d", i, j)))
				}
			}()
		}

		wg.Wait()

		if n := m.Len(); n != g*perG {
			t.Fatalf("\t%s\tShould not lose any append: got %d exp %d", failed, n, g*perG)
		}
		t.Logf("\t%s\tShould not lose any append.", success)

		seen := make(map[string]struct{})
		for _, b := range m.Snapshot() {
			seen[b.Header.Data] = struct{}{}
		}
		if len(seen) != g*perG {
			t.Fatalf("\t%s\tShould store every distinct block: %d", failed, len(seen))
		}
		t.Logf("\t%s\tShould store every distinct block.", success)
	}
}
