package events_test

import (
	"testing"

	"github.com/ardanlabs/powminer/foundation/events"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Events(t *testing.T) {
	t.Log("Given the need to fan out progress events.")
	{
		evts := events.New()

		a := evts.Acquire("a")
		b := evts.Acquire("b")

		if evts.Acquire("a") != a || evts.Len() != 2 {
			t.Fatalf("\t%s\tShould get the same channel for the same id.", failed)
		}
		t.Logf("\t%s\tShould get the same channel for the same id.", success)

		evts.Send("miner: Mine: MINING: SOLVED")

		for name, ch := range map[string]<-chan string{"a": a, "b": b} {
			select {
			case msg := <-ch:
				if msg != "miner: Mine: MINING: SOLVED" {
					t.Fatalf("\t%s\tShould receive the event on %s: %q", failed, name, msg)
				}
			default:
				t.Fatalf("\t%s\tShould receive the event on %s.", failed, name)
			}
		}
		t.Logf("\t%s\tShould receive the event on every subscriber.", success)

		for range 1000 {
			evts.Send("flood")
		}
		t.Logf("\t%s\tShould not block when a subscriber falls behind.", success)

		dropped, err := evts.Release("a")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to release a subscriber: %v", failed, err)
		}
		if dropped != 900 {
			t.Fatalf("\t%s\tShould count 900 dropped events: %d", failed, dropped)
		}
		t.Logf("\t%s\tShould count 900 dropped events.", success)

		if _, err := evts.Release("a"); err == nil {
			t.Fatalf("\t%s\tShould not be able to release twice.", failed)
		}
		t.Logf("\t%s\tShould be able to release a subscriber once.", success)

		evts.Shutdown()

		n := 0
		for range b {
			n++
		}
		if n != 100 || evts.Len() != 0 {
			t.Fatalf("\t%s\tShould drain the buffered events and close on shutdown: %d", failed, n)
		}
		t.Logf("\t%s\tShould drain the buffered events and close on shutdown.", success)
	}
}
