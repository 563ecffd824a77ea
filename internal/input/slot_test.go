package input

import (
	"sync"
	"testing"

	"github.com/sweeney/basin-controller/internal/logic"
)

func TestSlotEmpty(t *testing.T) {
	var s Slot
	if _, ok := s.Drain(); ok {
		t.Error("empty slot should not drain an intent")
	}
}

func TestSlotPostDrain(t *testing.T) {
	var s Slot
	s.Post(logic.Intent{Kind: logic.IntentStartFill})
	it, ok := s.Drain()
	if !ok {
		t.Fatal("expected an intent")
	}
	if it.Kind != logic.IntentStartFill {
		t.Errorf("expected START_FILL, got %s", it.Kind)
	}
	if _, ok := s.Drain(); ok {
		t.Error("slot should be empty after drain")
	}
}

func TestSlotLastWriteWins(t *testing.T) {
	var s Slot
	s.Post(logic.Intent{Kind: logic.IntentModeMenu})
	s.Post(logic.Intent{Kind: logic.IntentDiagnostics})
	s.Post(logic.Intent{Kind: logic.IntentCancel})

	it, ok := s.Drain()
	if !ok || it.Kind != logic.IntentCancel {
		t.Errorf("expected CANCEL, got %+v (ok=%v)", it, ok)
	}
	if got := s.Overwrites(); got != 2 {
		t.Errorf("expected 2 overwrites, got %d", got)
	}
}

func TestSlotCarriesLabel(t *testing.T) {
	var s Slot
	s.Post(logic.Intent{Kind: logic.IntentSetLabel, Label: "IP:192.168.1.20"})
	it, _ := s.Drain()
	if it.Label != "IP:192.168.1.20" {
		t.Errorf("expected label, got %q", it.Label)
	}
}

func TestSlotConcurrentPosts(t *testing.T) {
	var s Slot
	var wg sync.WaitGroup
	drained := 0
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				if _, ok := s.Drain(); ok {
					drained++
				}
			}
		}
	}()
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				s.Post(logic.Intent{Kind: logic.IntentCancel})
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-done
	if _, ok := s.Drain(); ok {
		drained++
	}
	if total := drained + int(s.Overwrites()); total != 2000 {
		t.Errorf("every post must be drained or counted as overwritten: drained=%d overwrites=%d", drained, s.Overwrites())
	}
}

func TestModeViewDefault(t *testing.T) {
	var v ModeView
	if got := v.Load(); got != logic.KindHome {
		t.Errorf("expected HOME before publish, got %s", got)
	}
	v.Publish(logic.KindCleaning)
	if got := v.Load(); got != logic.KindCleaning {
		t.Errorf("expected CLEANING, got %s", got)
	}
}
