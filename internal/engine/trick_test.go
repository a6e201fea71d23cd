package engine

import (
	"errors"
	"testing"

	"guandan/internal/domain"
)

// weakestSingle finds some single-card play in hand, for driving a
// deterministic lead without depending on bot package (which itself
// depends on engine, so it can't be imported here).
func weakestSingle(hand []domain.Card) []domain.Card {
	return hand[:1]
}

func TestTrickClearsAfterAllOthersPass(t *testing.T) {
	e, sink, _ := newTestEngine(t)
	e.NewMatch(1)
	e.NewDeal()

	leader := e.DealView().CurrentSeat
	lead := weakestSingle(e.Hand(leader).Cards)
	if err := e.Play(leader, lead); err != nil {
		t.Fatalf("leader Play error: %v", err)
	}

	for i := 0; i < numSeats-1; i++ {
		seat := e.DealView().CurrentSeat
		if err := e.Pass(seat); err != nil {
			t.Fatalf("Pass(%d) error: %v", seat, err)
		}
	}

	dv := e.DealView()
	if dv.CurrentSeat != leader {
		t.Fatalf("after the trick clears, CurrentSeat = %d, want the original leader %d", dv.CurrentSeat, leader)
	}
	if dv.LastPlayInfo != nil {
		t.Fatal("LastPlayInfo should be cleared once the trick closes")
	}

	cleared := false
	for _, ev := range sink.Events {
		if ev.Kind == EventTrickCleared {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected an EventTrickCleared once all others passed")
	}
}

func TestPassResetsOnNewPlay(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.NewMatch(1)
	e.NewDeal()

	leader := e.DealView().CurrentSeat
	if err := e.Play(leader, weakestSingle(e.Hand(leader).Cards)); err != nil {
		t.Fatalf("leader Play error: %v", err)
	}
	second := e.DealView().CurrentSeat
	if err := e.Pass(second); err != nil {
		t.Fatalf("Pass error: %v", err)
	}

	third := e.DealView().CurrentSeat
	beater := findBeatingSingle(t, e, third)
	if beater == nil {
		t.Skip("no hand card beats the led single at this seed")
	}
	if err := e.Play(third, beater); err != nil {
		t.Fatalf("third-seat Play error: %v", err)
	}

	dv := e.DealView()
	if dv.Passed[second] {
		t.Error("a fresh Play should reset every seat's passed flag, including the earlier passer")
	}
}

func findBeatingSingle(t *testing.T, e *Engine, seat Seat) []domain.Card {
	t.Helper()
	dv := e.DealView()
	hand := e.Hand(seat).Cards
	plays := domain.EnumeratePlays(hand, dv.Level)
	for _, p := range plays {
		if p.Kind == domain.Single && dv.LastPlayInfo != nil && domain.Beats(p, dv.LastPlayInfo) {
			return p.Cards
		}
	}
	return nil
}

func TestPassRejectsWrongPhaseAfterDealEnds(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.NewMatch(1)
	e.NewDeal()
	leader := e.DealView().CurrentSeat
	e.DebugForceWin(leader)
	// Force the other three seats to finish too, ending the deal.
	for i := 0; i < numSeats-1; i++ {
		dv := e.DealView()
		if dv.Phase != PhasePlaying {
			break
		}
		e.DebugForceWin(dv.CurrentSeat)
	}
	if e.DealView().Phase == PhasePlaying {
		t.Skip("deal did not end under forced-win sequencing at this seed")
	}
	if err := e.Pass(0); !errors.Is(err, ErrPhaseMismatch) {
		t.Errorf("Pass after deal end: err = %v, want ErrPhaseMismatch", err)
	}
}
