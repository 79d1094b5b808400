package domain_test

import (
	"testing"

	"github.com/cryptobets/sportsbook/internal/domain"
)

func pick(eventID string, market domain.MarketKind, outcome domain.Outcome, odds domain.Odds) domain.Selection {
	return domain.Selection{
		EventID:    eventID,
		League:     "NBA",
		EventLabel: "Lakers @ Celtics",
		Market:     market,
		Outcome:    outcome,
		Odds:       odds,
	}
}

// ── Toggle semantics ──────────────────────────────────────────────────────────

func TestSlip_ToggleAddsAndRemoves(t *testing.T) {
	s := domain.NewSlip()

	active, err := s.Toggle(pick("evt1", domain.MarketMoneyline, domain.OutcomeHome, +150))
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !active || s.Len() != 1 {
		t.Fatalf("after first toggle: active=%v len=%d, want true/1", active, s.Len())
	}

	// Same key toggles off.
	active, err = s.Toggle(pick("evt1", domain.MarketMoneyline, domain.OutcomeHome, +150))
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if active || s.Len() != 0 {
		t.Errorf("after second toggle: active=%v len=%d, want false/0", active, s.Len())
	}
}

// Toggling twice returns the slip to its prior state, and a third toggle
// re-adds with whatever odds the feed quotes at that moment.
func TestSlip_DoubleToggleIdempotent(t *testing.T) {
	s := domain.NewSlip()

	s.Toggle(pick("evt1", domain.MarketMoneyline, domain.OutcomeHome, +150))
	s.Toggle(pick("evt1", domain.MarketMoneyline, domain.OutcomeHome, +150))
	s.Toggle(pick("evt1", domain.MarketMoneyline, domain.OutcomeHome, +165)) // line moved

	legs := s.ActiveLegs()
	if len(legs) != 1 {
		t.Fatalf("len(legs) = %d, want 1", len(legs))
	}
	if legs[0].Odds != +165 {
		t.Errorf("re-added leg odds = %d, want refreshed +165", legs[0].Odds)
	}
}

func TestSlip_DistinctOutcomesAreDistinctKeys(t *testing.T) {
	s := domain.NewSlip()

	s.Toggle(pick("evt1", domain.MarketMoneyline, domain.OutcomeHome, +150))
	s.Toggle(pick("evt1", domain.MarketMoneyline, domain.OutcomeAway, -170))
	s.Toggle(pick("evt1", domain.MarketTotal, domain.OutcomeOver, -110))

	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3 distinct selections", s.Len())
	}
}

func TestSlip_RemoveDeactivates(t *testing.T) {
	s := domain.NewSlip()

	sel := pick("evt1", domain.MarketSpread, domain.OutcomeHome, -110)
	s.Toggle(sel)
	s.Remove(sel.Key())

	if s.Len() != 0 {
		t.Errorf("Len() after Remove = %d, want 0", s.Len())
	}

	// Removed selection can be re-toggled back on.
	active, _ := s.Toggle(sel)
	if !active || s.Len() != 1 {
		t.Errorf("re-toggle after Remove: active=%v len=%d, want true/1", active, s.Len())
	}
}

func TestSlip_Clear(t *testing.T) {
	s := domain.NewSlip()
	s.Toggle(pick("evt1", domain.MarketMoneyline, domain.OutcomeHome, +150))
	s.Toggle(pick("evt2", domain.MarketMoneyline, domain.OutcomeAway, -130))
	s.Clear()
	if s.Len() != 0 || len(s.ActiveLegs()) != 0 {
		t.Error("Clear should empty the slip")
	}
}

func TestSlip_RejectsInvalidSelection(t *testing.T) {
	s := domain.NewSlip()
	if _, err := s.Toggle(pick("evt1", domain.MarketMoneyline, domain.OutcomeHome, 0)); err == nil {
		t.Error("zero-odds selection should be rejected")
	}
	if _, err := s.Toggle(pick("", domain.MarketMoneyline, domain.OutcomeHome, +100)); err == nil {
		t.Error("selection without event should be rejected")
	}
}

// ── Mode inference ────────────────────────────────────────────────────────────

func TestSlip_InferredMode(t *testing.T) {
	s := domain.NewSlip()
	if s.InferredMode() != domain.SlipModeSingle {
		t.Error("empty slip should infer single mode")
	}
	s.Toggle(pick("evt1", domain.MarketMoneyline, domain.OutcomeHome, +150))
	if s.InferredMode() != domain.SlipModeSingle {
		t.Error("one leg should infer single mode")
	}
	s.Toggle(pick("evt2", domain.MarketMoneyline, domain.OutcomeAway, -130))
	if s.InferredMode() != domain.SlipModeParlay {
		t.Error("two legs should infer parlay mode")
	}
}
