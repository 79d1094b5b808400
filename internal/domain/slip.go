package domain

import (
	"fmt"
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// Markets & outcomes
// ──────────────────────────────────────────────────────────────────────────────

// MarketKind identifies the wager market a selection belongs to.
type MarketKind string

const (
	MarketMoneyline MarketKind = "moneyline"
	MarketSpread    MarketKind = "spread"
	MarketTotal     MarketKind = "total"
)

// IsValid returns true for a recognised market kind.
func (m MarketKind) IsValid() bool {
	return m == MarketMoneyline || m == MarketSpread || m == MarketTotal
}

// Outcome is the side of a market the bettor takes.
type Outcome string

const (
	OutcomeHome  Outcome = "home"
	OutcomeAway  Outcome = "away"
	OutcomeDraw  Outcome = "draw"
	OutcomeOver  Outcome = "over"
	OutcomeUnder Outcome = "under"
)

// IsValid returns true for a recognised outcome.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeHome, OutcomeAway, OutcomeDraw, OutcomeOver, OutcomeUnder:
		return true
	}
	return false
}

// ──────────────────────────────────────────────────────────────────────────────
// Selection
// ──────────────────────────────────────────────────────────────────────────────

// Selection is one pick on a slip: an event, a market, an outcome, and the
// odds quoted at the moment the pick was made. The odds are a snapshot; a
// later feed refresh never mutates a selection already attached to a bet.
type Selection struct {
	EventID    string     `json:"event_id"`
	League     string     `json:"league"`
	EventLabel string     `json:"event_label"` // e.g. "Lakers @ Celtics"
	Market     MarketKind `json:"market"`
	Outcome    Outcome    `json:"outcome"`
	Line       string     `json:"line"` // spread/total point, empty for moneyline
	Odds       Odds       `json:"odds"`
	AddedAt    time.Time  `json:"added_at"`
}

// Key returns the identity of a selection on a slip. Two picks on the same
// event, market and outcome are the same selection; only the odds snapshot
// may differ.
func (s Selection) Key() string {
	return fmt.Sprintf("%s-%s-%s", s.EventID, s.Market, s.Outcome)
}

// Validate checks the structural fields of a selection.
func (s Selection) Validate() error {
	if s.EventID == "" || !s.Market.IsValid() || !s.Outcome.IsValid() {
		return ErrInvalidSelection
	}
	if !s.Odds.IsValid() {
		return ErrInvalidOdds
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Slip
// ──────────────────────────────────────────────────────────────────────────────

// SlipMode is the submission mode hint derived from the slip contents.
type SlipMode string

const (
	SlipModeSingle SlipMode = "single"
	SlipModeParlay SlipMode = "parlay"
)

// slipEntry pairs a selection with its active flag. Removed selections stay
// in the set deactivated so a re-toggle restores them with fresh odds.
type slipEntry struct {
	sel    Selection
	active bool
}

// Slip is a user's working selection set, keyed by (event, market, outcome).
// It is pure in-memory client state: submission reads it, nothing persists it.
// Slip is not safe for concurrent use; callers own synchronisation.
type Slip struct {
	entries map[string]*slipEntry
	order   []string // insertion order for stable listing
}

// NewSlip returns an empty slip.
func NewSlip() *Slip {
	return &Slip{entries: make(map[string]*slipEntry)}
}

// Toggle flips a selection's membership. A new key adds the selection
// active; an existing active key deactivates it; an existing inactive key
// reactivates it and refreshes the odds snapshot from the incoming pick.
// Returns true when the selection is active after the call.
func (s *Slip) Toggle(sel Selection) (bool, error) {
	if err := sel.Validate(); err != nil {
		return false, err
	}
	key := sel.Key()
	if e, ok := s.entries[key]; ok {
		if e.active {
			e.active = false
			return false, nil
		}
		e.sel = sel // refresh odds on re-add
		e.active = true
		return true, nil
	}
	s.entries[key] = &slipEntry{sel: sel, active: true}
	s.order = append(s.order, key)
	return true, nil
}

// Remove deactivates the selection with the given key. Unknown keys are a
// no-op.
func (s *Slip) Remove(key string) {
	if e, ok := s.entries[key]; ok {
		e.active = false
	}
}

// Clear empties the slip entirely.
func (s *Slip) Clear() {
	s.entries = make(map[string]*slipEntry)
	s.order = nil
}

// ActiveLegs returns the active selections in insertion order.
func (s *Slip) ActiveLegs() []Selection {
	legs := make([]Selection, 0, len(s.order))
	for _, key := range s.order {
		if e := s.entries[key]; e != nil && e.active {
			legs = append(legs, e.sel)
		}
	}
	return legs
}

// Len returns the number of active selections.
func (s *Slip) Len() int {
	n := 0
	for _, e := range s.entries {
		if e.active {
			n++
		}
	}
	return n
}

// InferredMode suggests parlay when two or more legs are active. This is a
// presentation hint only; the submitted mode is always explicit.
func (s *Slip) InferredMode() SlipMode {
	if s.Len() >= 2 {
		return SlipModeParlay
	}
	return SlipModeSingle
}
