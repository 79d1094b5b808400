package domain

import (
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// Odds feed read models
// ──────────────────────────────────────────────────────────────────────────────

// SpreadLine is a point spread quote for one side of an event.
type SpreadLine struct {
	Point float64 `json:"point"`
	Odds  Odds    `json:"odds"`
}

// TotalLine is an over/under quote attached to one side's view of an event.
type TotalLine struct {
	Point float64 `json:"point"`
	Over  Odds    `json:"over"`
	Under Odds    `json:"under"`
}

// SideLines groups the quotes offered for one side of an event.
type SideLines struct {
	Moneyline Odds        `json:"moneyline"`
	Spread    *SpreadLine `json:"spread,omitempty"`
	Total     *TotalLine  `json:"total,omitempty"`
}

// EventLine is the bettable view of one upcoming or live event, built from a
// single preferred bookmaker's quotes. It is a read-only feed product; picks
// made from it become Selection odds snapshots.
type EventLine struct {
	EventID      string    `json:"event_id"`
	League       string    `json:"league"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
	IsLive       bool      `json:"is_live"`
	HomeOdds     SideLines `json:"home_odds"`
	AwayOdds     SideLines `json:"away_odds"`
	DrawOdds     *Odds     `json:"draw_odds,omitempty"` // three-way markets only
	FetchedAt    time.Time `json:"fetched_at"`
}

// Label returns the display name for the event.
func (e EventLine) Label() string {
	return e.AwayTeam + " @ " + e.HomeTeam
}

// Live returns true once the event has commenced.
func (e EventLine) Live(now time.Time) bool {
	return e.IsLive || now.After(e.CommenceTime)
}
