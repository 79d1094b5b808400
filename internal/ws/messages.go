// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs broadcast to connected clients.
package ws

import (
	"time"

	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/google/uuid"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypeLinesUpdate MsgType = "lines_update"
	MsgTypeBetSettled  MsgType = "bet_settled"
	MsgTypeError       MsgType = "error"
)

// ──────────────────────────────────────────────────────────────────────────────
// LinesUpdateMessage — pushed after every odds feed refresh.
// ──────────────────────────────────────────────────────────────────────────────

// LinesUpdateMessage carries the full set of current lines for one sport.
type LinesUpdateMessage struct {
	Type      MsgType            `json:"type"`
	Sport     string             `json:"sport"`
	Lines     []domain.EventLine `json:"lines"`
	Timestamp time.Time          `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// BetSettledMessage — pushed when the backoffice resolves a bet.
// ──────────────────────────────────────────────────────────────────────────────

// BetSettledMessage notifies clients that a bet reached a terminal status.
// Payout is the formatted amount credited, "" for a lost bet.
type BetSettledMessage struct {
	Type      MsgType          `json:"type"`
	BetID     uuid.UUID        `json:"bet_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Status    domain.BetStatus `json:"status"`
	Currency  domain.Currency  `json:"currency"`
	Payout    string           `json:"payout,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// ErrorMessage — sent to a single client on a non-fatal error.
// ──────────────────────────────────────────────────────────────────────────────

// ErrorMessage is sent directly to one client (not broadcast).
type ErrorMessage struct {
	Type    MsgType `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
}
