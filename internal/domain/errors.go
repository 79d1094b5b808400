package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Slip & odds errors
var (
	// ErrInvalidOdds is returned for a zero American odds quote.
	ErrInvalidOdds = errors.New("invalid odds: quote must be non-zero")

	// ErrInvalidSelection is returned when a selection is structurally
	// malformed (missing event, unknown market or outcome).
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrInsufficientLegs is returned when a parlay carries fewer than two legs.
	ErrInsufficientLegs = errors.New("parlay requires at least two selections")

	// ErrInvalidParlay is returned when a parlay submission is malformed, e.g.
	// per-leg stakes supplied where a single combined stake is expected.
	ErrInvalidParlay = errors.New("invalid parlay submission")

	// ErrNoStakeEntered is returned when no leg of a submission carries a
	// positive stake.
	ErrNoStakeEntered = errors.New("no stake entered")

	// ErrStakeBelowMinimum is returned when a stake is positive but under the
	// configured floor for its currency.
	ErrStakeBelowMinimum = errors.New("stake is below the minimum")
)

// Bet lifecycle errors
var (
	// ErrBetNotFound is returned when no bet matches the given criteria.
	ErrBetNotFound = errors.New("bet not found")

	// ErrInvalidTransition is returned when a status change is not in the
	// lifecycle transition table.
	ErrInvalidTransition = errors.New("invalid bet status transition")

	// ErrAlreadySettled is returned when settlement is retried on a bet that
	// already reached a terminal status.
	ErrAlreadySettled = errors.New("bet is already settled")
)

// User / ledger errors
var (
	// ErrUserNotFound is returned when no user matches the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrProfileNotFound is returned when no balance profile exists for the
	// requested user.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrEmailTaken is returned on registration when the email already exists.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrUsernameTaken is returned on registration when the username already exists.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrInvalidCredentials is returned when login credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserInactive is returned when a suspended user attempts an action.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrInsufficientFunds is returned when a user's balance in the stake
	// currency cannot cover a placement. The attempt leaves no side effects.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNegativeResultingBalance is returned when an admin adjustment would
	// take a balance below zero.
	ErrNegativeResultingBalance = errors.New("adjustment would result in a negative balance")

	// ErrZeroAdjustment is returned when an admin adjustment rounds to zero
	// in its currency, which would mutate nothing yet write an audit row.
	ErrZeroAdjustment = errors.New("adjustment amount must be non-zero")
)

// Auth errors
var (
	// ErrUnauthenticated is returned when no valid identity is present.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUnauthorized is returned when the authenticated user lacks the
	// required capability.
	ErrUnauthorized = errors.New("unauthorized: insufficient permissions")

	// ErrTokenExpired is returned when a JWT or refresh token has passed its TTL.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a token cannot be parsed or its signature
	// does not match.
	ErrTokenInvalid = errors.New("token is invalid")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound can stay in sync automatically.
var notFoundErrors = []error{
	ErrBetNotFound,
	ErrUserNotFound,
	ErrProfileNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors. Use this instead of comparing error values directly
// when you need to translate domain errors to HTTP 404 responses.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict returns true for errors that represent a state conflict (e.g.
// duplicate registration or double-settlement).
func IsConflict(err error) bool {
	conflictErrors := []error{
		ErrEmailTaken,
		ErrUsernameTaken,
		ErrAlreadySettled,
		ErrInvalidTransition,
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsAuthError returns true for authentication/authorisation errors.
func IsAuthError(err error) bool {
	authErrors := []error{
		ErrUnauthenticated,
		ErrUnauthorized,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrInvalidCredentials,
	}
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation returns true for request-shape errors that map to HTTP 400.
func IsValidation(err error) bool {
	validationErrors := []error{
		ErrInvalidOdds,
		ErrInvalidSelection,
		ErrInsufficientLegs,
		ErrInvalidParlay,
		ErrNoStakeEntered,
		ErrStakeBelowMinimum,
		ErrZeroAdjustment,
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
