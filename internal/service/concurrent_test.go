package service_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
)

// TestConcurrentStakeDebits simulates 50 goroutines simultaneously debiting
// a fixed stake from a shared balance — protected by a mutex.
// This test verifies our concurrency guard pattern compiles and passes -race.
//
// In the real LedgerService, the DB row-level FOR UPDATE lock on the profile
// provides this guarantee.  Here we replicate the same guard with sync
// primitives so the race detector can confirm the pattern is sound.
func TestConcurrentStakeDebits(t *testing.T) {
	const workers = 50
	const stakeEach = 10 // USD per bet

	balance := decimal.NewFromInt(int64(workers * stakeEach)) // exact total
	var mu sync.Mutex
	var rejected int64 // placements refused for insufficient funds (zero expected)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			stake := decimal.NewFromInt(stakeEach)

			mu.Lock()
			defer mu.Unlock()

			if balance.LessThan(stake) {
				atomic.AddInt64(&rejected, 1)
				return
			}
			balance = balance.Sub(stake)
		}()
	}
	wg.Wait()

	// All placements should succeed: no rejections expected.
	if rejected > 0 {
		t.Errorf("expected 0 rejected placements, got %d", rejected)
	}
	// Balance should be exactly 0 after exactly 50 × 10 debits.
	if !balance.IsZero() {
		t.Errorf("final balance should be 0, got %s", balance)
	}
}

// TestConcurrentOverdrawGuard verifies the funds check under contention:
// with funds for only half the placements, exactly half must be refused and
// the balance must never go negative.
func TestConcurrentOverdrawGuard(t *testing.T) {
	const workers = 40
	const stakeEach = 10

	balance := decimal.NewFromInt(int64(workers / 2 * stakeEach)) // funds for half
	var mu sync.Mutex
	var placed, rejected int64

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			stake := decimal.NewFromInt(stakeEach)

			mu.Lock()
			defer mu.Unlock()

			if balance.LessThan(stake) {
				atomic.AddInt64(&rejected, 1)
				return
			}
			balance = balance.Sub(stake)
			atomic.AddInt64(&placed, 1)
		}()
	}
	wg.Wait()

	if placed != workers/2 {
		t.Errorf("expected %d placements, got %d", workers/2, placed)
	}
	if rejected != workers/2 {
		t.Errorf("expected %d rejections, got %d", workers/2, rejected)
	}
	if balance.IsNegative() {
		t.Errorf("balance must never go negative, got %s", balance)
	}
}

// TestConcurrentSettlementGuard verifies that double-settlement protection
// works under concurrent access: only one of N goroutines succeeds at
// settling a bet. In the real LedgerService the status-pinned UPDATE
// provides this guarantee.
func TestConcurrentSettlementGuard(t *testing.T) {
	const workers = 20
	type betState struct {
		mu      sync.Mutex
		settled bool
	}

	var (
		b      betState
		wins   int64
		losses int64
		wg     sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			b.mu.Lock()
			defer b.mu.Unlock()

			if b.settled {
				// Second+ call: should be rejected
				atomic.AddInt64(&losses, 1)
				return
			}
			b.settled = true
			atomic.AddInt64(&wins, 1)
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("exactly 1 goroutine should have settled the bet, got %d", wins)
	}
	if losses != workers-1 {
		t.Errorf("expected %d rejections, got %d", workers-1, losses)
	}
}
