package middleware

import (
	"testing"
	"time"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLimiter(rps int) (*ipLimiter, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)}
	l := newIPLimiter(rps)
	l.now = clk.now
	l.nextSweep = clk.t.Add(sweepEvery)
	return l, clk
}

func TestIPLimiter_BurstThenDenied(t *testing.T) {
	l, _ := newTestLimiter(10) // burst = 20

	for i := 0; i < 20; i++ {
		if !l.take("1.2.3.4") {
			t.Fatalf("request %d denied inside burst capacity", i+1)
		}
	}
	if l.take("1.2.3.4") {
		t.Error("request beyond burst capacity was allowed")
	}
}

func TestIPLimiter_RefillsOverTime(t *testing.T) {
	l, clk := newTestLimiter(10)

	for i := 0; i < 20; i++ {
		l.take("1.2.3.4")
	}
	if l.take("1.2.3.4") {
		t.Fatal("bucket should be empty")
	}

	// 1 second at 10 rps refills 10 tokens.
	clk.advance(time.Second)
	allowed := 0
	for i := 0; i < 15; i++ {
		if l.take("1.2.3.4") {
			allowed++
		}
	}
	if allowed != 10 {
		t.Errorf("allowed %d requests after 1s refill, want 10", allowed)
	}
}

func TestIPLimiter_IsolatesClients(t *testing.T) {
	l, _ := newTestLimiter(10)

	for i := 0; i < 20; i++ {
		l.take("1.2.3.4")
	}
	if l.take("1.2.3.4") {
		t.Fatal("first client should be exhausted")
	}
	if !l.take("5.6.7.8") {
		t.Error("an exhausted client must not affect another IP")
	}
}

func TestIPLimiter_SweepsIdleBuckets(t *testing.T) {
	l, clk := newTestLimiter(10)

	l.take("1.2.3.4")
	l.take("5.6.7.8")
	if len(l.buckets) != 2 {
		t.Fatalf("buckets = %d, want 2", len(l.buckets))
	}

	// Only one client returns after the idle TTL; the other is evicted on
	// the next sweep.
	clk.advance(bucketIdleTTL + sweepEvery)
	l.take("1.2.3.4")
	if _, ok := l.buckets["5.6.7.8"]; ok {
		t.Error("idle bucket survived the sweep")
	}
	if _, ok := l.buckets["1.2.3.4"]; !ok {
		t.Error("active bucket was evicted")
	}
}
