package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cryptobets/sportsbook/internal/config"
	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/cryptobets/sportsbook/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// ──────────────────────────────────────────────────────────────────────────────
// LineBroadcaster
// ──────────────────────────────────────────────────────────────────────────────

// LineBroadcaster is the minimal interface OddsFeedService needs from the WS
// hub. Implemented by ws.Hub.
type LineBroadcaster interface {
	BroadcastLines(sport string, lines []domain.EventLine)
}

// ──────────────────────────────────────────────────────────────────────────────
// OddsFeedService
// ──────────────────────────────────────────────────────────────────────────────

// OddsFeedService fetches bettable lines from the upstream odds provider,
// reduces each event to a single preferred bookmaker's quotes, and caches
// the result in Redis. The feed is strictly read-only with respect to the
// ledger: placed selections carry their own odds snapshots and a refresh
// never touches them.
type OddsFeedService struct {
	client      *http.Client
	cfg         *config.OddsFeedConfig
	rdb         *redis.Client // nil disables Redis, in-process cache only
	broadcaster LineBroadcaster

	// in-process fallback cache
	mu        sync.RWMutex
	cached    map[string][]domain.EventLine
	cacheTime map[string]time.Time
}

// NewOddsFeedService constructs an OddsFeedService. rdb may be nil when
// Redis is not configured.
func NewOddsFeedService(cfg *config.Config, rdb *redis.Client) *OddsFeedService {
	return &OddsFeedService{
		client:    &http.Client{Timeout: cfg.OddsFeed.FetchTimeout},
		cfg:       &cfg.OddsFeed,
		rdb:       rdb,
		cached:    make(map[string][]domain.EventLine),
		cacheTime: make(map[string]time.Time),
	}
}

// SetBroadcaster injects the WS hub dependency post-construction.
func (s *OddsFeedService) SetBroadcaster(b LineBroadcaster) { s.broadcaster = b }

// cacheKey builds the Redis key for one feed query.
func cacheKey(sport, regions, markets string) string {
	return fmt.Sprintf("lines:%s:%s:%s", sport, regions, markets)
}

// ──────────────────────────────────────────────────────────────────────────────
// Public API
// ──────────────────────────────────────────────────────────────────────────────

// GetLines returns the current lines for a sport, serving from cache while
// it is fresh (< CacheTTL) and refreshing from the upstream provider
// otherwise. A successful refresh is broadcast to connected WS clients.
func (s *OddsFeedService) GetLines(ctx context.Context, sport, regions, markets string) ([]domain.EventLine, error) {
	if sport == "" {
		sport = s.cfg.DefaultSport
	}
	if regions == "" {
		regions = s.cfg.DefaultRegions
	}
	if markets == "" {
		markets = s.cfg.DefaultMarkets
	}
	key := cacheKey(sport, regions, markets)

	if lines, ok := s.fromCache(ctx, key); ok {
		return lines, nil
	}

	lines, err := s.fetchLines(ctx, sport, regions, markets)
	if err != nil {
		metrics.OddsFeedFetches.WithLabelValues("error").Inc()
		// Serve stale data over failing hard when we have any.
		if stale, ok := s.fromStale(key); ok {
			slog.Warn("odds feed fetch failed, serving stale lines", "sport", sport, "error", err)
			return stale, nil
		}
		return nil, fmt.Errorf("odds_feed_service.GetLines: %w", err)
	}
	metrics.OddsFeedFetches.WithLabelValues("ok").Inc()

	s.storeCache(ctx, key, lines)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastLines(sport, lines)
	}
	return lines, nil
}

// fromCache checks Redis first, then the in-process cache.
func (s *OddsFeedService) fromCache(ctx context.Context, key string) ([]domain.EventLine, bool) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var lines []domain.EventLine
			if jerr := json.Unmarshal(raw, &lines); jerr == nil {
				return lines, true
			}
		} else if !errors.Is(err, redis.Nil) {
			slog.Warn("odds line cache read failed", "error", err)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.cacheTime[key]; ok && time.Since(t) < s.cfg.CacheTTL {
		return s.cached[key], true
	}
	return nil, false
}

// fromStale returns the in-process copy regardless of TTL.
func (s *OddsFeedService) fromStale(key string) ([]domain.EventLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines, ok := s.cached[key]
	return lines, ok
}

// storeCache writes the lines to Redis (with TTL) and the in-process cache.
func (s *OddsFeedService) storeCache(ctx context.Context, key string, lines []domain.EventLine) {
	if s.rdb != nil {
		if raw, err := json.Marshal(lines); err == nil {
			if err := s.rdb.Set(ctx, key, raw, s.cfg.CacheTTL).Err(); err != nil {
				slog.Warn("odds line cache write failed", "error", err)
			}
		}
	}
	s.mu.Lock()
	s.cached[key] = lines
	s.cacheTime[key] = time.Now()
	s.mu.Unlock()
}

// ──────────────────────────────────────────────────────────────────────────────
// Upstream fetch & mapping
// ──────────────────────────────────────────────────────────────────────────────

// feedEvent mirrors the upstream odds API response shape.
type feedEvent struct {
	ID           string    `json:"id"`
	SportTitle   string    `json:"sport_title"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	Bookmakers   []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string   `json:"name"`
				Price float64  `json:"price"`
				Point *float64 `json:"point"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// fetchLines pulls the odds for one sport from the upstream provider.
//
//	GET /v4/sports/{sport}/odds?apiKey=…&regions=…&markets=…&oddsFormat=american
func (s *OddsFeedService) fetchLines(ctx context.Context, sport, regions, markets string) ([]domain.EventLine, error) {
	q := url.Values{}
	q.Set("apiKey", s.cfg.APIKey)
	q.Set("regions", regions)
	q.Set("markets", markets)
	q.Set("oddsFormat", "american")
	endpoint := fmt.Sprintf("%s/v4/sports/%s/odds?%s", s.cfg.BaseURL, url.PathEscape(sport), q.Encode())

	body, err := s.doGet(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var events []feedEvent
	if err = json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	now := time.Now().UTC()
	lines := make([]domain.EventLine, 0, len(events))
	for _, ev := range events {
		line, ok := s.mapEvent(ev, now)
		if !ok {
			continue // no usable bookmaker for this event
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// mapEvent reduces one upstream event to an EventLine using the first
// preferred bookmaker that quotes it, falling back to the first bookmaker
// present. American prices arrive as floats; quotes are truncated to int.
func (s *OddsFeedService) mapEvent(ev feedEvent, now time.Time) (domain.EventLine, bool) {
	if len(ev.Bookmakers) == 0 {
		return domain.EventLine{}, false
	}

	bk := ev.Bookmakers[0]
preferred:
	for _, want := range s.cfg.PreferredBookmakers {
		for _, cand := range ev.Bookmakers {
			if cand.Key == want {
				bk = cand
				break preferred
			}
		}
	}

	line := domain.EventLine{
		EventID:      ev.ID,
		League:       ev.SportTitle,
		HomeTeam:     ev.HomeTeam,
		AwayTeam:     ev.AwayTeam,
		CommenceTime: ev.CommenceTime,
		IsLive:       now.After(ev.CommenceTime),
		FetchedAt:    now,
	}

	for _, m := range bk.Markets {
		switch m.Key {
		case "h2h":
			for _, o := range m.Outcomes {
				odds := domain.Odds(int(o.Price))
				switch o.Name {
				case ev.HomeTeam:
					line.HomeOdds.Moneyline = odds
				case ev.AwayTeam:
					line.AwayOdds.Moneyline = odds
				case "Draw":
					draw := odds
					line.DrawOdds = &draw
				}
			}
		case "spreads":
			for _, o := range m.Outcomes {
				if o.Point == nil {
					continue
				}
				sp := &domain.SpreadLine{Point: *o.Point, Odds: domain.Odds(int(o.Price))}
				if o.Name == ev.HomeTeam {
					line.HomeOdds.Spread = sp
				} else if o.Name == ev.AwayTeam {
					line.AwayOdds.Spread = sp
				}
			}
		case "totals":
			var total domain.TotalLine
			for _, o := range m.Outcomes {
				if o.Point != nil {
					total.Point = *o.Point
				}
				if o.Name == "Over" {
					total.Over = domain.Odds(int(o.Price))
				} else if o.Name == "Under" {
					total.Under = domain.Odds(int(o.Price))
				}
			}
			if total.Over != 0 || total.Under != 0 {
				t := total
				line.HomeOdds.Total = &t
				line.AwayOdds.Total = &t
			}
		}
	}

	if line.HomeOdds.Moneyline == 0 && line.HomeOdds.Spread == nil && line.HomeOdds.Total == nil {
		return domain.EventLine{}, false
	}
	return line, true
}

// ──────────────────────────────────────────────────────────────────────────────
// HTTP helper
// ──────────────────────────────────────────────────────────────────────────────

// doGet performs an HTTP GET with the service's client and returns the body
// bytes, or an error for any non-200 status code.
func (s *OddsFeedService) doGet(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "cryptobets-sportsbook/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
