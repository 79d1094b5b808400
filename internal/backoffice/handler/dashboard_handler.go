package handler

import (
	"net/http"
	"time"

	"github.com/cryptobets/sportsbook/internal/config"
	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/cryptobets/sportsbook/internal/repository"
	"github.com/cryptobets/sportsbook/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DashboardHandler serves the /admin/dashboard endpoint.
type DashboardHandler struct {
	betRepo *repository.BetRepository
	hub     *ws.Hub
	cfg     *config.Config
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(betRepo *repository.BetRepository, hub *ws.Hub, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{betRepo: betRepo, hub: hub, cfg: cfg}
}

// Dashboard godoc
// GET /admin/dashboard
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().UTC()

	// ── Settlement queue ─────────────────────────────────────────────────────
	pending, _ := h.betRepo.CountByStatus(ctx, domain.BetStatusPending)
	approved, _ := h.betRepo.CountByStatus(ctx, domain.BetStatusApproved)

	// ── Open liability ────────────────────────────────────────────────────────
	var exposure gin.H
	if exp, err := h.betRepo.GetOpenExposure(ctx); err == nil {
		exposure = gin.H{
			"held_usd":       exp.HeldUSD,
			"held_btc":       exp.HeldBTC,
			"liability_usd":  exp.LiabilityUSD,
			"liability_btc":  exp.LiabilityBTC,
			"risk_indicator": riskIndicator(exp.LiabilityUSD),
		}
	}

	// ── Last 24h volume ───────────────────────────────────────────────────────
	var volume *repository.LedgerReport
	volume, _ = h.betRepo.GetLedgerReport(ctx, now.Add(-24*time.Hour), now)

	// ── WS connections ────────────────────────────────────────────────────────
	var wsConnections int
	if h.hub != nil {
		wsConnections = h.hub.ConnectedCount()
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"timestamp": now,
		"queue": gin.H{
			"pending_review": pending,
			"in_play":        approved,
		},
		"exposure":       exposure,
		"volume_24h":     volume,
		"ws_connections": wsConnections,
	})
}

// riskIndicator returns GREEN/YELLOW/RED based on the USD payout liability.
func riskIndicator(liabilityUSD string) string {
	liability, err := decimal.NewFromString(liabilityUSD)
	if err != nil {
		return "GREEN"
	}
	switch {
	case liability.GreaterThan(decimal.NewFromInt(100_000)):
		return "RED"
	case liability.GreaterThan(decimal.NewFromInt(25_000)):
		return "YELLOW"
	default:
		return "GREEN"
	}
}
