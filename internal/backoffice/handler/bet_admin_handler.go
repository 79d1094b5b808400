package handler

import (
	"errors"
	"net/http"

	"github.com/cryptobets/sportsbook/internal/config"
	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/cryptobets/sportsbook/internal/repository"
	"github.com/cryptobets/sportsbook/internal/service"
	"github.com/cryptobets/sportsbook/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BetAdminHandler serves the /admin/bets settlement console.
type BetAdminHandler struct {
	settlementSvc *service.SettlementService
	betRepo       *repository.BetRepository
	hub           *ws.Hub
	cfg           *config.Config
}

// NewBetAdminHandler creates a BetAdminHandler.
func NewBetAdminHandler(
	settlementSvc *service.SettlementService,
	betRepo *repository.BetRepository,
	hub *ws.Hub,
	cfg *config.Config,
) *BetAdminHandler {
	return &BetAdminHandler{settlementSvc: settlementSvc, betRepo: betRepo, hub: hub, cfg: cfg}
}

// List godoc
// GET /admin/bets?status=pending&page=1&limit=50
func (h *BetAdminHandler) List(c *gin.Context) {
	status := domain.BetStatus(c.DefaultQuery("status", string(domain.BetStatusPending)))
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	bets, total, err := h.settlementSvc.ListBets(c.Request.Context(), adminUserID(c), status, limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	out := make([]domain.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, b.ToResponse())
	}
	respondList(c, out, total, page, limit)
}

// Detail godoc
// GET /admin/bets/:id
func (h *BetAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid bet id")
		return
	}

	bet, err := h.betRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrBetNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, bet.ToResponse())
}

// Approve godoc
// POST /admin/bets/:id/approve
func (h *BetAdminHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid bet id")
		return
	}

	bet, err := h.settlementSvc.Approve(c.Request.Context(), adminUserID(c), id)
	if err != nil {
		respondSettlementError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, bet.ToResponse())
}

// Reject godoc
// POST /admin/bets/:id/reject
func (h *BetAdminHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid bet id")
		return
	}

	bet, err := h.settlementSvc.Reject(c.Request.Context(), adminUserID(c), id)
	if err != nil {
		respondSettlementError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, bet.ToResponse())
}

// Settle godoc
// POST /admin/bets/:id/settle
// Body: {"outcome":"won","payout_override":{"currency":"usd","amount":"120.00"}}
func (h *BetAdminHandler) Settle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid bet id")
		return
	}

	var body struct {
		Outcome        string        `json:"outcome" binding:"required"`
		PayoutOverride *domain.Money `json:"payout_override"`
	}
	if err = c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	outcome := domain.BetStatus(body.Outcome)
	if outcome != domain.BetStatusWon && outcome != domain.BetStatusLost && outcome != domain.BetStatusVoid {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_OUTCOME", "outcome must be won, lost or void")
		return
	}
	if body.PayoutOverride != nil && !body.PayoutOverride.Currency.IsValid() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_CURRENCY", "payout_override currency must be usd or btc")
		return
	}

	bet, err := h.settlementSvc.Settle(c.Request.Context(), adminUserID(c), id, outcome, body.PayoutOverride)
	if err != nil {
		respondSettlementError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastBetSettled(bet)
	}
	respondSuccess(c, http.StatusOK, bet.ToResponse())
}

// Exposure godoc
// GET /admin/bets/exposure
func (h *BetAdminHandler) Exposure(c *gin.Context) {
	exp, err := h.betRepo.GetOpenExposure(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, exp)
}

// respondSettlementError maps lifecycle errors to HTTP statuses.
func respondSettlementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrBetNotFound.Error())
	case errors.Is(err, domain.ErrAlreadySettled):
		respondError(c, http.StatusConflict, "ERR_ALREADY_SETTLED", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		respondError(c, http.StatusConflict, "ERR_INVALID_TRANSITION", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
	}
}
