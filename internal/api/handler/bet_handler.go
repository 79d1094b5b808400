package handler

import (
	"errors"
	"net/http"

	"github.com/cryptobets/sportsbook/internal/api/middleware"
	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/cryptobets/sportsbook/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BetHandler serves slip submission and bet query endpoints.
type BetHandler struct {
	submissionSvc *service.SubmissionService
	ledgerSvc     *service.LedgerService
}

// NewBetHandler creates a BetHandler.
func NewBetHandler(submissionSvc *service.SubmissionService, ledgerSvc *service.LedgerService) *BetHandler {
	return &BetHandler{submissionSvc: submissionSvc, ledgerSvc: ledgerSvc}
}

// Submit godoc
// POST /api/bets [JWT]
// Body: {"mode":"parlay","currency":"usd","legs":[...],"parlay_stake":"20.00"}
func (h *BetHandler) Submit(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	result, err := h.submissionSvc.Submit(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientFunds):
			respondError(c, http.StatusPaymentRequired, "ERR_INSUFFICIENT_FUNDS", err.Error())
		case domain.IsValidation(err):
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not place bet")
		}
		return
	}

	// Single mode can partially succeed: report 207-style detail with 201 when
	// at least one leg placed, 402 when every staked leg bounced on funds.
	if result.Placed == 0 && result.Failed > 0 {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"success": false,
			"data":    result,
		})
		return
	}
	respondSuccess(c, http.StatusCreated, result)
}

// GetMyBets godoc
// GET /api/bets/my?open=true&page=1&limit=20 [JWT]
func (h *BetHandler) GetMyBets(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	var openOnly *bool
	switch c.Query("open") {
	case "true":
		v := true
		openOnly = &v
	case "false":
		v := false
		openOnly = &v
	}

	bets, err := h.ledgerSvc.GetMyBets(c.Request.Context(), userID, openOnly, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch bets")
		return
	}

	out := make([]domain.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, b.ToResponse())
	}
	respondList(c, out, len(out), page, limit)
}

// GetBetByID godoc
// GET /api/bets/:id [JWT]
func (h *BetHandler) GetBetByID(c *gin.Context) {
	userID := middleware.GetUserID(c)

	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_BET_ID", "invalid bet id")
		return
	}

	bet, err := h.ledgerSvc.GetBetByID(c.Request.Context(), betID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", "this bet does not belong to you")
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrBetNotFound.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch bet")
		}
		return
	}
	respondSuccess(c, http.StatusOK, bet.ToResponse())
}
