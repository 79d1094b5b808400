package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/cryptobets/sportsbook/internal/config"
	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/cryptobets/sportsbook/internal/repository"
	"github.com/cryptobets/sportsbook/internal/service"
	"github.com/gin-gonic/gin"
)

// FinanceHandler serves /admin/finance endpoints.
type FinanceHandler struct {
	profileRepo   *repository.ProfileRepository
	settlementSvc *service.SettlementService
	cfg           *config.Config
}

// NewFinanceHandler creates a FinanceHandler.
func NewFinanceHandler(
	profileRepo *repository.ProfileRepository,
	settlementSvc *service.SettlementService,
	cfg *config.Config,
) *FinanceHandler {
	return &FinanceHandler{profileRepo: profileRepo, settlementSvc: settlementSvc, cfg: cfg}
}

// Report godoc
// GET /admin/finance/report?from=2026-08-01&to=2026-08-31
func (h *FinanceHandler) Report(c *gin.Context) {
	fromStr := c.Query("from")
	toStr := c.Query("to")

	var from, to time.Time
	var err error
	if fromStr != "" {
		from, err = time.Parse("2006-01-02", fromStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_DATE", "from must be YYYY-MM-DD")
			return
		}
	} else {
		from = time.Now().UTC().AddDate(0, -1, 0).Truncate(24 * time.Hour) // default: last 30 days
	}
	if toStr != "" {
		to, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_DATE", "to must be YYYY-MM-DD")
			return
		}
		to = to.Add(24 * time.Hour) // inclusive
	} else {
		to = time.Now().UTC()
	}

	report, err := h.settlementSvc.GetLedgerReport(c.Request.Context(), adminUserID(c), from, to)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, report)
}

// Transactions godoc
// GET /admin/finance/transactions?type=bet_payout&page=1&limit=50
func (h *FinanceHandler) Transactions(c *gin.Context) {
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	txns, err := h.profileRepo.ListTransactions(c.Request.Context(), c.Query("type"), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, txns, len(txns), page, limit)
}
