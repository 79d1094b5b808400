package handler

import (
	"net/http"

	"github.com/cryptobets/sportsbook/internal/api/middleware"
	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/cryptobets/sportsbook/internal/service"
	"github.com/gin-gonic/gin"
)

// WalletHandler serves balance and ledger history endpoints. Deposits and
// withdrawals are backoffice adjustments, so there is no user-initiated
// money movement here.
type WalletHandler struct {
	ledgerSvc *service.LedgerService
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(ledgerSvc *service.LedgerService) *WalletHandler {
	return &WalletHandler{ledgerSvc: ledgerSvc}
}

// GetBalance godoc
// GET /api/wallet/balance [JWT]
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	profile, err := h.ledgerSvc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusNotFound, "ERR_PROFILE_NOT_FOUND", domain.ErrProfileNotFound.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"balance_usd": profile.BalanceUSD.StringFixed(domain.CurrencyUSD.Scale()),
		"balance_btc": profile.BalanceBTC.StringFixed(domain.CurrencyBTC.Scale()),
	})
}

// GetTransactions godoc
// GET /api/wallet/transactions?page=1&limit=20 [JWT]
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	txns, err := h.ledgerSvc.GetTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch transactions")
		return
	}
	respondList(c, txns, len(txns), page, limit)
}
