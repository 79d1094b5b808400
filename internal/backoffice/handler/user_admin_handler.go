package handler

import (
	"errors"
	"net/http"

	"github.com/cryptobets/sportsbook/internal/config"
	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/cryptobets/sportsbook/internal/repository"
	"github.com/cryptobets/sportsbook/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserAdminHandler serves /admin/users endpoints. Reads go straight to the
// repositories; every mutation goes through SettlementService so the
// operator's admin grant is re-checked against user_roles on each call.
type UserAdminHandler struct {
	userRepo      *repository.UserRepository
	profileRepo   *repository.ProfileRepository
	settlementSvc *service.SettlementService
	cfg           *config.Config
}

// NewUserAdminHandler creates a UserAdminHandler.
func NewUserAdminHandler(
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	settlementSvc *service.SettlementService,
	cfg *config.Config,
) *UserAdminHandler {
	return &UserAdminHandler{
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		settlementSvc: settlementSvc,
		cfg:           cfg,
	}
}

// List godoc
// GET /admin/users?page=1&limit=50&search=alice@
func (h *UserAdminHandler) List(c *gin.Context) {
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	users, total, err := h.userRepo.List(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	out := make([]domain.PublicProfile, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToPublicProfile())
	}
	respondList(c, out, total, page, limit)
}

// Detail godoc
// GET /admin/users/:id
func (h *UserAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}

	ctx := c.Request.Context()
	user, err := h.userRepo.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrUserNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	profile, _ := h.profileRepo.GetByUserID(ctx, id)
	txns, _ := h.profileRepo.GetTransactions(ctx, id, 50, 0)

	respondSuccess(c, http.StatusOK, gin.H{
		"user":         user.ToPublicProfile(),
		"profile":      profile,
		"transactions": txns,
	})
}

// Suspend godoc
// POST /admin/users/:id/suspend
func (h *UserAdminHandler) Suspend(c *gin.Context) {
	h.setActive(c, false)
}

// Activate godoc
// POST /admin/users/:id/activate
func (h *UserAdminHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *UserAdminHandler) setActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	err = h.settlementSvc.SetUserActive(c.Request.Context(), adminUserID(c), id, active)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", err.Error())
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrUserNotFound.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "is_active": active})
}

// AdjustBalance godoc
// POST /admin/users/:id/balance
// Body: {"currency":"usd","amount":"500.00","type":"deposit","note":"wire ref 4417"}
func (h *UserAdminHandler) AdjustBalance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	var body struct {
		Currency string `json:"currency" binding:"required"`
		Amount   string `json:"amount"   binding:"required"`
		Type     string `json:"type"     binding:"required"`
		Note     string `json:"note"`
	}
	if err = c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	currency := domain.Currency(body.Currency)
	if !currency.IsValid() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_CURRENCY", "currency must be usd or btc")
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || amount.IsZero() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a non-zero decimal string")
		return
	}

	// A withdrawal is recorded as a negative movement regardless of the sign
	// the operator typed.
	var txType domain.TxType
	switch body.Type {
	case string(domain.TxDeposit):
		txType = domain.TxDeposit
		amount = amount.Abs()
	case string(domain.TxWithdrawal):
		txType = domain.TxWithdrawal
		amount = amount.Abs().Neg()
	case string(domain.TxAdjustment):
		txType = domain.TxAdjustment
	default:
		respondError(c, http.StatusBadRequest, "ERR_INVALID_TYPE", "type must be deposit, withdrawal or adjustment")
		return
	}

	err = h.settlementSvc.AdjustBalance(
		c.Request.Context(), adminUserID(c), id,
		domain.NewMoney(currency, amount), txType, body.Note,
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", err.Error())
		case errors.Is(err, domain.ErrNegativeResultingBalance):
			respondError(c, http.StatusConflict, "ERR_NEGATIVE_BALANCE", err.Error())
		case domain.IsValidation(err):
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrProfileNotFound.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"user_id":  id,
		"currency": currency,
		"amount":   amount,
		"type":     txType,
	})
}

// SetRole godoc
// POST /admin/users/:id/role
// Body: {"role": "admin"}
func (h *UserAdminHandler) SetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	var body struct {
		Role string `json:"role" binding:"required"`
	}
	if err = c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	role := domain.UserRole(body.Role)
	if role != domain.RoleUser && role != domain.RoleAdmin {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ROLE", "unknown role")
		return
	}

	err = h.settlementSvc.SetUserRole(c.Request.Context(), adminUserID(c), id, role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", err.Error())
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrUserNotFound.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "role": role})
}
