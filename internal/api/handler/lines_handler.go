package handler

import (
	"net/http"
	"time"

	"github.com/cryptobets/sportsbook/internal/service"
	"github.com/gin-gonic/gin"
)

// LinesHandler serves the public odds board.
type LinesHandler struct {
	oddsSvc *service.OddsFeedService
}

// NewLinesHandler creates a LinesHandler.
func NewLinesHandler(oddsSvc *service.OddsFeedService) *LinesHandler {
	return &LinesHandler{oddsSvc: oddsSvc}
}

// GetLines godoc
// GET /api/lines?sport=basketball_nba&regions=us&markets=h2h,spreads,totals
func (h *LinesHandler) GetLines(c *gin.Context) {
	lines, err := h.oddsSvc.GetLines(
		c.Request.Context(),
		c.Query("sport"),
		c.Query("regions"),
		c.Query("markets"),
	)
	if err != nil {
		respondError(c, http.StatusBadGateway, "ERR_FEED_UNAVAILABLE", "odds feed unavailable")
		return
	}

	now := time.Now().UTC()
	live := 0
	for i := range lines {
		if lines[i].Live(now) {
			live++
		}
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"lines": lines,
		"live":  live,
		"total": len(lines),
	})
}
