package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dayumstir/bnpl-ledger/internal/dto"
	"github.com/dayumstir/bnpl-ledger/internal/service"
)

type CustomerHandler struct {
	historySvc  *service.HistoryService
	overviewSvc *service.OverviewService
	ratingSvc   *service.RatingService
	cashbackSvc *service.CashbackService
}

func NewCustomerHandler(historySvc *service.HistoryService, overviewSvc *service.OverviewService, ratingSvc *service.RatingService, cashbackSvc *service.CashbackService) *CustomerHandler {
	return &CustomerHandler{
		historySvc:  historySvc,
		overviewSvc: overviewSvc,
		ratingSvc:   ratingSvc,
		cashbackSvc: cashbackSvc,
	}
}

// Balance replays the payment history into a point-in-time balance.
// An optional as_of query parameter (RFC 3339) pins the replay instant.
func (h *CustomerHandler) Balance(c *gin.Context) {
	customerID := c.Param("id")

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "as_of must be RFC 3339"})
			return
		}
		asOf = parsed
	}

	balance, err := h.historySvc.Balance(c.Request.Context(), customerID, asOf)
	if err != nil {
		c.Error(err)
		return
	}

	entries, err := h.historySvc.List(c.Request.Context(), customerID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		CustomerID: customerID,
		Balance:    balance,
		AsOf:       asOf,
		Entries:    entries,
	})
}

func (h *CustomerHandler) TopUp(c *gin.Context) {
	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed: " + err.Error()})
		return
	}

	entry, err := h.historySvc.TopUp(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *CustomerHandler) Overview(c *gin.Context) {
	overview, err := h.overviewSvc.Overview(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

func (h *CustomerHandler) CashbackWallets(c *gin.Context) {
	wallets, err := h.cashbackSvc.WalletsFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cashback_wallets": wallets})
}

func (h *CustomerHandler) Rating(c *gin.Context) {
	rating, err := h.ratingSvc.Rating(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rating)
}
