package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dayumstir/bnpl-ledger/internal/dto"
	"github.com/dayumstir/bnpl-ledger/internal/model"
	"github.com/dayumstir/bnpl-ledger/internal/service"
)

type FeeRateHandler struct {
	feeSvc *service.FeeService
}

func NewFeeRateHandler(feeSvc *service.FeeService) *FeeRateHandler {
	return &FeeRateHandler{feeSvc: feeSvc}
}

func (h *FeeRateHandler) Create(c *gin.Context) {
	var req dto.CreateFeeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed: " + err.Error()})
		return
	}

	tier, err := h.feeSvc.CreateTier(c.Request.Context(), &model.WithdrawalFeeRate{
		Name:                     req.Name,
		MerchantSizeID:           req.MerchantSizeID,
		WalletBalanceMin:         req.WalletBalanceMin,
		WalletBalanceMax:         req.WalletBalanceMax,
		MonthlyRevenueMin:        req.MonthlyRevenueMin,
		MonthlyRevenueMax:        req.MonthlyRevenueMax,
		PercentageWithdrawalFee:  req.WithdrawalFeePercent,
		PercentageTransactionFee: req.TransactionFeePercent,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, tier)
}

func (h *FeeRateHandler) Reload(c *gin.Context) {
	if err := h.feeSvc.Reload(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}
