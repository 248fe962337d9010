package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dayumstir/bnpl-ledger/internal/dto"
	"github.com/dayumstir/bnpl-ledger/internal/service"
)

type MerchantHandler struct {
	feeSvc *service.FeeService
}

func NewMerchantHandler(feeSvc *service.FeeService) *MerchantHandler {
	return &MerchantHandler{feeSvc: feeSvc}
}

func (h *MerchantHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed: " + err.Error()})
		return
	}

	withdrawal, err := h.feeSvc.Withdraw(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.WithdrawalResponse{
		Withdrawal: withdrawal,
		NetAmount:  withdrawal.Amount.Sub(withdrawal.WithdrawalFee).Sub(withdrawal.TransactionFee),
	})
}

func (h *MerchantHandler) FeeQuote(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a decimal number"})
		return
	}

	quote, err := h.feeSvc.ComputeFees(c.Request.Context(), c.Param("id"), amount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

func (h *MerchantHandler) UpdateSnapshot(c *gin.Context) {
	var req dto.MerchantSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed: " + err.Error()})
		return
	}

	if err := h.feeSvc.UpdateMerchantSnapshot(c.Request.Context(), c.Param("id"), req.WalletBalance, req.MonthlyRevenue); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
