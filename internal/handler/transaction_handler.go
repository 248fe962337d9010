package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dayumstir/bnpl-ledger/internal/dto"
	"github.com/dayumstir/bnpl-ledger/internal/service"
)

type TransactionHandler struct {
	svc *service.TransactionService
}

func NewTransactionHandler(svc *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

func (h *TransactionHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed: " + err.Error()})
		return
	}

	txn, payments, err := h.svc.Create(c.Request.Context(), &service.CreateTransactionInput{
		Amount:            req.Amount,
		CustomerID:        req.CustomerID,
		MerchantID:        req.MerchantID,
		MerchantPaymentID: req.MerchantPaymentID,
		InstalmentCount:   req.InstalmentCount,
		Frequency:         req.Frequency,
		CashbackPercent:   req.CashbackPercent,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.TransactionCreatedResponse{
		Transaction: txn,
		Payments:    payments,
	})
}

func (h *TransactionHandler) Get(c *gin.Context) {
	detail, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *TransactionHandler) Refund(c *gin.Context) {
	txn, err := h.svc.Refund(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, txn)
}
