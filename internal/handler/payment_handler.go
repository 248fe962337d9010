package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dayumstir/bnpl-ledger/internal/dto"
	"github.com/dayumstir/bnpl-ledger/internal/service"
)

type PaymentHandler struct {
	svc *service.PlanService
}

func NewPaymentHandler(svc *service.PlanService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) Pay(c *gin.Context) {
	var req dto.PayInstalmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed: " + err.Error()})
		return
	}

	payment, err := h.svc.ApplyPayment(c.Request.Context(), c.Param("id"), req.Amount, req.VoucherAssignedID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.svc.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, payment)
}
