package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dayumstir/bnpl-ledger/internal/dto"
	"github.com/dayumstir/bnpl-ledger/internal/model"
	"github.com/dayumstir/bnpl-ledger/internal/service"
)

type VoucherHandler struct {
	svc *service.VoucherService
}

func NewVoucherHandler(svc *service.VoucherService) *VoucherHandler {
	return &VoucherHandler{svc: svc}
}

func (h *VoucherHandler) Create(c *gin.Context) {
	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed: " + err.Error()})
		return
	}

	voucher, err := h.svc.Create(c.Request.Context(), &model.Voucher{
		Title:              req.Title,
		Description:        req.Description,
		PercentageDiscount: req.PercentageDiscount,
		AmountDiscount:     req.AmountDiscount,
		ExpiryDate:         req.ExpiryDate,
		UsageLimit:         req.UsageLimit,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, voucher)
}

func (h *VoucherHandler) Assign(c *gin.Context) {
	var req dto.AssignVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed: " + err.Error()})
		return
	}

	assignment, err := h.svc.Assign(c.Request.Context(), c.Param("id"), req.CustomerID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

func (h *VoucherHandler) Deactivate(c *gin.Context) {
	if err := h.svc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
