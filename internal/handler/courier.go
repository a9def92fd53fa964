package handler

import (
	"net/http"

	"github.com/Md-FarhadHossain/profit-first-server/internal/service"

	"github.com/gin-gonic/gin"
)

// CourierHandler is the HTTP surface of the courier gateway bridge.
type CourierHandler struct {
	courier service.CourierService
}

// NewCourierHandler creates a new courier handler.
func NewCourierHandler(courier service.CourierService) *CourierHandler {
	return &CourierHandler{courier: courier}
}

// dispatchRequest names the order to hand to the courier.
type dispatchRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// CreateOrder sends an order to the courier gateway.
func (h *CourierHandler) CreateOrder(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.courier.Dispatch(c.Request.Context(), req.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Sent to courier successfully",
		"tracking_code": order.CourierTrackingCode,
		"order":         order,
	})
}

// CheckStatus polls the courier for an order's delivery status.
func (h *CourierHandler) CheckStatus(c *gin.Context) {
	result, err := h.courier.CheckStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"courierStatus": result.CourierStatus,
		"localStatus":   result.LocalStatus,
	})
}

// Webhook receives asynchronous courier pushes. The upstream does not sign
// them, so failures to match a consignment are swallowed with a 200.
func (h *CourierHandler) Webhook(c *gin.Context) {
	var payload service.CourierWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.courier.HandleWebhook(c.Request.Context(), &payload); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Webhook received"})
}
