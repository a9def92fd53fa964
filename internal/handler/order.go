package handler

import (
	"net/http"

	"github.com/Md-FarhadHossain/profit-first-server/internal/middleware"
	"github.com/Md-FarhadHossain/profit-first-server/internal/model"
	"github.com/Md-FarhadHossain/profit-first-server/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderHandler is the HTTP surface of the order ledger.
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder places a customer order.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req model.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	clientIP := c.ClientIP()
	if client, ok := middleware.GetClientFromContext(c); ok {
		clientIP = client.IP
		if req.DeviceID == "" {
			req.DeviceID = client.DeviceID
		}
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), &req, clientIP)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed",
		"orderId": order.OrderID,
		"order":   order,
	})
}

// CreateManualOrder records an operator-entered order.
func (h *OrderHandler) CreateManualOrder(c *gin.Context) {
	var req model.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orders.PlaceManualOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Manual order placed",
		"orderId": order.OrderID,
		"order":   order,
	})
}

// ListOrders returns the whole ledger, newest first.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// UpdateStatus applies a lifecycle transition.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req model.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	status, err := model.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   kindValidation,
			"message": err.Error(),
		})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// UpdateCallStatus records the confirmation call outcome.
func (h *OrderHandler) UpdateCallStatus(c *gin.Context) {
	var req model.CallStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orders.UpdateCallStatus(c.Request.Context(), c.Param("id"), req.PhoneCallStatus)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// UpdateShippingMethod changes the shipping method and cost.
func (h *OrderHandler) UpdateShippingMethod(c *gin.Context) {
	var req model.ShippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orders.UpdateShippingMethod(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// UpdatePrice changes the pricing fields.
func (h *OrderHandler) UpdatePrice(c *gin.Context) {
	var req model.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orders.UpdatePrice(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// UpdateNote replaces the operator note.
func (h *OrderHandler) UpdateNote(c *gin.Context) {
	var req model.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orders.UpdateNote(c.Request.Context(), c.Param("id"), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// RestockReturn puts a returned order's units back into stock.
func (h *OrderHandler) RestockReturn(c *gin.Context) {
	order, err := h.orders.RestockReturn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Stock restored",
		"order":   order,
	})
}

// MoveToAbandoned demotes an order into the abandoned-cart store.
func (h *OrderHandler) MoveToAbandoned(c *gin.Context) {
	draft, err := h.orders.MoveToAbandoned(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order moved to abandoned",
		"draft":   draft,
	})
}

// AnalyzeLocation re-runs the address classifier for an order.
func (h *OrderHandler) AnalyzeLocation(c *gin.Context) {
	order, err := h.orders.AnalyzeLocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"district": order.District,
		"thana":    order.Thana,
	})
}
