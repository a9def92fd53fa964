package handler

import (
	"net/http"

	"github.com/Md-FarhadHossain/profit-first-server/internal/service"

	"github.com/gin-gonic/gin"
)

// StockHandler exposes the global stock counter.
type StockHandler struct {
	stock service.StockService
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(stock service.StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

// Current returns the present stock quantity.
func (h *StockHandler) Current(c *gin.Context) {
	quantity, err := h.stock.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quantity": quantity})
}
