package handler

import (
	"net/http"

	"github.com/Md-FarhadHossain/profit-first-server/internal/model"
	"github.com/Md-FarhadHossain/profit-first-server/internal/service"

	"github.com/gin-gonic/gin"
)

// CartHandler is the HTTP surface of the abandoned-cart store.
type CartHandler struct {
	carts service.CartService
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// SavePartial upserts the checkout draft for a device.
func (h *CartHandler) SavePartial(c *gin.Context) {
	var req model.PartialOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	draft, err := h.carts.SavePartial(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "draft": draft})
}

// ListPartials returns all drafts, most recently touched first.
func (h *CartHandler) ListPartials(c *gin.Context) {
	drafts, err := h.carts.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, drafts)
}

// DeletePartial removes a draft.
func (h *CartHandler) DeletePartial(c *gin.Context) {
	if err := h.carts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Draft deleted"})
}
