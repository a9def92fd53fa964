package handler

import (
	"net/http"

	"github.com/Md-FarhadHossain/profit-first-server/internal/middleware"
	"github.com/Md-FarhadHossain/profit-first-server/internal/model"
	"github.com/Md-FarhadHossain/profit-first-server/internal/service"

	"github.com/gin-gonic/gin"
)

// BlocklistHandler is the HTTP surface of the fraud blocklist.
type BlocklistHandler struct {
	blocklist service.BlocklistService
}

// NewBlocklistHandler creates a new blocklist handler.
func NewBlocklistHandler(blocklist service.BlocklistService) *BlocklistHandler {
	return &BlocklistHandler{blocklist: blocklist}
}

// Block adds an identifier to the blocklist.
func (h *BlocklistHandler) Block(c *gin.Context) {
	var req model.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.blocklist.Block(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "entry": entry})
}

// List returns all blocklist entries, newest first.
func (h *BlocklistHandler) List(c *gin.Context) {
	entries, err := h.blocklist.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Unblock removes an identifier.
func (h *BlocklistHandler) Unblock(c *gin.Context) {
	if err := h.blocklist.Unblock(c.Request.Context(), c.Param("identifier")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Identifier unblocked"})
}

// CheckBanStatus is the storefront's pre-flight check. Identifiers come from
// query parameters, falling back to the request's own client metadata.
func (h *BlocklistHandler) CheckBanStatus(c *gin.Context) {
	identifiers := []string{
		c.Query("ip"),
		c.Query("deviceId"),
		c.Query("phone"),
	}
	if identifiers[0] == "" && identifiers[1] == "" && identifiers[2] == "" {
		if client, ok := middleware.GetClientFromContext(c); ok {
			identifiers = []string{client.DeviceID, client.IP}
		}
	}

	banned, err := h.blocklist.AnyBlocked(c.Request.Context(), identifiers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "banned": banned})
}
