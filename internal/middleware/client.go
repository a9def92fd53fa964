package middleware

import (
	"github.com/gin-gonic/gin"
)

const clientContextKey = "client"

// ClientInfo carries the request's client identifiers, used by the fraud
// gate and the abandoned-cart store.
type ClientInfo struct {
	DeviceID string
	IP       string
}

// ClientMetadata captures the device id header and the caller IP into the
// request context.
func ClientMetadata() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientContextKey, &ClientInfo{
			DeviceID: c.GetHeader("X-Device-ID"),
			IP:       c.ClientIP(),
		})
		c.Next()
	}
}

// GetClientFromContext retrieves the client metadata set by ClientMetadata.
func GetClientFromContext(c *gin.Context) (*ClientInfo, bool) {
	client, exists := c.Get(clientContextKey)
	if !exists {
		return nil, false
	}

	info, ok := client.(*ClientInfo)
	return info, ok
}
