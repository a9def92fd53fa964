package handler

import (
	"errors"
	"net/http"

	"github.com/Md-FarhadHossain/profit-first-server/internal/service"

	"github.com/gin-gonic/gin"
)

// Machine-checkable error kinds returned alongside success=false.
const (
	kindNotFound   = "not_found"
	kindConflict   = "conflict"
	kindForbidden  = "forbidden"
	kindValidation = "validation"
	kindUpstream   = "upstream"
	kindServer     = "server_error"
)

// respondError maps service errors onto HTTP status codes and the shared
// error body. Unrecognized errors surface as a generic server error so no
// storage detail leaks to callers.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	kind := kindServer
	message := "Server Error"

	switch {
	case errors.Is(err, service.ErrNotFound):
		status, kind, message = http.StatusNotFound, kindNotFound, err.Error()
	case errors.Is(err, service.ErrActiveOrderExists),
		errors.Is(err, service.ErrAlreadyBlocked),
		errors.Is(err, service.ErrAlreadyConsigned),
		errors.Is(err, service.ErrIllegalTransition),
		errors.Is(err, service.ErrRestockNotAllowed):
		status, kind, message = http.StatusConflict, kindConflict, err.Error()
	case errors.Is(err, service.ErrBlocked):
		status, kind, message = http.StatusForbidden, kindForbidden, err.Error()
	case errors.Is(err, service.ErrInvalidInput):
		status, kind, message = http.StatusBadRequest, kindValidation, err.Error()
	case errors.Is(err, service.ErrCourier):
		status, kind, message = http.StatusBadGateway, kindUpstream, err.Error()
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   kind,
		"message": message,
	})
}

// respondBindError reports a malformed or incomplete request body.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   kindValidation,
		"message": "Invalid request body",
		"details": err.Error(),
	})
}
