package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/civicpulse/civicpulse/engagement"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// LedgerError maps a ledger error class onto the HTTP surface: not-found is
// 404, denial 403, invalid state 409, anything else a generic persistence
// failure. code is the application error code reported to clients.
func LedgerError(ctx *gin.Context, code int, err error) {
	switch {
	case errors.Is(err, engagement.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound):
		Error(ctx, http.StatusNotFound, code, "not found")
	case engagement.IsDenied(err):
		Error(ctx, http.StatusForbidden, code, err.Error())
	case engagement.IsInvalidState(err):
		Error(ctx, http.StatusConflict, code, err.Error())
	default:
		Error(ctx, http.StatusInternalServerError, code, "operation failed")
	}
}
