package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
	})
}

// RespondAppError maps a domain error to its HTTP status and payload.
// Anything that is not an AppError is reported as an internal error without
// leaking its message.
func RespondAppError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode(), gin.H{
			"status":      false,
			"error":       appErr.Kind,
			"message":     appErr.Message,
			"fieldErrors": appErr.Fields,
		})
		return
	}

	if ErrorLogger != nil {
		ErrorLogger.Printf("internal error: %v", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"status":  false,
		"message": "Internal server error",
	})
}
