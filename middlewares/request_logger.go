package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"restaurant-service/utils"
)

// RequestLogger logs every request with its latency and response status.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		utils.InfoLogger.Printf("[%s] %s %s -> %d (%v)",
			c.ClientIP(),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
