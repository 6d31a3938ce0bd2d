package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-backoffice/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		entry := utils.Info().WithField("request_id", c.GetString(requestIDKey))
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		// query strings may carry the session token
		entry.Infof("%s | %3d | %13v | %s", c.Request.Method, status, latency, path)
	}
}
