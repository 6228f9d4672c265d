package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjzar/advshortcut/internal/store"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// checkStoreStateMiddleware answers 503 until the collections are loaded.
func (s *Service) checkStoreStateMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch s.store.Status() {
		case store.StatusLoading:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "data is loading, please wait"})
			c.Abort()
			return
		case store.StatusError:
			msg := "data failed to load"
			if err := s.store.Err(); err != nil {
				msg += ": " + err.Error()
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": msg})
			c.Abort()
			return
		}

		c.Next()
	}
}
