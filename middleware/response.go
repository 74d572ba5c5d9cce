package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

func errorBody(message string) gin.H {
	return gin.H{"error": message, "timestamp": time.Now().UTC().Format(time.RFC3339)}
}
