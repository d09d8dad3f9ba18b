package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends the dashboard envelope {status, message, data}
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONFailure sends a structured error response. message is what the user
// sees and kind tells the client how to present it.
func JSONFailure(c *gin.Context, status int, kind string, err error, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"kind":    kind,
		"error":   err.Error(),
	})
}
