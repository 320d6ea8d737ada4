package response

import "github.com/gin-gonic/gin"

// The wire contract is flat: success payloads are returned as-is and
// failures carry a single "error" message.

func OK(c *gin.Context, payload interface{}) {
	c.JSON(200, payload)
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}
