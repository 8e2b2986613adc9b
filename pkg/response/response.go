package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error response field names
const (
	FieldError   = "error"
	FieldMessage = "message"
	FieldCode    = "code"
	FieldDetails = "details"
)

// OK writes a 200 JSON response
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Accepted writes a 202 JSON response
func Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, data)
}

// Error writes an error response in the standard shape
func Error(c *gin.Context, statusCode int, message string, err error) {
	resp := gin.H{
		FieldError:   true,
		FieldMessage: message,
		FieldCode:    statusCode,
	}
	if err != nil {
		resp[FieldDetails] = err.Error()
	}
	c.JSON(statusCode, resp)
}
