package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the standard envelope for every admin/read API response.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// SendSuccess sends a success response with data (200 OK).
func SendSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SendCreated sends a created response with data (201 Created).
func SendCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SendError sends an error response with a specific status code.
func SendError(c *gin.Context, code int, message string, err error) {
	var errDetails interface{}
	if err != nil {
		errDetails = err.Error()
		c.Error(err)
	}

	c.AbortWithStatusJSON(code, Response{
		Success: false,
		Message: message,
		Error:   errDetails,
	})
}

// SendValidationError sends a 400 Bad Request error.
func SendValidationError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, "validation failed", err)
}

// SendInternalError sends a 500 Internal Server Error.
func SendInternalError(c *gin.Context, err error) {
	SendError(c, http.StatusInternalServerError, "internal server error", err)
}
