package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/listing-cleaner/app/responses"
)

// RequestIDKey key trong gin.Context chứa ID của request
const RequestIDKey = "request_id"

// abortWithError trả lỗi JSON kèm request id
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, responses.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	})
}
