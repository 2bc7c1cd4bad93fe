package response

import (
	"github.com/gin-gonic/gin"
)

// The portal's wire format is intentionally flat: evaluator pages consume
// plain JSON payloads on success and an {"error": "..."} body on failure.
// Error messages reach the user verbatim, so they stay human-readable.

// ErrorBody is the standard failure envelope.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Fail sends an error response for a typed error code.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, ErrorBody{Error: GetMessage(code)})
}

// FailMsg sends an error response with a verbatim message, used when a
// server-side failure reason should be surfaced to the user as-is.
func FailMsg(c *gin.Context, statusCode int, msg string) {
	c.JSON(statusCode, ErrorBody{Error: msg})
}

// FailWithFields sends an error response with field-level validation details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, ErrorBody{Error: GetMessage(code), Fields: fields})
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Error: GetMessage(code)})
}
