// Package httperr writes the JSON error bodies shared by every endpoint.
// Every error response is {"message": "..."}; internal details never leave the server.
package httperr

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MsgServerError is the only message a caller sees for unexpected failures.
const MsgServerError = "Server error"

// MessageResponse is the body of every error and of plain acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

// Respond writes status with a message body.
func Respond(c *gin.Context, status int, msg string) {
	c.JSON(status, MessageResponse{Message: msg})
}

// Abort writes status with a message body and stops the handler chain.
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, MessageResponse{Message: msg})
}

// Internal logs err with the operation name and answers with a generic 500.
func Internal(c *gin.Context, op string, err error) {
	slog.Error(op+" failed", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
	Respond(c, http.StatusInternalServerError, MsgServerError)
}
