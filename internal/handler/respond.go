package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mailrelay/internal/apierr"
)

// Error renders any pipeline error as the structured JSON envelope.
// Unknown errors become a generic internal_error; their detail never
// reaches the client.
func Error(c *gin.Context, err error) {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		_ = c.Error(err)
		ae = apierr.Internal("Something went wrong")
	}

	c.JSON(ae.HTTPStatus(), gin.H{
		"error": gin.H{
			"name":    ae.Kind,
			"message": ae.Message,
		},
	})
}

// AbortError is Error for middleware, stopping the chain.
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// ok is a tiny helper so every success body goes through one spot.
func ok(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
