// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
	"github.com/your-org/marketflow-backend/internal/pkg/validation"
)

// emptyCartRedirect is where clients send the shopper when checkout finds
// nothing to buy
const emptyCartRedirect = "/products"

// statusFor maps an error kind to its HTTP status
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindEmptyCart:
		return http.StatusUnprocessableEntity
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope for err
func respondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	status := statusFor(kind)

	body := gin.H{
		"error": apperror.MessageOf(err),
		"code":  apperror.CodeOf(err),
	}
	if kind == apperror.KindEmptyCart {
		body["redirect"] = emptyCartRedirect
	}

	// Attach the full chain for the access log
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// respondBindError reports a request body or query that failed to bind
func respondBindError(c *gin.Context, err error) {
	body := gin.H{
		"error": "Invalid request data",
		"code":  "invalid_request",
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		body["details"] = validation.FormatValidationError(verrs)
	case errors.Is(err, io.EOF):
		body["details"] = "request body is required"
	default:
		body["details"] = err.Error()
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// respondOK writes the success envelope
func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"message": message,
		"data":    data,
	})
}

// parseID reads a positive integer path parameter
func parseID(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + label + " ID",
			"code":  "invalid_id",
		})
		return 0, false
	}
	return id, true
}
