package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	envelope := Envelope{Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(Status(appErr.Code), Envelope{Error: appErr})
}

// Status maps an error code onto an HTTP status.
func Status(code string) int {
	switch code {
	case appErrors.CodeNotFound:
		return http.StatusNotFound
	case appErrors.CodeValidation:
		return http.StatusBadRequest
	case appErrors.CodeConflict:
		return http.StatusConflict
	case appErrors.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case appErrors.CodeInactiveAccount:
		return http.StatusForbidden
	case appErrors.CodeStorage, appErrors.CodeCacheMiss:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
