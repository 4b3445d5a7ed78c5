package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/api"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/apierr"
)

// RespondError writes the caller-safe part of err. Unknown errors become a
// generic upstream failure.
func RespondError(c *gin.Context, err error) {
	e := apierr.As(err)
	if e == nil {
		e = apierr.UpstreamFailure("", nil)
	}
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, ErrorBody(e))
}

func ErrorBody(e *apierr.Error) api.ErrorResponse {
	return api.ErrorResponse{Error: e.Message, Code: e.Code, Details: e.Details}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
