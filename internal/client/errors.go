package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/api"
)

// HTTPError is a non-2xx gateway response or a streamed error event.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = "http error"
	}
	if strings.TrimSpace(e.Code) != "" {
		return fmt.Sprintf("http error: status=%d code=%s message=%s", e.StatusCode, strings.TrimSpace(e.Code), msg)
	}
	return fmt.Sprintf("http error: status=%d message=%s", e.StatusCode, msg)
}

func parseHTTPError(status int, raw []byte) error {
	body := strings.TrimSpace(string(raw))

	var env api.ErrorResponse
	if err := json.Unmarshal(raw, &env); err == nil && strings.TrimSpace(env.Error) != "" {
		return &HTTPError{
			StatusCode: status,
			Message:    strings.TrimSpace(env.Error),
			Code:       strings.TrimSpace(env.Code),
			Details:    strings.TrimSpace(env.Details),
			Body:       body,
		}
	}
	return &HTTPError{StatusCode: status, Body: body}
}
