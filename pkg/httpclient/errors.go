package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const maxErrorBody = 1 << 20

// StatusError is a non-2xx response from a downstream API.
type StatusError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Message)
}

// IsClientError reports whether the downstream rejected the request itself.
func (e *StatusError) IsClientError() bool {
	return IsClientError(e.StatusCode)
}

// ParseResponseError consumes and closes resp's body and returns a
// *StatusError. A JSON body carrying "message" or "error.message" supplies
// the message; otherwise the raw body is used.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &StatusError{Service: service, StatusCode: resp.StatusCode, Message: "unreadable body: " + err.Error()}
	}

	var structured struct {
		Message string `json:"message"`
		Error   *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := string(body)
	if json.Unmarshal(body, &structured) == nil {
		switch {
		case structured.Error != nil && structured.Error.Message != "":
			msg = structured.Error.Message
		case structured.Message != "":
			msg = structured.Message
		}
	}

	return &StatusError{Service: service, StatusCode: resp.StatusCode, Message: msg}
}

// IsClientError returns true for 4xx status codes.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
