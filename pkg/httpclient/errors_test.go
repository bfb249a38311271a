package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestParseResponseError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		client  bool
	}{
		{"top level message", http.StatusBadRequest, `{"message":"unsupported file"}`, "unsupported file", true},
		{"nested error", http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"no such object"}}`, "no such object", true},
		{"plain body", http.StatusBadGateway, "upstream down", "upstream down", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(response(tt.status, tt.body), "object-store")

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.message, statusErr.Message)
			assert.Equal(t, tt.client, statusErr.IsClientError())
			assert.Contains(t, err.Error(), "object-store")
		})
	}
}
