package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/saikat7890/Lost-and-Found-System/pkg/errors"
	"github.com/saikat7890/Lost-and-Found-System/pkg/logger"
	"github.com/saikat7890/Lost-and-Found-System/pkg/pagination"
)

// Envelope is the JSON response shape shared by every item endpoint.
type Envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Item       any              `json:"item,omitempty"`
	Items      any              `json:"items,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a success envelope.
func WriteSuccess(w http.ResponseWriter, status int, env Envelope) {
	env.Success = true
	WriteJSON(w, status, env)
}

// WriteMessage writes a failure envelope carrying only a message. It is used
// by transport-level rejections that never reach the service.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message})
}

// WriteError maps err to a status through its kind and writes a failure
// envelope. 500-class responses carry a generic message; the cause is logged
// with the request-scoped logger when the RequestLogger middleware is mounted.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	status := apperrors.HTTPStatus(err)
	message := "an internal error occurred"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		message = appErr.Message
	} else if status < http.StatusInternalServerError {
		message = http.StatusText(status)
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("kind", apperrors.KindOf(err).String()),
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteMessage(w, status, message)
}
