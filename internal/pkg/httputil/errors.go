package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/opswatch/opswatch/internal/pkg/ctxlog"
)

// ErrorMapping pairs a sentinel error with the HTTP status and optional
// message override it should produce.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // if empty, uses err.Error()
}

// HandleError resolves err against mappings and writes the mapped
// response. Errors with no mapping are logged and reported as a
// plain 500.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if !errors.Is(err, m.Error) {
			continue
		}
		msg := m.Message
		if msg == "" {
			msg = err.Error()
		}
		Error(w, m.Status, msg)
		return
	}
	ctxlog.FromContext(ctx).Error("unmapped error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
