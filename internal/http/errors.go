package http

import (
	"context"
	stdhttp "net/http"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"notebase/app/internal/apperr"
)

const jsonContentType = "application/json"

// errorPayload is the wire shape for domain errors: a stable machine code and
// a human-readable message. It doubles as the huma.StatusError returned from
// handlers.
type errorPayload struct {
	Code    string `json:"error"`
	Message string `json:"message"`

	status int
}

func (e *errorPayload) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError so huma renders the payload with the
// right status code.
func (e *errorPayload) GetStatus() int {
	return e.status
}

// domainError converts a service error into the response error. Domain errors
// pass their message to the client; anything else is logged, reported, and
// rendered as an opaque internal failure.
func (s *Server) domainError(ctx context.Context, err error, message string, fields logrus.Fields) error {
	if apperr.IsDomain(err) {
		return &errorPayload{
			Code:    apperr.CodeOf(err),
			Message: err.Error(),
			status:  apperr.StatusOf(err),
		}
	}

	s.recordError(ctx, err, message, fields)
	return &errorPayload{
		Code:    "internal_error",
		Message: "We couldn't process your request right now.",
		status:  stdhttp.StatusInternalServerError,
	}
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
