package auth

import (
	"context"

	"carddemo/internal/platform/middleware"
)

// logAudit records a security-relevant event in the audit log stream.
func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	requestID := middleware.GetRequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

// authFailure logs a failed sign-on or token operation and counts it.
func (s *Service) authFailure(ctx context.Context, reason string, attributes ...any) {
	requestID := middleware.GetRequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", "auth_failed", "reason", reason, "log_type", "standard")
	s.logger.WarnContext(ctx, "auth_failed", args...)
	if s.metrics != nil {
		s.metrics.IncrementAuthFailures()
	}
}
