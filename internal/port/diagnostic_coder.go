package port

import (
	"context"

	"medreport/internal/domain"
)

// CodeRequest carries the report fields a diagnostic-code service works from.
type CodeRequest struct {
	Findings   string
	Impression string
	ReportType domain.ReportType
	Language   string
}

// DiagnosticCoder suggests diagnostic codes for a report.
// GetFallbackCodes is the service's own deterministic fallback and is expected not to fail.
type DiagnosticCoder interface {
	PredictCodes(ctx context.Context, req CodeRequest) (*domain.DiagnosticCodes, error)
	GetFallbackCodes(ctx context.Context, req CodeRequest) (*domain.DiagnosticCodes, error)
}
