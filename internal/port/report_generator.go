package port

import "context"

// GenerateReportInput carries the dictated text handed to a generative report service.
type GenerateReportInput struct {
	Text     string
	Language string
	Hint     string // report domain, e.g. "ct" or "spine_mri"
}

// GeneratedReport holds the four canonical fields produced by a generative service.
type GeneratedReport struct {
	Findings         string
	Impression       string
	Recommendations  string
	TechnicalDetails string
	Provider         string
}

// GenerationOptions tune a free-form generation call.
type GenerationOptions struct {
	Temperature float64
	MaxTokens   int
}

// ReportGenerator abstracts an LLM-backed report service. Both calls may fail or time out;
// GenerateResponse returns raw model text that is not guaranteed to be valid JSON.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, input GenerateReportInput) (*GeneratedReport, error)
	GenerateResponse(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
}
