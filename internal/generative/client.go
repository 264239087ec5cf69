package generative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"medreport/internal/domain"
	"medreport/internal/llm"
	"medreport/internal/port"
)

const (
	reportTemperature = 0.1
	reportMaxTokens   = 4096
)

// reportSchema requires an object naming findings or impression. Field values are not
// typed here; null or non-string values are read as empty.
var reportSchema = llm.MustCompileSchema("report.json", map[string]any{
	"type": "object",
	"anyOf": []any{
		map[string]any{"required": []any{"findings"}},
		map[string]any{"required": []any{"impression"}},
	},
})

// Client implements port.ReportGenerator on top of a text completion provider.
type Client struct {
	completer port.Completer
	logger    zerolog.Logger
}

// NewClient creates a report generator backed by completer.
func NewClient(completer port.Completer, logger zerolog.Logger) *Client {
	return &Client{
		completer: completer,
		logger:    logger.With().Str("component", "generative.client").Logger(),
	}
}

type generatedFields struct {
	Findings         any `json:"findings"`
	Impression       any `json:"impression"`
	Recommendations  any `json:"recommendations"`
	TechnicalDetails any `json:"technicalDetails"`
}

func textField(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// GenerateReport asks the provider for the four canonical fields of text.
func (c *Client) GenerateReport(ctx context.Context, input port.GenerateReportInput) (*port.GeneratedReport, error) {
	out, err := c.completer.Complete(ctx, port.CompletionRequest{
		Prompt:      BuildReportPrompt(input.Text, input.Language, input.Hint),
		Temperature: reportTemperature,
		MaxTokens:   reportMaxTokens,
		JSONOutput:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("generating report: %w", err)
	}

	raw, err := llm.ExtractJSONObject(out.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", domain.ErrMalformedOutput, err, Truncate(out.Text, 300))
	}
	if err := llm.Validate(reportSchema, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}

	var fields generatedFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	report := &port.GeneratedReport{
		Findings:         textField(fields.Findings),
		Impression:       textField(fields.Impression),
		Recommendations:  textField(fields.Recommendations),
		TechnicalDetails: textField(fields.TechnicalDetails),
		Provider:         providerName(out),
	}
	if report.Findings == "" && report.Impression == "" {
		return nil, fmt.Errorf("%w: neither findings nor impression returned", domain.ErrMalformedOutput)
	}

	c.logger.Debug().Str("provider", report.Provider).Msg("report generated")
	return report, nil
}

// GenerateResponse returns the provider's raw text for prompt.
func (c *Client) GenerateResponse(ctx context.Context, prompt string, opts port.GenerationOptions) (string, error) {
	out, err := c.completer.Complete(ctx, port.CompletionRequest{
		Prompt:      prompt,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generating response: %w", err)
	}
	return out.Text, nil
}

func providerName(out *port.Completion) string {
	switch {
	case out.Provider == "":
		return out.Model
	case out.Model == "":
		return out.Provider
	default:
		return out.Provider + ":" + out.Model
	}
}
