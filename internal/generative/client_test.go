package generative_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medreport/internal/domain"
	"medreport/internal/generative"
	"medreport/internal/port"
	"medreport/mocks"
)

func TestClient_GenerateReport_Success(t *testing.T) {
	completer := new(mocks.MockCompleter)
	completer.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return req.JSONOutput && req.MaxTokens > 0
	})).Return(&port.Completion{
		Text:     "```json\n{\"findings\":\" Kleine Zyste. \",\"impression\":\"Benigne.\",\"technicalDetails\":\"Nativ.\"}\n```",
		Model:    "claude-sonnet-4-20250514",
		Provider: "claude",
	}, nil)

	client := generative.NewClient(completer, zerolog.Nop())

	out, err := client.GenerateReport(context.Background(), port.GenerateReportInput{
		Text: "Befund: Kleine Zyste.", Language: "de", Hint: "ultrasound",
	})

	require.NoError(t, err)
	assert.Equal(t, "Kleine Zyste.", out.Findings)
	assert.Equal(t, "Benigne.", out.Impression)
	assert.Equal(t, "", out.Recommendations)
	assert.Equal(t, "Nativ.", out.TechnicalDetails)
	assert.Equal(t, "claude:claude-sonnet-4-20250514", out.Provider)
}

func TestClient_GenerateReport_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "Ich kann das nicht strukturieren."},
		{"wrong types", `{"findings": 3}`},
		{"empty fields", `{"findings": "", "impression": "  "}`},
		{"missing fields", `{"recommendations": "Kontrolle"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := new(mocks.MockCompleter)
			completer.On("Complete", mock.Anything, mock.Anything).Return(&port.Completion{Text: tt.text, Provider: "openai"}, nil)

			client := generative.NewClient(completer, zerolog.Nop())

			out, err := client.GenerateReport(context.Background(), port.GenerateReportInput{Text: "x"})

			assert.Nil(t, out)
			assert.ErrorIs(t, err, domain.ErrMalformedOutput)
		})
	}
}

func TestClient_GenerateReport_NullOptionalFieldsDefaultToEmpty(t *testing.T) {
	completer := new(mocks.MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return(&port.Completion{
		Text:     `{"findings": "Mittelgradige Stenose L4/5.", "impression": null, "recommendations": 2, "technicalDetails": null}`,
		Provider: "openai",
	}, nil)

	client := generative.NewClient(completer, zerolog.Nop())

	out, err := client.GenerateReport(context.Background(), port.GenerateReportInput{Text: "x"})

	require.NoError(t, err)
	assert.Equal(t, "Mittelgradige Stenose L4/5.", out.Findings)
	assert.Empty(t, out.Impression)
	assert.Empty(t, out.Recommendations)
	assert.Empty(t, out.TechnicalDetails)
}

func TestClient_GenerateReport_ProviderError(t *testing.T) {
	completer := new(mocks.MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("unavailable"))

	client := generative.NewClient(completer, zerolog.Nop())

	_, err := client.GenerateReport(context.Background(), port.GenerateReportInput{Text: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestClient_GenerateResponse(t *testing.T) {
	completer := new(mocks.MockCompleter)
	completer.On("Complete", mock.Anything, port.CompletionRequest{Prompt: "p", Temperature: 0.2, MaxTokens: 50}).
		Return(&port.Completion{Text: "raw text"}, nil)

	client := generative.NewClient(completer, zerolog.Nop())

	out, err := client.GenerateResponse(context.Background(), "p", port.GenerationOptions{Temperature: 0.2, MaxTokens: 50})

	require.NoError(t, err)
	assert.Equal(t, "raw text", out)
}

func TestBuildReportPrompt(t *testing.T) {
	p := generative.BuildReportPrompt("Befund: Zyste.", "en-US", "")

	assert.Contains(t, p, "English")
	assert.Contains(t, p, `"general"`)
	assert.Contains(t, p, "Befund: Zyste.")
	assert.Contains(t, generative.BuildReportPrompt("x", "de", "ct"), "German")
}
