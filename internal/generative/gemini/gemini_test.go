package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medreport/internal/config"
	"medreport/internal/generative"
	"medreport/internal/generative/gemini"
	"medreport/internal/port"
)

func newTestCompleter(serverURL string) *gemini.Completer {
	return gemini.NewCompleterWithEndpoint(&config.GenerativeProviderConfig{
		Provider:    "gemini",
		APIKey:      "gk-test",
		TimeoutSecs: 5,
	}, serverURL)
}

func TestCompleter_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gk-test", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		genConfig := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", genConfig["responseMimeType"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content":      map[string]interface{}{"parts": []map[string]interface{}{{"text": `{"impression":"ok"}`}}},
				"finishReason": "STOP",
			}},
		})
	}))
	defer server.Close()

	out, err := newTestCompleter(server.URL).Complete(context.Background(), port.CompletionRequest{Prompt: "x", JSONOutput: true})

	require.NoError(t, err)
	assert.Equal(t, `{"impression":"ok"}`, out.Text)
	assert.Equal(t, "gemini", out.Provider)
	assert.Equal(t, "gemini-2.0-flash", out.Model)
}

func TestCompleter_Complete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestCompleter_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	var rlErr *generative.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "gemini", rlErr.Provider)
}
