package icd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"medreport/internal/domain"
	"medreport/internal/llm"
	"medreport/internal/port"
)

const (
	predictTemperature = 0.1
	predictMaxTokens   = 1024
	fallbackConfidence = 0.6
	// DefaultMinConfidence drops model suggestions below this confidence.
	DefaultMinConfidence = 0.3
)

var codesSchema = llm.MustCompileSchema("diagnostic_codes.json", map[string]any{
	"type":     "object",
	"required": []any{"codes"},
	"properties": map[string]any{
		"summary": map[string]any{"type": "string"},
		"codes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"code"},
				"properties": map[string]any{
					"code":        map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"confidence":  map[string]any{"type": "number"},
					"priority":    map[string]any{"type": "integer"},
					"category":    map[string]any{"type": "string"},
					"reasoning":   map[string]any{"type": "string"},
				},
			},
		},
	},
})

type rawCodes struct {
	Codes []struct {
		Code        string   `json:"code"`
		Description string   `json:"description"`
		Confidence  *float64 `json:"confidence"`
		Priority    *int     `json:"priority"`
		Category    string   `json:"category"`
		Reasoning   string   `json:"reasoning"`
	} `json:"codes"`
	Summary string `json:"summary"`
}

// Service suggests ICD-10 codes. It implements port.DiagnosticCoder.
type Service struct {
	generator     port.ReportGenerator
	catalog       *Catalog
	minConfidence float64
	logger        zerolog.Logger
}

// NewService creates a diagnostic code service. generator may be nil, in which case
// PredictCodes always fails and callers use GetFallbackCodes. A nil catalog uses the
// built-in catalog.
func NewService(generator port.ReportGenerator, catalog *Catalog, minConfidence float64, logger zerolog.Logger) *Service {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Service{
		generator:     generator,
		catalog:       catalog,
		minConfidence: minConfidence,
		logger:        logger.With().Str("component", "icd").Logger(),
	}
}

// PredictCodes asks the generator for code suggestions and keeps only well-formed codes at
// or above the minimum confidence, ordered by priority then confidence.
func (s *Service) PredictCodes(ctx context.Context, req port.CodeRequest) (*domain.DiagnosticCodes, error) {
	if s.generator == nil {
		return nil, domain.ErrNoGenerator
	}

	text, err := s.generator.GenerateResponse(ctx, BuildCodingPrompt(req), port.GenerationOptions{
		Temperature: predictTemperature,
		MaxTokens:   predictMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("predict codes: %w", err)
	}

	raw, err := llm.ExtractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	if err := llm.Validate(codesSchema, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	var parsed rawCodes
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}

	codes := make([]domain.DiagnosticCode, 0, len(parsed.Codes))
	seen := make(map[string]bool)
	for i, rc := range parsed.Codes {
		code := strings.ToUpper(strings.TrimSpace(rc.Code))
		if !ValidCode(code) || seen[code] {
			s.logger.Debug().Str("code", rc.Code).Msg("dropping malformed or duplicate code")
			continue
		}
		confidence := 0.5
		if rc.Confidence != nil {
			confidence = clamp01(*rc.Confidence)
		}
		if confidence < s.minConfidence {
			continue
		}
		priority := i + 1
		if rc.Priority != nil && *rc.Priority > 0 {
			priority = *rc.Priority
		}
		dc := domain.DiagnosticCode{
			Code:        code,
			Description: strings.TrimSpace(rc.Description),
			Confidence:  confidence,
			Priority:    priority,
			Category:    strings.TrimSpace(rc.Category),
			Reasoning:   strings.TrimSpace(rc.Reasoning),
		}
		if entry, ok := s.catalog.Lookup(code); ok {
			if dc.Description == "" {
				dc.Description = entry.description(req.Language)
			}
			if dc.Category == "" {
				dc.Category = entry.Category
			}
		}
		seen[code] = true
		codes = append(codes, dc)
	}
	if len(codes) == 0 {
		return nil, domain.ErrNoCodesSuggested
	}

	sort.SliceStable(codes, func(i, j int) bool {
		if codes[i].Priority != codes[j].Priority {
			return codes[i].Priority < codes[j].Priority
		}
		return codes[i].Confidence > codes[j].Confidence
	})

	return &domain.DiagnosticCodes{
		Codes:   codes,
		Summary: strings.TrimSpace(parsed.Summary),
		Source:  domain.CodeSourceModel,
	}, nil
}

// GetFallbackCodes derives codes from catalog keywords found in the findings and
// impression. It never returns an error; no match yields an empty code list.
func (s *Service) GetFallbackCodes(_ context.Context, req port.CodeRequest) (*domain.DiagnosticCodes, error) {
	text := strings.TrimSpace(req.Findings + "\n" + req.Impression)
	matches := s.catalog.Match(text, req.ReportType)

	codes := make([]domain.DiagnosticCode, 0, len(matches))
	for i, m := range matches {
		codes = append(codes, domain.DiagnosticCode{
			Code:        m.Entry.Code,
			Description: m.Entry.description(req.Language),
			Confidence:  fallbackConfidence,
			Priority:    i + 1,
			Category:    m.Entry.Category,
			Reasoning:   fmt.Sprintf("keyword %q", m.Keyword),
		})
	}
	return &domain.DiagnosticCodes{
		Codes:   codes,
		Summary: fallbackSummary(len(codes), req.Language),
		Source:  domain.CodeSourceFallback,
	}, nil
}

func fallbackSummary(n int, language string) string {
	if domain.NormalizeLanguage(language) == domain.LanguageEnglish {
		if n == 0 {
			return "No codes could be derived from keywords."
		}
		return fmt.Sprintf("%d code(s) derived from keywords.", n)
	}
	if n == 0 {
		return "Keine Codes aus Schlüsselwörtern ableitbar."
	}
	return fmt.Sprintf("%d Code(s) aus Schlüsselwörtern abgeleitet.", n)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
