package structurer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"medreport/internal/domain"
	"medreport/internal/llm"
	"medreport/internal/port"
)

const (
	enhancedTemperature = 0.1
	enhancedMaxTokens   = 2048
	defaultCategory     = "General"
)

// enhancedSchema only fixes the shape. Item fields are read leniently and defaulted
// when null, missing or mistyped.
var enhancedSchema = llm.MustCompileSchema("enhanced_findings.json", map[string]any{
	"type":     "object",
	"required": []any{"structuredFindings"},
	"properties": map[string]any{
		"structuredFindings": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"type": "object"},
		},
	},
})

type rawFinding struct {
	Text         any `json:"text"`
	Significance any `json:"significance"`
	Category     any `json:"category"`
	SourceSpan   any `json:"sourceSpan"`
}

type rawEnhanced struct {
	StructuredFindings []rawFinding `json:"structuredFindings"`
}

// enhanceWithModel asks the generator for a structured breakdown of findings and grounds
// the answer in the findings text.
func (s *Structurer) enhanceWithModel(ctx context.Context, findings, language string) outcome[*domain.EnhancedFindings] {
	if s.generator == nil || s.opts.DisableModelFindings {
		return fellBack[*domain.EnhancedFindings](domain.FallbackUnavailable, domain.ErrNoGenerator)
	}

	ctx, cancel := withTimeout(ctx, s.opts.EnhancedTimeout)
	defer cancel()

	text, err := guard(func() (string, error) {
		return s.generator.GenerateResponse(ctx, BuildEnhancedFindingsPrompt(findings, language), port.GenerationOptions{
			Temperature: enhancedTemperature,
			MaxTokens:   enhancedMaxTokens,
		})
	})
	if err != nil {
		return fellBack[*domain.EnhancedFindings](reasonFor(err), err)
	}

	items, err := parseEnhanced(text, findings)
	if err != nil {
		return fellBack[*domain.EnhancedFindings](domain.FallbackMalformed, err)
	}

	grounded := groundFindings(findings, items)
	if len(grounded) == 0 {
		return fellBack[*domain.EnhancedFindings](domain.FallbackMalformed,
			fmt.Errorf("%w: no finding could be located in the findings text", domain.ErrMalformedOutput))
	}
	return succeeded(&domain.EnhancedFindings{
		Content:            findings,
		StructuredFindings: grounded,
		OriginalText:       findings,
	})
}

// parseEnhanced decodes model output and backfills missing item fields.
func parseEnhanced(text, findings string) ([]domain.StructuredFinding, error) {
	raw, err := llm.ExtractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	if err := llm.Validate(enhancedSchema, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}

	var parsed rawEnhanced
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}

	whole := domain.SourceSpan{Start: 0, End: len(findings)}
	items := make([]domain.StructuredFinding, 0, len(parsed.StructuredFindings))
	for _, rf := range parsed.StructuredFindings {
		f := domain.StructuredFinding{
			Text:         stringField(rf.Text),
			Significance: domain.ParseSignificance(strings.ToLower(strings.TrimSpace(stringField(rf.Significance)))),
			Category:     strings.TrimSpace(stringField(rf.Category)),
			SourceSpan:   whole,
		}
		if f.Category == "" {
			f.Category = defaultCategory
		}
		if span, ok := spanField(rf.SourceSpan); ok {
			f.SourceSpan = span
		}
		items = append(items, f)
	}
	return items, nil
}

// stringField returns v if it is a JSON string and "" otherwise.
func stringField(v any) string {
	s, _ := v.(string)
	return s
}

// spanField reads {"start": int, "end": int}. Anything else, including fractional or
// quoted offsets, is reported as absent.
func spanField(v any) (domain.SourceSpan, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.SourceSpan{}, false
	}
	start, ok := intField(obj["start"])
	if !ok {
		return domain.SourceSpan{}, false
	}
	end, ok := intField(obj["end"])
	if !ok {
		return domain.SourceSpan{}, false
	}
	return domain.SourceSpan{Start: start, End: end}, true
}

func intField(v any) (int, bool) {
	n, ok := v.(float64)
	if !ok || n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}
