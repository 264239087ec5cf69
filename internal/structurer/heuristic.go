package structurer

import (
	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

// HeuristicFindings builds enhanced findings without a generative service: one item per
// pathology sentence of findings, or a single item covering all of findings when no
// sentence qualifies. Every item text is a substring of findings.
func HeuristicFindings(findings, language string) *domain.EnhancedFindings {
	ef := &domain.EnhancedFindings{
		Content:      findings,
		OriginalText: findings,
	}

	for _, s := range spanextract.FindPathologySentences(findings) {
		ef.StructuredFindings = append(ef.StructuredFindings, domain.StructuredFinding{
			Text:         s.Text,
			Significance: ClassifySignificance(s.Text),
			Category:     Categorize(s.Text, language),
			SourceSpan:   domain.SourceSpan{Start: s.Start, End: s.End},
		})
	}

	if len(ef.StructuredFindings) == 0 {
		ef.StructuredFindings = []domain.StructuredFinding{{
			Text:         findings,
			Significance: domain.SignificanceGeneral,
			Category:     FallbackCategory(language),
			SourceSpan:   domain.SourceSpan{Start: 0, End: len(findings)},
		}}
	}
	return ef
}
