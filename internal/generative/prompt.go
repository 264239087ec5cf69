package generative

import (
	"fmt"

	"medreport/internal/domain"
)

// BuildReportPrompt returns the structuring prompt for a dictated report.
func BuildReportPrompt(text, language, hint string) string {
	lang := "German"
	if domain.NormalizeLanguage(language) == domain.LanguageEnglish {
		lang = "English"
	}
	if hint == "" {
		hint = string(domain.ReportTypeGeneral)
	}
	return fmt.Sprintf(`You are a medical report structuring assistant. The following dictated %s report is of type %q.

Split it into the four canonical report fields and return them as JSON.

IMPORTANT INSTRUCTIONS:
- Copy text verbatim from the dictation. Do not paraphrase, translate, summarize or add clinical content.
- Use an empty string for a field that the dictation does not contain.
- "technicalDetails" holds the examination technique and protocol, "recommendations" any advised follow-up.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation:
{"findings": "", "impression": "", "recommendations": "", "technicalDetails": ""}

Dictation:
"""
%s
"""`, lang, hint, text)
}
