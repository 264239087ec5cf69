package structurer

import (
	"fmt"

	"medreport/internal/domain"
)

// BuildEnhancedFindingsPrompt asks for a significance-tagged breakdown of a findings text.
func BuildEnhancedFindingsPrompt(findings, language string) string {
	lang := "German"
	if domain.NormalizeLanguage(language) == domain.LanguageEnglish {
		lang = "English"
	}
	return fmt.Sprintf(`You are a radiology assistant. Split the following %s findings text into individual findings.

IMPORTANT INSTRUCTIONS:
- "text" must be copied verbatim from the findings text. Do not paraphrase or merge sentences.
- "significance" is one of "general", "significant", "critical".
- "category" is a short anatomical or pathological category.
- "sourceSpan" gives the byte offsets {"start": 0, "end": 0} of "text" inside the findings text.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation:
{"content": "", "structuredFindings": [{"text": "", "significance": "general", "category": "", "sourceSpan": {"start": 0, "end": 0}}]}

Findings text:
"""
%s
"""`, lang, findings)
}
