package icd

import (
	"fmt"

	"medreport/internal/domain"
	"medreport/internal/port"
)

// BuildCodingPrompt asks for ICD-10-GM code suggestions for a report.
func BuildCodingPrompt(req port.CodeRequest) string {
	lang := "German"
	if domain.NormalizeLanguage(req.Language) == domain.LanguageEnglish {
		lang = "English"
	}
	reportType := string(req.ReportType)
	if reportType == "" {
		reportType = string(domain.ReportTypeGeneral)
	}
	return fmt.Sprintf(`You are a medical coding assistant. Suggest ICD-10-GM diagnosis codes for the following %s radiology report of type %q.

IMPORTANT INSTRUCTIONS:
- Only code diagnoses that are stated in the report. Do not code negated or excluded findings.
- "code" must be a valid ICD-10 code such as "M48.06".
- "confidence" is a number between 0 and 1.
- "priority" starts at 1 for the main diagnosis.
- Write "description" and "reasoning" in %s.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation:
{"codes": [{"code": "", "description": "", "confidence": 0.0, "priority": 1, "category": "", "reasoning": ""}], "summary": ""}

Findings:
"""
%s
"""

Impression:
"""
%s
"""`, lang, reportType, lang, req.Findings, req.Impression)
}
