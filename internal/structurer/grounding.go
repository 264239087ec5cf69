package structurer

import (
	"strings"
	"unicode/utf8"

	"medreport/internal/domain"
)

// groundFindings verifies every finding against content and repairs its span. A span that
// already selects the finding text is kept. Otherwise the text is searched exactly, first
// after the previous finding and then from the start, and finally case-insensitively, in
// which case the finding text is replaced by the matched source slice. Findings that cannot
// be located are dropped.
func groundFindings(content string, findings []domain.StructuredFinding) []domain.StructuredFinding {
	out := make([]domain.StructuredFinding, 0, len(findings))
	cursor := 0

	for _, f := range findings {
		text := strings.TrimSpace(f.Text)
		if text == "" {
			continue
		}

		start, ok := locate(content, text, f.SourceSpan, cursor)
		if !ok {
			continue
		}
		end := start + len(text)
		f.Text = content[start:end]
		f.SourceSpan = domain.SourceSpan{Start: start, End: end}
		out = append(out, f)
		cursor = end
	}
	return out
}

func locate(content, text string, span domain.SourceSpan, cursor int) (int, bool) {
	if span.Start >= 0 && span.End <= len(content) && span.Start < span.End &&
		content[span.Start:span.End] == text {
		return span.Start, true
	}
	if idx := strings.Index(content[cursor:], text); idx >= 0 {
		return cursor + idx, true
	}
	if idx := strings.Index(content, text); idx >= 0 {
		return idx, true
	}
	if idx := indexFold(content, text); idx >= 0 {
		return idx, true
	}
	return 0, false
}

// indexFold finds the first byte offset at which content case-insensitively equals
// text over the same number of bytes.
func indexFold(content, text string) int {
	for i := 0; i+len(text) <= len(content); {
		if strings.EqualFold(content[i:i+len(text)], text) {
			return i
		}
		_, size := utf8.DecodeRuneInString(content[i:])
		i += size
	}
	return -1
}
