package spanextract

import (
	"strings"

	"medreport/internal/domain"
)

// FindPathologySentences returns every sentence of text that contains at least one
// pathology keyword. Each span keeps its terminator and equals text[Start:End].
func FindPathologySentences(text string) []domain.Span {
	var out []domain.Span
	for _, s := range SplitSentences(text) {
		lowered := Lower(s.Text)
		for _, kw := range pathologyKeywords {
			if strings.Contains(lowered, kw) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// PathologyKeywords returns a copy of the pathology keyword list.
func PathologyKeywords() []string {
	out := make([]string, len(pathologyKeywords))
	copy(out, pathologyKeywords)
	return out
}
