package spanextract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"medreport/internal/domain"
)

// Lower lowercases s with German casing rules. Only use the result for keyword
// containment; byte offsets of the lowered string may differ from the source.
func Lower(s string) string {
	// A Caser keeps state and must not be shared between goroutines.
	return cases.Lower(language.German).String(s)
}

// MatchTerms returns every term of terms contained in text, compared case-insensitively.
// Terms are expected in lowercase. The result preserves the order of terms.
func MatchTerms(text string, terms []string) []string {
	lowered := Lower(text)
	var matched []string
	for _, t := range terms {
		if strings.Contains(lowered, t) {
			matched = append(matched, t)
		}
	}
	return matched
}

// ContainsAny reports whether text contains at least one of terms, compared case-insensitively.
func ContainsAny(text string, terms []string) bool {
	lowered := Lower(text)
	for _, t := range terms {
		if strings.Contains(lowered, t) {
			return true
		}
	}
	return false
}

// SplitSentences splits text at sentence terminators and line breaks. Each span keeps its
// terminator and is trimmed of surrounding whitespace; Text always equals text[Start:End].
func SplitSentences(text string) []domain.Span {
	var spans []domain.Span
	start := 0
	emit := func(end int) {
		if s, ok := trimmedSpan(text, start, end); ok {
			spans = append(spans, s)
		}
		start = end
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		next := i + size
		switch {
		case r == '\n':
			emit(next)
		case r == '!' || r == '?':
			emit(next)
		case r == '.' && isSentencePeriod(text, i, next):
			emit(next)
		}
		i = next
	}
	if start < len(text) {
		emit(len(text))
	}
	return spans
}

// isSentencePeriod decides whether the period at i (ending at next) closes a sentence.
func isSentencePeriod(text string, i, next int) bool {
	if next < len(text) {
		r, _ := utf8.DecodeRuneInString(text[next:])
		if !unicode.IsSpace(r) {
			// decimals, dotted abbreviations and ranges like "3.5" or "z.B"
			return false
		}
	}
	tokStart := i
	for tokStart > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:tokStart])
		if unicode.IsSpace(r) {
			break
		}
		tokStart -= size
	}
	return !sentenceAbbreviations[Lower(text[tokStart:next])]
}

// trimmedSpan trims whitespace from text[start:end] and returns the remaining span.
func trimmedSpan(text string, start, end int) (domain.Span, bool) {
	seg := text[start:end]
	left := len(seg) - len(strings.TrimLeftFunc(seg, unicode.IsSpace))
	right := len(strings.TrimRightFunc(seg, unicode.IsSpace))
	if right <= left {
		return domain.Span{}, false
	}
	return domain.Span{Start: start + left, End: start + right, Text: seg[left:right]}, true
}

// SentenceAt returns the sentence of sentences that contains the byte offset pos.
func SentenceAt(sentences []domain.Span, pos int) (domain.Span, bool) {
	for _, s := range sentences {
		if pos >= s.Start && pos < s.End {
			return s, true
		}
	}
	return domain.Span{}, false
}

// negationWords mark a sentence as negating what it mentions.
var negationWords = map[string]bool{
	"kein": true, "keine": true, "keinen": true, "keiner": true, "keinem": true, "ohne": true,
	"no": true, "not": true, "without": true,
}

// Negated reports whether sentence contains a negation word such as "kein" or "no".
func Negated(sentence string) bool {
	words := strings.FieldsFunc(Lower(sentence), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if negationWords[w] {
			return true
		}
	}
	return false
}
