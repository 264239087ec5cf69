package spanextract

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"medreport/internal/domain"
)

// FindMeasurements locates numeric measurements followed by a known unit. Each span starts
// at the first digit of the value and runs to the end of the clause, terminator included.
// Results are sorted by start offset and free of duplicates.
func FindMeasurements(text string) []domain.Span {
	seen := make(map[[2]int]bool)
	var out []domain.Span

	for _, unit := range measurementUnits {
		offset := 0
		for {
			idx := strings.Index(text[offset:], unit)
			if idx < 0 {
				break
			}
			unitStart := offset + idx
			unitEnd := unitStart + len(unit)
			offset = unitEnd

			if !unitBoundary(text, unitStart, unitEnd) {
				continue
			}
			numStart, ok := numericStart(text, unitStart)
			if !ok {
				continue
			}
			end := clauseEnd(text, unitEnd)
			key := [2]int{numStart, end}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, domain.Span{Start: numStart, End: end, Text: text[numStart:end]})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}

// unitBoundary checks that the unit at [start,end) is a standalone token: it must follow a
// digit, space or separator and must not run into a further letter or digit.
func unitBoundary(text string, start, end int) bool {
	if start == 0 {
		return false
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:start])
	if !unicode.IsDigit(prev) && !unicode.IsSpace(prev) && !isNumericSeparator(prev) {
		return false
	}
	if end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(next) || unicode.IsDigit(next) {
			return false
		}
	}
	return true
}

// numericStart walks backward from the unit over digits, separators and spaces and returns
// the offset of the first digit of the value. ok is false if no digit precedes the unit.
func numericStart(text string, unitStart int) (int, bool) {
	pos := unitStart
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:pos])
		if !unicode.IsDigit(r) && !isNumericSeparator(r) && r != ' ' && r != '\t' {
			break
		}
		pos -= size
	}
	for pos < unitStart {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if unicode.IsDigit(r) {
			return pos, true
		}
		pos += size
	}
	return 0, false
}

func isNumericSeparator(r rune) bool {
	switch r {
	case ',', '.', 'x', 'X', '×', '/', '-', '–':
		return true
	}
	return false
}

// clauseEnd returns the offset just past the next sentence terminator at or after from.
// Line breaks end a clause without being included.
func clauseEnd(text string, from int) int {
	for i := from; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		next := i + size
		switch {
		case r == '\n':
			return i
		case r == '!' || r == '?' || r == ';':
			return next
		case r == '.':
			if next >= len(text) {
				return next
			}
			nr, _ := utf8.DecodeRuneInString(text[next:])
			if unicode.IsSpace(nr) {
				return next
			}
		}
		i = next
	}
	return len(text)
}
