package spanextract

import (
	"strings"
	"unicode/utf8"

	"medreport/internal/domain"
)

// Default context radii around a training output, in bytes.
const (
	DefaultContextBefore = 500
	DefaultContextAfter  = 200
)

// CreateTrainingPair builds a pair whose output is text[outputStart:outputEnd] using the
// default context radii. It returns nil instead of a pair whose input does not contain its output.
func CreateTrainingPair(text string, outputStart, outputEnd int) *domain.TrainingPair {
	return CreateTrainingPairWithContext(text, outputStart, outputEnd, DefaultContextBefore, DefaultContextAfter)
}

// CreateTrainingPairWithContext is CreateTrainingPair with explicit context radii. If the
// first window does not contain the output, both radii are doubled once before giving up.
func CreateTrainingPairWithContext(text string, outputStart, outputEnd, before, after int) *domain.TrainingPair {
	if outputStart < 0 || outputEnd > len(text) || outputStart >= outputEnd {
		return nil
	}
	output := text[outputStart:outputEnd]
	if output == "" {
		return nil
	}
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}

	for attempt := 0; attempt < 2; attempt++ {
		winStart, winEnd := contextWindow(text, outputStart, outputEnd, before, after)
		input := text[winStart:winEnd]
		if strings.Contains(input, output) {
			pos := outputStart - winStart
			if pos < 0 || pos+len(output) > len(input) || input[pos:pos+len(output)] != output {
				pos = strings.Index(input, output)
			}
			return &domain.TrainingPair{
				Input:  input,
				Output: output,
				Validation: domain.TrainingValidation{
					OutputPosition: pos,
					OutputInInput:  true,
				},
			}
		}
		before *= 2
		after *= 2
	}
	return nil
}

// contextWindow clamps [start-before, end+after] to the text and widens it to rune boundaries.
func contextWindow(text string, start, end, before, after int) (int, int) {
	winStart := start - before
	if winStart < 0 {
		winStart = 0
	}
	winEnd := end + after
	if winEnd > len(text) {
		winEnd = len(text)
	}
	for winStart > 0 && !utf8.RuneStart(text[winStart]) {
		winStart--
	}
	for winEnd < len(text) && !utf8.RuneStart(text[winEnd]) {
		winEnd++
	}
	return winStart, winEnd
}

// TrainingPairsForSections builds one training pair per extracted section, with the
// section's trimmed content as output.
func TrainingPairsForSections(text string) []domain.TrainingPair {
	var pairs []domain.TrainingPair
	for _, s := range ExtractSections(text) {
		span, ok := SectionContentSpan(text, s)
		if !ok {
			continue
		}
		if p := CreateTrainingPair(text, span.Start, span.End); p != nil {
			pairs = append(pairs, *p)
		}
	}
	return pairs
}
