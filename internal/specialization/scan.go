package specialization

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

// severityTerms lists lowercase qualifiers per tier, most severe first.
var severityTerms = []struct {
	tier  domain.SeverityTier
	terms []string
}{
	{domain.SeverityCritical, []string{"notfall", "lebensbedrohlich", "dringend", "kritisch", "emergency", "life-threatening", "critical"}},
	{domain.SeveritySevere, []string{"hochgradig", "schwergradig", "schwer", "ausgeprägt", "massiv", "severe", "marked", "high-grade"}},
	{domain.SeverityModerate, []string{"mittelgradig", "mäßig", "moderat", "moderate"}},
	{domain.SeverityMild, []string{"leichtgradig", "geringgradig", "gering", "leicht", "diskret", "minimal", "mild", "slight"}},
	{domain.SeverityNormal, []string{"unauffällig", "regelrecht", "normal", "altersentsprechend", "unremarkable"}},
}

// SeverityOf returns the most severe tier qualifying text and the terms that matched.
// Terms only match at the start of a word, so "abnormal" is not read as "normal".
func SeverityOf(text string) (domain.SeverityTier, []string) {
	lowered := spanextract.Lower(text)
	for _, level := range severityTerms {
		var evidence []string
		for _, term := range level.terms {
			if hasWordPrefix(lowered, term) {
				evidence = append(evidence, term)
			}
		}
		if len(evidence) > 0 {
			return level.tier, evidence
		}
	}
	return domain.SeverityUnspecified, nil
}

// maxSeverity returns the more severe of a and b.
func maxSeverity(a, b domain.SeverityTier) domain.SeverityTier {
	if domain.SeverityRank(b) > domain.SeverityRank(a) {
		return b
	}
	return a
}

// hasWordPrefix reports whether term occurs in s at a word start.
func hasWordPrefix(s, term string) bool {
	return wordPrefixIndex(s, term) >= 0
}

// wordPrefixIndex returns the offset of the first occurrence of term in s that starts a
// word, or -1.
func wordPrefixIndex(s, term string) int {
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], term)
		if i < 0 {
			return -1
		}
		pos := from + i
		if pos == 0 {
			return pos
		}
		r, _ := utf8.DecodeLastRuneInString(s[:pos])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return pos
		}
		from = pos + len(term)
	}
	return -1
}

// region names an anatomical area and the lowercase terms that mention it.
type region struct {
	name  string
	terms []string
}

// scanRegions groups the sentences of text by the regions they mention. A sentence naming
// several regions is listed under each. Regions without sentences are omitted.
func scanRegions(text string, regions []region) []domain.RegionFinding {
	sentences := spanextract.SplitSentences(text)
	keywords := spanextract.PathologyKeywords()

	var out []domain.RegionFinding
	for _, r := range regions {
		finding := domain.RegionFinding{Region: r.name, Sentences: []string{}, Pathologies: []string{}}
		seen := make(map[string]bool)
		for _, s := range sentences {
			if !spanextract.ContainsAny(s.Text, r.terms) {
				continue
			}
			finding.Sentences = append(finding.Sentences, s.Text)
			for _, tag := range spanextract.MatchTerms(s.Text, keywords) {
				if !seen[tag] {
					seen[tag] = true
					finding.Pathologies = append(finding.Pathologies, tag)
				}
			}
		}
		if len(finding.Sentences) > 0 {
			out = append(out, finding)
		}
	}
	return out
}

// sentenceContaining returns the sentence around byte offset pos, or the whole text.
func sentenceContaining(text string, sentences []domain.Span, pos int) string {
	if s, ok := spanextract.SentenceAt(sentences, pos); ok {
		return s.Text
	}
	return strings.TrimSpace(text)
}

// parseDecimal reads a number written with either a decimal comma or point.
func parseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// uniqueAppend appends v to list unless it is already present.
func uniqueAppend(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
