package specialization

import (
	"context"
	"regexp"
	"strings"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

var (
	biradsPattern        = regexp.MustCompile(`(?i)\bBI-?RADS[\s:]*(?:(rechts|links|right|left|beidseits|bilateral|bds)\.?[\s:]*)?(?:Kategorie|category|Kat\.)?[\s:]*([0-6][abc]?)\b`)
	acrPattern           = regexp.MustCompile(`(?i)\bACR[\s:-]*(?:Typ|type|Kategorie|category)?[\s:-]*(IV|I{1,3}|[A-D1-4])\b`)
	breastDensityPattern = regexp.MustCompile(`(?i)\b(?:Dichtetyp|Brustdichte|Parenchymdichte|Dichte|breast density|density)[\s:]*(?:Typ[\s:]*)?([A-D])\b`)

	sideTerms = map[string][]string{
		"right":   {"rechts", "rechte", "rechten", "right"},
		"left":    {"links", "linke", "linken", "left"},
		"overall": {"beidseits", "bilateral", "bds"},
	}

	acrDensity = map[string]string{
		"A": "A", "B": "B", "C": "C", "D": "D",
		"1": "A", "2": "B", "3": "C", "4": "D",
		"I": "A", "II": "B", "III": "C", "IV": "D",
	}

	mammographyLesions = []struct {
		label string
		terms []string
	}{
		{"mass", []string{"herdbefund", "rundherd", "raumforderung", "knoten", "mass"}},
		{"calcification", []string{"mikrokalk", "verkalkung", "kalzifikation", "calcification"}},
		{"architectural distortion", []string{"architekturstörung", "architectural distortion"}},
		{"asymmetry", []string{"asymmetr"}},
		{"cyst", []string{"zyste", "cyst"}},
		{"fibroadenoma", []string{"fibroadenom"}},
		{"lymph node", []string{"lymphknoten", "lymph node"}},
	}

	mammographyRegions = []region{
		{"Mamma rechts", []string{"mamma rechts", "rechte mamma", "rechten mamma", "rechte brust", "rechten brust", "right breast"}},
		{"Mamma links", []string{"mamma links", "linke mamma", "linken mamma", "linke brust", "linken brust", "left breast"}},
		{"Axilla", []string{"axilla", "axillär", "axillary"}},
		{"Mamille", []string{"mamille", "retromamillär", "nipple"}},
	}
)

// MammographyParser structures mammography reports.
type MammographyParser struct {
	base
}

// NewMammographyParser creates a mammography specialization.
func NewMammographyParser(deps Dependencies) *MammographyParser {
	return &MammographyParser{base: newBase(domain.ReportTypeMammography, deps)}
}

// Parse structures text and adds BI-RADS, density and lesion annotations.
func (p *MammographyParser) Parse(ctx context.Context, text, language string, meta map[string]any) *domain.StructuredReport {
	report := p.parse(ctx, text, language, meta)
	report.Sections.Mammography = ScanMammography(text)
	return report
}

// ScanMammography scans raw mammography report text.
func ScanMammography(text string) *domain.MammographyAnnotations {
	out := &domain.MammographyAnnotations{
		BIRADS:  scanBIRADS(text),
		Lesions: []string{},
		Regions: nonNilRegions(scanRegions(text, mammographyRegions)),
	}
	for _, l := range mammographyLesions {
		if spanextract.ContainsAny(text, l.terms) {
			out.Lesions = append(out.Lesions, l.label)
		}
	}
	return out
}

func scanBIRADS(text string) domain.BIRADSAssessment {
	var a domain.BIRADSAssessment
	sentences := spanextract.SplitSentences(text)
	matches := biradsPattern.FindAllStringSubmatchIndex(text, -1)

	var unsided string
	for i, m := range matches {
		category := strings.ToLower(text[m[4]:m[5]])

		var side string
		if m[2] >= 0 {
			side = sideOf(text[m[2]:m[3]])
		} else {
			side = sideAround(text, sentences, matches, i)
		}

		switch side {
		case "right":
			a.Right = higherBIRADS(a.Right, category)
		case "left":
			a.Left = higherBIRADS(a.Left, category)
		default:
			unsided = higherBIRADS(unsided, category)
		}
	}

	if unsided != "" {
		a.Overall = unsided
	} else {
		a.Overall = higherBIRADS(a.Left, a.Right)
	}
	a.Density = scanBreastDensity(text)
	return a
}

// sideAround looks for a side word before match i within its sentence, then after it.
func sideAround(text string, sentences []domain.Span, matches [][]int, i int) string {
	m := matches[i]
	sentence, ok := spanextract.SentenceAt(sentences, m[0])
	if !ok {
		return ""
	}
	from := sentence.Start
	if i > 0 && matches[i-1][1] > from {
		from = matches[i-1][1]
	}
	if side := lastSide(text[from:m[0]]); side != "" {
		return side
	}
	to := sentence.End
	if i+1 < len(matches) && matches[i+1][0] < to {
		to = matches[i+1][0]
	}
	if m[1] < to {
		return sideOf(text[m[1]:to])
	}
	return ""
}

// sideOf returns the first side named in s.
func sideOf(s string) string {
	lowered := spanextract.Lower(s)
	best, bestAt := "", len(lowered)+1
	for side, terms := range sideTerms {
		for _, t := range terms {
			if i := strings.Index(lowered, t); i >= 0 && i < bestAt {
				best, bestAt = side, i
			}
		}
	}
	if best == "overall" {
		return ""
	}
	return best
}

// lastSide returns the last side named in s.
func lastSide(s string) string {
	lowered := spanextract.Lower(s)
	best, bestAt := "", -1
	for side, terms := range sideTerms {
		for _, t := range terms {
			if i := strings.LastIndex(lowered, t); i > bestAt {
				best, bestAt = side, i
			}
		}
	}
	if best == "overall" {
		return ""
	}
	return best
}

// higherBIRADS returns the more suspicious of two categories. Lexical order
// ("4" < "4a" < "4c" < "5") matches clinical order.
func higherBIRADS(a, b string) string {
	if b > a {
		return b
	}
	return a
}

func scanBreastDensity(text string) string {
	if m := acrPattern.FindStringSubmatch(text); m != nil {
		if d, ok := acrDensity[strings.ToUpper(m[1])]; ok {
			return d
		}
	}
	if m := breastDensityPattern.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}
