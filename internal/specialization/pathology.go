package specialization

import (
	"context"
	"regexp"
	"strings"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

var (
	gradingPattern = regexp.MustCompile(`\bG\s?([1-4X])\b|(?i:\bGrading)[\s:]*G?([1-4])\b`)
	marginPattern  = regexp.MustCompile(`\bR\s?([0-2X])\b`)
	ki67Pattern    = regexp.MustCompile(`(?i)\bKi-?67\b[^0-9]{0,20}?(\d{1,3}(?:[.,]\d+)?)\s?%`)

	receptorPatterns = map[string]*regexp.Regexp{
		"er":   regexp.MustCompile(`(?:\bER|ÖR|(?i:Östrogenrezeptor(?:status)?|\bestrogen receptor))\b[\s:-]*(?i:(positiv|negativ|positive|negative|pos\.?|neg\.?|\+|-|\d{1,3}\s?%))`),
		"pr":   regexp.MustCompile(`\b(?:PR|PgR|(?i:Progesteronrezeptor(?:status)?|progesterone receptor))\b[\s:-]*(?i:(positiv|negativ|positive|negative|pos\.?|neg\.?|\+|-|\d{1,3}\s?%))`),
		"her2": regexp.MustCompile(`(?i)\bHER-?2(?:/neu)?\b[\s:-]*(?:Score\s*)?(0|1\+|2\+|3\+|positiv|negativ|positive|negative)`),
	}

	tumorFreeMargin = []string{"tumorfrei", "im gesunden", "margins free", "free margins", "clear margins"}

	histologicTypes = []struct {
		label string
		terms []string
	}{
		{"DCIS", []string{"dcis", "duktales carcinoma in situ", "ductal carcinoma in situ"}},
		{"invasive ductal carcinoma", []string{"invasiv duktal", "invasive ductal", "nst", "no special type"}},
		{"lobular carcinoma", []string{"lobulär", "lobular"}},
		{"adenocarcinoma", []string{"adenokarzinom", "adenocarcinom", "adenocarcinoma"}},
		{"squamous cell carcinoma", []string{"plattenepithelkarzinom", "squamous cell"}},
		{"urothelial carcinoma", []string{"urothelkarzinom", "urothelial"}},
		{"neuroendocrine tumor", []string{"neuroendokrin", "neuroendocrine"}},
		{"sarcoma", []string{"sarkom", "sarcoma"}},
		{"lymphoma", []string{"lymphom", "lymphoma"}},
		{"melanoma", []string{"melanom"}},
		{"adenoma", []string{"adenom"}},
	}
)

// PathologyParser structures histopathology reports.
type PathologyParser struct {
	base
}

// NewPathologyParser creates a pathology specialization.
func NewPathologyParser(deps Dependencies) *PathologyParser {
	return &PathologyParser{base: newBase(domain.ReportTypePathology, deps)}
}

// Parse structures text and adds grading, margin and receptor annotations.
func (p *PathologyParser) Parse(ctx context.Context, text, language string, meta map[string]any) *domain.StructuredReport {
	report := p.parse(ctx, text, language, meta)
	report.Sections.Pathology = ScanPathology(text)
	return report
}

// ScanPathology scans raw pathology report text.
func ScanPathology(text string) *domain.PathologyAnnotations {
	out := &domain.PathologyAnnotations{HistologicTypes: []string{}}

	if m := gradingPattern.FindStringSubmatch(text); m != nil {
		grade := m[1]
		if grade == "" {
			grade = m[2]
		}
		out.Grading = "G" + grade
	}

	if m := marginPattern.FindStringSubmatch(text); m != nil {
		out.Margin = "R" + m[1]
	} else if spanextract.ContainsAny(text, tumorFreeMargin) {
		out.Margin = "R0"
	}

	out.Receptors = domain.ReceptorStatus{
		ER:   receptorValue(receptorPatterns["er"], text),
		PR:   receptorValue(receptorPatterns["pr"], text),
		HER2: receptorValue(receptorPatterns["her2"], text),
	}

	if m := ki67Pattern.FindStringSubmatch(text); m != nil {
		if v, ok := parseDecimal(m[1]); ok && v <= 100 {
			out.Ki67 = &v
		}
	}

	out.HistologicTypes = scanHistologicTypes(text)
	return out
}

// scanHistologicTypes tags the histologic types named in text. A mention preceded by a
// negation in its sentence ("kein Anhalt für Lymphom") is not tagged.
func scanHistologicTypes(text string) []string {
	found := make(map[string]bool)
	for _, s := range spanextract.SplitSentences(text) {
		lowered := spanextract.Lower(s.Text)
		for _, h := range histologicTypes {
			for _, term := range h.terms {
				if i := wordPrefixIndex(lowered, term); i >= 0 && !spanextract.Negated(lowered[:i]) {
					found[h.label] = true
					break
				}
			}
		}
	}
	types := []string{}
	for _, h := range histologicTypes {
		if found[h.label] {
			types = append(types, h.label)
		}
	}
	return types
}

// receptorValue normalizes a receptor result to positive, negative, a percentage or a HER2 score.
func receptorValue(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	v := strings.ToLower(strings.TrimSpace(m[1]))
	switch {
	case v == "+" || strings.HasPrefix(v, "pos"):
		return "positive"
	case v == "-" || strings.HasPrefix(v, "neg"):
		return "negative"
	case strings.HasSuffix(v, "%"):
		return strings.ReplaceAll(v, " ", "")
	default:
		return v
	}
}
