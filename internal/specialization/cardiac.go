package specialization

import (
	"context"
	"regexp"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

var (
	ejectionPattern = regexp.MustCompile(`(?i)\b(?:LVEF|EF|Ejektionsfraktion|ejection fraction)\b[^0-9]{0,25}?(\d{1,2}(?:[.,]\d)?)(?:\s?[-–]\s?(\d{1,2}(?:[.,]\d)?))?\s?%`)
	calciumPattern  = regexp.MustCompile(`(?i)\b(?:Agatston(?:-Score)?|Kalk-?Score|Calcium-?Score|calcium score|CAC)\b[^0-9]{0,20}?(\d+(?:[.,]\d+)?)`)

	valveRegions = []region{
		{"Aortenklappe", []string{"aortenklappe", "aortenstenose", "aorteninsuffizienz", "aortic valve", "aortic stenosis", "aortic regurgitation"}},
		{"Mitralklappe", []string{"mitral"}},
		{"Trikuspidalklappe", []string{"trikuspidal", "tricuspid"}},
		{"Pulmonalklappe", []string{"pulmonalklappe", "pulmonalstenose", "pulmonalinsuffizienz", "pulmonary valve", "pulmonic"}},
	}

	wallMotionTerms = []string{"wandbewegung", "wandbeweglichkeit", "kinetik", "hypokin", "akinet", "akines", "dyskin", "wall motion"}
)

// CardiacParser structures echocardiography and cardiac imaging reports.
type CardiacParser struct {
	base
}

// NewCardiacParser creates a cardiac specialization.
func NewCardiacParser(deps Dependencies) *CardiacParser {
	return &CardiacParser{base: newBase(domain.ReportTypeCardiac, deps)}
}

// Parse structures text and adds ejection fraction, valve and calcium score annotations.
func (p *CardiacParser) Parse(ctx context.Context, text, language string, meta map[string]any) *domain.StructuredReport {
	report := p.parse(ctx, text, language, meta)
	report.Sections.Cardiac = ScanCardiac(text)
	return report
}

// ScanCardiac scans raw cardiac report text.
func ScanCardiac(text string) *domain.CardiacAnnotations {
	out := &domain.CardiacAnnotations{
		EjectionTier: domain.SeverityUnspecified,
		Valves:       nonNilRegions(scanRegions(text, valveRegions)),
		WallMotion:   []string{},
	}

	if m := ejectionPattern.FindStringSubmatch(text); m != nil {
		if ef, ok := parseDecimal(m[1]); ok {
			if upper, ok := parseDecimal(m[2]); ok && upper > ef {
				ef = (ef + upper) / 2
			}
			out.EjectionFraction = &ef
			out.EjectionTier = EjectionTier(ef)
		}
	}

	if m := calciumPattern.FindStringSubmatch(text); m != nil {
		if score, ok := parseDecimal(m[1]); ok {
			out.CalciumScore = &score
		}
	}

	for _, s := range spanextract.SplitSentences(text) {
		if spanextract.ContainsAny(s.Text, wallMotionTerms) {
			out.WallMotion = append(out.WallMotion, s.Text)
		}
	}
	return out
}

// EjectionTier grades a left ventricular ejection fraction in percent.
func EjectionTier(ef float64) domain.SeverityTier {
	switch {
	case ef >= 55:
		return domain.SeverityNormal
	case ef >= 45:
		return domain.SeverityMild
	case ef >= 30:
		return domain.SeverityModerate
	default:
		return domain.SeveritySevere
	}
}
