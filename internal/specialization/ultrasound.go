package specialization

import (
	"context"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

var ultrasoundOrgans = []region{
	{"Leber", []string{"leber", "liver", "hepat"}},
	{"Gallenblase", []string{"gallenblase", "gallbladder", "cholezyst", "cholecyst"}},
	{"Gallenwege", []string{"gallenweg", "ductus choledochus", "dhc", "bile duct"}},
	{"Pankreas", []string{"pankreas", "pancrea"}},
	{"Milz", []string{"milz", "spleen", "splen"}},
	{"Nieren", []string{"niere", "kidney", "renal"}},
	{"Harnblase", []string{"harnblase", "bladder"}},
	{"Schilddrüse", []string{"schilddrüse", "thyroid", "schilddrüsenlappen"}},
	{"Aorta", []string{"aorta", "aortal"}},
	{"Prostata", []string{"prostata", "prostate"}},
	{"Uterus", []string{"uterus", "endometri"}},
	{"Ovarien", []string{"ovar", "ovary"}},
	{"Lymphknoten", []string{"lymphknoten", "lymph node"}},
}

// UltrasoundParser structures sonography reports.
type UltrasoundParser struct {
	base
}

// NewUltrasoundParser creates an ultrasound specialization.
func NewUltrasoundParser(deps Dependencies) *UltrasoundParser {
	return &UltrasoundParser{base: newBase(domain.ReportTypeUltrasound, deps)}
}

// Parse structures text and adds organ annotations.
func (p *UltrasoundParser) Parse(ctx context.Context, text, language string, meta map[string]any) *domain.StructuredReport {
	report := p.parse(ctx, text, language, meta)
	report.Sections.Ultrasound = ScanUltrasound(text)
	return report
}

// ScanUltrasound groups sentences and measurements of raw sonography text by organ.
func ScanUltrasound(text string) *domain.UltrasoundAnnotations {
	out := &domain.UltrasoundAnnotations{
		Organs:       nonNilRegions(scanRegions(text, ultrasoundOrgans)),
		OrganMeasure: make(map[string][]domain.Span),
	}

	sentences := spanextract.SplitSentences(text)
	for _, m := range spanextract.FindMeasurements(text) {
		s, ok := spanextract.SentenceAt(sentences, m.Start)
		if !ok {
			continue
		}
		for _, organ := range ultrasoundOrgans {
			if spanextract.ContainsAny(s.Text, organ.terms) {
				out.OrganMeasure[organ.name] = append(out.OrganMeasure[organ.name], m)
			}
		}
	}
	return out
}
