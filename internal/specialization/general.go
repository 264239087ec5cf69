package specialization

import (
	"context"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

// generalRegions cover the body regions any report type may mention.
var generalRegions = []region{
	{"Kopf", []string{"kopf", "schädel", "hirn", "cerebr", "head", "brain"}},
	{"Hals", []string{"hals", "neck", "schilddrüse", "thyroid"}},
	{"Thorax", []string{"thorax", "lunge", "herz", "mediastin", "chest", "lung", "heart"}},
	{"Abdomen", []string{"abdomen", "leber", "milz", "pankreas", "niere", "darm", "liver", "spleen", "kidney", "bowel"}},
	{"Becken", []string{"becken", "harnblase", "prostata", "uterus", "pelvi", "bladder"}},
	{"Wirbelsäule", []string{"wirbelsäule", "wirbelkörper", "bandscheib", "spine", "vertebra", "disc"}},
	{"Extremitäten", []string{"knie", "schulter", "hüfte", "sprunggelenk", "handgelenk", "ellenbogen", "knee", "shoulder", "hip", "ankle", "wrist", "elbow"}},
}

// GeneralParser structures reports that match no other domain.
type GeneralParser struct {
	base
}

// NewGeneralParser creates the general specialization.
func NewGeneralParser(deps Dependencies) *GeneralParser {
	return &GeneralParser{base: newBase(domain.ReportTypeGeneral, deps)}
}

// Parse structures text and adds severity, pathology sentence and region annotations.
func (p *GeneralParser) Parse(ctx context.Context, text, language string, meta map[string]any) *domain.StructuredReport {
	report := p.parse(ctx, text, language, meta)
	report.Sections.General = ScanGeneral(text)
	return report
}

// ScanGeneral scans raw report text.
func ScanGeneral(text string) *domain.GeneralAnnotations {
	severity, evidence := SeverityOf(text)
	if evidence == nil {
		evidence = []string{}
	}
	pathology := spanextract.FindPathologySentences(text)
	if pathology == nil {
		pathology = []domain.Span{}
	}
	return &domain.GeneralAnnotations{
		Severity:           severity,
		SeverityEvidence:   evidence,
		PathologySentences: pathology,
		Regions:            nonNilRegions(scanRegions(text, generalRegions)),
	}
}
