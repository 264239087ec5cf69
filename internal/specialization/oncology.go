package specialization

import (
	"context"
	"regexp"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

var (
	tnmPattern = regexp.MustCompile(`\b(y?[cpr]?T(?:is|[0-4X][a-d]?))[\s,]*(y?[cpr]?N[0-3X][a-c]?)?[\s,]*([cp]?M[01X][a-c]?)?(?:\b|$)`)

	// responseCategories are ordered worst first; the first category found wins.
	responseCategories = []struct {
		label    string
		terms    []string
		negation bool
	}{
		{"PD", []string{"progressive disease", "progredient", "progression", "progress", "größenprogredient", "neu aufgetreten", "new lesion"}, true},
		{"SD", []string{"stable disease", "stabile erkrankung", "stabiler befund", "größenkonstant", "unverändert", "unchanged"}, false},
		{"PR", []string{"partielle remission", "teilremission", "partial response", "partial remission", "größenregredient", "regredient"}, false},
		{"CR", []string{"komplette remission", "vollständige remission", "complete response", "complete remission"}, false},
	}

	metastasisTerms = []string{"metasta", "filia", "absiedlung"}

	metastasisSites = []struct {
		label string
		terms []string
	}{
		{"Leber", []string{"leber", "hepat", "liver"}},
		{"Lunge", []string{"lunge", "pulmonal", "pulmonary", "lung"}},
		{"Knochen", []string{"knochen", "ossär", "skelett", "bone", "osseous"}},
		{"Gehirn", []string{"hirn", "zerebral", "cerebral", "brain"}},
		{"Nebenniere", []string{"nebenniere", "adrenal"}},
		{"Lymphknoten", []string{"lymphknoten", "nodal", "lymph node"}},
		{"Peritoneum", []string{"peritone"}},
		{"Pleura", []string{"pleura", "pleural"}},
	}

	targetLesionTerms = []string{"zielläsion", "target", "läsion", "lesion", "herd", "raumforderung", "metasta", "tumor", "knoten", "nodul"}
)

// OncologyParser structures oncology staging and follow-up reports.
type OncologyParser struct {
	base
}

// NewOncologyParser creates an oncology specialization.
func NewOncologyParser(deps Dependencies) *OncologyParser {
	return &OncologyParser{base: newBase(domain.ReportTypeOncology, deps)}
}

// Parse structures text and adds staging and response annotations.
func (p *OncologyParser) Parse(ctx context.Context, text, language string, meta map[string]any) *domain.StructuredReport {
	report := p.parse(ctx, text, language, meta)
	report.Sections.Oncology = ScanOncology(text)
	return report
}

// ScanOncology scans raw oncology report text.
func ScanOncology(text string) *domain.OncologyAnnotations {
	sentences := spanextract.SplitSentences(text)
	out := &domain.OncologyAnnotations{
		TNM:             scanTNM(text),
		Response:        scanResponse(sentences),
		MetastasisSites: []string{},
		TargetLesions:   []domain.Span{},
	}
	_, out.SeverityEvidence = SeverityOf(text)

	for _, s := range sentences {
		if !spanextract.ContainsAny(s.Text, metastasisTerms) || spanextract.Negated(s.Text) {
			continue
		}
		for _, site := range metastasisSites {
			if spanextract.ContainsAny(s.Text, site.terms) {
				out.MetastasisSites = uniqueAppend(out.MetastasisSites, site.label)
			}
		}
	}

	for _, m := range spanextract.FindMeasurements(text) {
		if s, ok := spanextract.SentenceAt(sentences, m.Start); ok && spanextract.ContainsAny(s.Text, targetLesionTerms) {
			out.TargetLesions = append(out.TargetLesions, m)
		}
	}
	return out
}

// scanTNM returns the first TNM expression. A bare T category without N or M is only
// accepted with a c, p, r or y prefix, so MRI sequence names like "T2" are skipped.
func scanTNM(text string) domain.TNMStage {
	for _, m := range tnmPattern.FindAllStringSubmatch(text, -1) {
		t, n, mm := m[1], m[2], m[3]
		if n == "" && mm == "" && t[0] == 'T' {
			continue
		}
		return domain.TNMStage{T: t, N: n, M: mm}
	}
	return domain.TNMStage{}
}

func scanResponse(sentences []domain.Span) string {
	for _, rc := range responseCategories {
		for _, s := range sentences {
			if !spanextract.ContainsAny(s.Text, rc.terms) {
				continue
			}
			if rc.negation && spanextract.Negated(s.Text) {
				continue
			}
			return rc.label
		}
	}
	return ""
}
