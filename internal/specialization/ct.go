package specialization

import (
	"context"
	"regexp"
	"strings"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

var (
	contrastTerms     = []string{"kontrastmittel", "km-gabe", "km gabe", "i.v. km", "nach km", "kontrastiert", "contrast-enhanced", "contrast"}
	contrastNegations = []string{"ohne kontrastmittel", "ohne km", "kein kontrastmittel", "nativ", "non-contrast", "without contrast", "unenhanced"}

	contrastAgents = []string{"Imeron", "Ultravist", "Omnipaque", "Visipaque", "Xenetix", "Accupaque", "Iomeron", "Iopamidol", "Iohexol", "Iopromid"}

	contrastPhases = []struct {
		label string
		terms []string
	}{
		{"native", []string{"nativ", "native", "unenhanced"}},
		{"arterial", []string{"arteriell", "arterial"}},
		{"portal venous", []string{"portalvenös", "portal-venös", "portal venous", "portalvenous"}},
		{"venous", []string{"venöse phase", "venous phase"}},
		{"delayed", []string{"spätphase", "spät-phase", "delayed", "late phase"}},
	}

	ctRegions = []region{
		{"Schädel", []string{"schädel", "cerebr", "hirn", "kranial", "cranial", "brain", "skull"}},
		{"Hals", []string{"hals", "neck", "schilddrüse", "thyroid"}},
		{"Thorax", []string{"thorax", "thorak", "lunge", "pulmo", "mediastin", "pleura", "chest", "lung"}},
		{"Abdomen", []string{"abdomen", "abdominal", "leber", "milz", "pankreas", "niere", "liver", "spleen", "kidney", "pancrea", "darm", "bowel"}},
		{"Becken", []string{"becken", "pelvis", "pelvic", "harnblase", "bladder", "prostata", "prostate", "uterus"}},
		{"Wirbelsäule", []string{"wirbelsäule", "wirbelkörper", "spine", "vertebra", "lwk", "bwk", "hwk"}},
	}

	densityStructures = []struct {
		label string
		terms []string
	}{
		{"Leber", []string{"leber", "liver", "hepat"}},
		{"Milz", []string{"milz", "spleen"}},
		{"Niere", []string{"niere", "kidney", "renal"}},
		{"Nebenniere", []string{"nebenniere", "adrenal"}},
		{"Pankreas", []string{"pankreas", "pancrea"}},
		{"Lunge", []string{"lunge", "lung", "pulmo"}},
		{"Knochen", []string{"knochen", "bone", "ossär"}},
		{"Zyste", []string{"zyste", "cyst"}},
		{"Läsion", []string{"läsion", "lesion", "raumforderung", "herd", "knoten", "nodul", "mass"}},
		{"Erguss", []string{"erguss", "effusion"}},
		{"Fett", []string{"fett", "fat"}},
		{"Blut", []string{"blut", "hämatom", "hemorrhage", "blood"}},
	}

	densityValue = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s?(HE|HU)\b`)
)

// CTParser structures computed tomography reports.
type CTParser struct {
	base
}

// NewCTParser creates a CT specialization.
func NewCTParser(deps Dependencies) *CTParser {
	return &CTParser{base: newBase(domain.ReportTypeCT, deps)}
}

// Parse structures text and adds contrast, region and density annotations.
func (p *CTParser) Parse(ctx context.Context, text, language string, meta map[string]any) *domain.StructuredReport {
	report := p.parse(ctx, text, language, meta)
	report.Sections.CT = ScanCT(text)
	return report
}

// ScanCT scans raw CT report text.
func ScanCT(text string) *domain.CTAnnotations {
	return &domain.CTAnnotations{
		Contrast:  scanContrast(text),
		Regions:   nonNilRegions(scanRegions(text, ctRegions)),
		Densities: scanDensities(text),
	}
}

func scanContrast(text string) domain.ContrastProtocol {
	protocol := domain.ContrastProtocol{Phases: []string{}}
	lowered := spanextract.Lower(text)

	for _, ph := range contrastPhases {
		if spanextract.ContainsAny(text, ph.terms) {
			protocol.Phases = append(protocol.Phases, ph.label)
		}
	}
	for _, agent := range contrastAgents {
		if strings.Contains(lowered, strings.ToLower(agent)) {
			protocol.Agent = agent
			break
		}
	}

	var negated string
	for _, s := range spanextract.SplitSentences(text) {
		if !spanextract.ContainsAny(s.Text, contrastTerms) && !spanextract.ContainsAny(s.Text, contrastNegations) {
			continue
		}
		if spanextract.ContainsAny(s.Text, contrastNegations) && !hasEnhancedPhase(s.Text) {
			if negated == "" {
				negated = s.Text
			}
			continue
		}
		protocol.Administered = true
		protocol.Evidence = s.Text
		break
	}

	if !protocol.Administered && (protocol.Agent != "" || hasEnhancedPhase(text)) {
		protocol.Administered = true
	}
	if protocol.Evidence == "" {
		protocol.Evidence = negated
	}
	return protocol
}

// hasEnhancedPhase reports whether text names a post-contrast phase.
func hasEnhancedPhase(text string) bool {
	for _, ph := range contrastPhases {
		if ph.label != "native" && spanextract.ContainsAny(text, ph.terms) {
			return true
		}
	}
	return false
}

// scanDensities keeps the HE/HU values among the measurements of text. A minus sign
// directly before the value makes it negative.
func scanDensities(text string) []domain.DensityMeasurement {
	sentences := spanextract.SplitSentences(text)
	seen := make(map[int]bool)
	out := []domain.DensityMeasurement{}
	for _, span := range spanextract.FindMeasurements(text) {
		m := densityValue.FindStringSubmatchIndex(span.Text)
		if m == nil {
			continue
		}
		start, end := span.Start+m[0], span.Start+m[1]
		if seen[start] {
			continue
		}
		seen[start] = true

		raw := span.Text[m[2]:m[3]]
		if start > 0 && text[start-1] == '-' && (start < 2 || !isDigitByte(text[start-2])) {
			start--
			raw = "-" + raw
		}
		value, ok := parseDecimal(raw)
		if !ok {
			continue
		}
		out = append(out, domain.DensityMeasurement{
			Value:     value,
			Unit:      span.Text[m[4]:m[5]],
			Structure: densityStructure(text, sentences, start),
			Span:      domain.Span{Start: start, End: end, Text: text[start:end]},
		})
	}
	return out
}

// densityStructure picks the structure named closest before pos within its sentence.
func densityStructure(text string, sentences []domain.Span, pos int) string {
	start := 0
	if s, ok := spanextract.SentenceAt(sentences, pos); ok {
		start = s.Start
	}
	prefix := spanextract.Lower(text[start:pos])

	best, bestAt := "unspecified", -1
	for _, st := range densityStructures {
		for _, term := range st.terms {
			if i := strings.LastIndex(prefix, term); i > bestAt {
				best, bestAt = st.label, i
			}
		}
	}
	return best
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

func nonNilRegions(r []domain.RegionFinding) []domain.RegionFinding {
	if r == nil {
		return []domain.RegionFinding{}
	}
	return r
}
