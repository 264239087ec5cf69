package specialization

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

var (
	segmentPattern       = regexp.MustCompile(`\b(HWK|BWK|LWK|SWK|Th|C|L|S)\s?(\d{1,2})\s?[/-]\s?(?:(HWK|BWK|LWK|SWK|Th|C|L|S)\s?)?(\d{1,2})\b`)
	fieldStrengthPattern = regexp.MustCompile(`\b(\d(?:[.,]\d)?)\s?(?:T|Tesla)\b`)

	vertebraPrefix = map[string]string{
		"HWK": "C", "C": "C",
		"BWK": "Th", "Th": "Th",
		"LWK": "L", "L": "L",
		"SWK": "S", "S": "S",
	}
	vertebraCount = map[string]int{"C": 7, "Th": 12, "L": 5, "S": 1}

	spinePathologies = []struct {
		label string
		terms []string
	}{
		{"disc protrusion", []string{"protrusion", "bulging", "vorwölbung"}},
		{"disc herniation", []string{"prolaps", "vorfall", "hernia", "herniation", "extrusion", "sequester"}},
		{"foraminal stenosis", []string{"neuroforam", "foramin"}},
		{"spinal stenosis", []string{"spinalkanal", "spinal canal", "spinal stenosis"}},
		{"osteochondrosis", []string{"osteochondros"}},
		{"facet arthrosis", []string{"facettengelenk", "spondylarthros", "facet"}},
		{"spondylosis", []string{"spondylose", "spondylosis", "spondylophyt", "osteophyt"}},
		{"nerve root compression", []string{"wurzelkompression", "nervenwurzel", "root compression", "kompression", "compression"}},
		{"ligament hypertrophy", []string{"flavum", "bandhypertroph"}},
		{"spondylolisthesis", []string{"listhese", "listhesis", "wirbelgleiten"}},
	}
	genericStenosis = []string{"stenose", "stenosis", "einengung", "narrowing"}
)

// SpineParser structures spine MRI reports.
type SpineParser struct {
	base
}

// NewSpineParser creates a spine MRI specialization.
func NewSpineParser(deps Dependencies) *SpineParser {
	return &SpineParser{base: newBase(domain.ReportTypeSpineMRI, deps)}
}

// Parse structures text and adds the segment map.
func (p *SpineParser) Parse(ctx context.Context, text, language string, meta map[string]any) *domain.StructuredReport {
	report := p.parse(ctx, text, language, meta)
	report.Sections.Spine = ScanSpine(text)
	return report
}

// ScanSpine maps every spinal segment named in text to the pathologies and severity of
// the sentence it appears in.
func ScanSpine(text string) *domain.SpineAnnotations {
	out := &domain.SpineAnnotations{
		Segments:    make(map[string]domain.SegmentFinding),
		MaxSeverity: domain.SeverityUnspecified,
	}
	if m := fieldStrengthPattern.FindStringSubmatch(text); m != nil {
		if v, ok := parseDecimal(m[1]); ok {
			out.FieldStrength = strconv.FormatFloat(v, 'f', -1, 64) + " T"
		}
	}

	sentences := spanextract.SplitSentences(text)
	for _, m := range segmentPattern.FindAllStringSubmatchIndex(text, -1) {
		secondPrefix := ""
		if m[6] >= 0 {
			secondPrefix = text[m[6]:m[7]]
		}
		segment, ok := normalizeSegment(text[m[2]:m[3]], text[m[4]:m[5]], secondPrefix, text[m[8]:m[9]])
		if !ok {
			continue
		}

		sentence := sentenceContaining(text, sentences, m[0])
		pathologies := spinePathologyTags(sentence)
		severity, _ := SeverityOf(sentence)

		existing, seen := out.Segments[segment]
		if !seen {
			existing = domain.SegmentFinding{Segment: segment, Pathologies: []string{}, Severity: domain.SeverityUnspecified, Sentence: sentence}
		} else if len(existing.Pathologies) == 0 && len(pathologies) > 0 {
			existing.Sentence = sentence
		}
		for _, p := range pathologies {
			existing.Pathologies = uniqueAppend(existing.Pathologies, p)
		}
		existing.Severity = maxSeverity(existing.Severity, severity)
		out.Segments[segment] = existing
		out.MaxSeverity = maxSeverity(out.MaxSeverity, existing.Severity)
	}
	return out
}

// normalizeSegment renders a segment as "L4/5" within one region or "L5/S1" across regions.
func normalizeSegment(prefix, upper, secondPrefix, lower string) (string, bool) {
	first := vertebraPrefix[prefix]
	second := first
	if secondPrefix != "" {
		second = vertebraPrefix[secondPrefix]
	}
	u, err1 := strconv.Atoi(upper)
	l, err2 := strconv.Atoi(lower)
	if err1 != nil || err2 != nil || u < 1 || l < 1 || u > vertebraCount[first] || l > vertebraCount[second] {
		return "", false
	}
	if first == second {
		if l != u+1 {
			return "", false
		}
		return fmt.Sprintf("%s%d/%d", first, u, l), true
	}
	return fmt.Sprintf("%s%d/%s%d", first, u, second, l), true
}

func spinePathologyTags(sentence string) []string {
	tags := []string{}
	for _, p := range spinePathologies {
		if spanextract.ContainsAny(sentence, p.terms) {
			tags = append(tags, p.label)
		}
	}
	if len(tags) == 0 && spanextract.ContainsAny(sentence, genericStenosis) {
		tags = append(tags, "spinal stenosis")
	}
	return tags
}
