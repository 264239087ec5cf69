package spanextract_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medreport/internal/domain"
	"medreport/internal/spanextract"
)

var sectionCorpus = []string{
	"Befund: LWK 5/SWK 1 mit mittelgradiger Spinalkanalstenose. Beurteilung: Mittelgradige Stenose.",
	"Klinische Fragestellung: Lumbago.\nTechnik: Sagittale T1/T2.\nBefund:\n  Regelrechte Lordose.\n\nBeurteilung: Unauffällig.\nMit freundlichen Grüßen\nDr. med. Muster",
	"FINDINGS: Small effusion. IMPRESSION: Effusion. Recommendations: Follow-up in 6 weeks. Kind regards, Dr. X",
	"Befund: \n Beurteilung: Kein Nachweis einer Fraktur.",
	"Kein Header in diesem Text.",
	"Indikation:Schmerzen. Befunde:Keine. Empfehlung:Keine weitere Diagnostik.",
	"Nebenbefund: nicht relevant. Befund: Größe 3 cm. Zusammenfassung: Zyste.",
}

func TestExtractSections_TwoSections(t *testing.T) {
	text := "Befund: LWK 5/SWK 1 mit mittelgradiger Spinalkanalstenose. Beurteilung: Mittelgradige Stenose."

	sections := spanextract.ExtractSections(text)

	require.Len(t, sections, 2)
	assert.Equal(t, "Befund", sections[0].Name)
	assert.Equal(t, "LWK 5/SWK 1 mit mittelgradiger Spinalkanalstenose.", sections[0].Content)
	assert.Equal(t, domain.FamilyFindings, sections[0].Family)
	assert.Equal(t, "Befund:", sections[0].Header)
	assert.Equal(t, "Beurteilung", sections[1].Name)
	assert.Equal(t, "Mittelgradige Stenose.", sections[1].Content)
	assert.Equal(t, domain.FamilyImpression, sections[1].Family)
}

func TestExtractSections_ContentIsExactTrimmedSlice(t *testing.T) {
	for _, text := range sectionCorpus {
		for _, s := range spanextract.ExtractSections(text) {
			require.GreaterOrEqual(t, s.StartPos, 0)
			require.LessOrEqual(t, s.EndPos, len(text))
			assert.Equal(t, strings.TrimSpace(text[s.StartPos:s.EndPos]), s.Content, "text=%q", text)
			assert.NotEmpty(t, s.Content)
		}
	}
}

func TestExtractSections_OrderedAndNonOverlapping(t *testing.T) {
	for _, text := range sectionCorpus {
		sections := spanextract.ExtractSections(text)
		for i := 1; i < len(sections); i++ {
			assert.Less(t, sections[i-1].StartPos, sections[i].StartPos, "text=%q", text)
			assert.LessOrEqual(t, sections[i-1].EndPos, sections[i].StartPos, "text=%q", text)
		}
	}
}

func TestExtractSections_LongestOverlappingHeaderWins(t *testing.T) {
	text := "Klinische Fragestellung: Bandscheibenvorfall? Befund: Protrusion L4/5."

	sections := spanextract.ExtractSections(text)

	require.Len(t, sections, 2)
	assert.Equal(t, "Klinische Fragestellung", sections[0].Name)
	assert.Equal(t, "Bandscheibenvorfall?", sections[0].Content)
	assert.Equal(t, domain.FamilyClinical, sections[0].Family)
}

func TestExtractSections_LastSectionStopsAtSignature(t *testing.T) {
	text := "Befund: Regelrechte Darstellung.\nBeurteilung: Normalbefund.\nMit freundlichen Grüßen\nDr. med. Muster"

	sections := spanextract.ExtractSections(text)

	require.Len(t, sections, 2)
	assert.Equal(t, "Normalbefund.", sections[1].Content)
	assert.NotContains(t, sections[1].Content, "Grüßen")
	assert.Equal(t, strings.Index(text, "Mit freundlichen"), sections[1].EndPos)
}

func TestExtractSections_CaseInsensitiveHeaders(t *testing.T) {
	text := "BEFUND: Kleine Zyste. impression: Benign cyst."

	sections := spanextract.ExtractSections(text)

	require.Len(t, sections, 2)
	assert.Equal(t, "BEFUND:", sections[0].Header)
	assert.Equal(t, "Befund", sections[0].Name)
	assert.Equal(t, domain.FamilyImpression, sections[1].Family)
}

func TestExtractSections_IgnoresHeaderInsideWord(t *testing.T) {
	text := "Nebenbefund: nicht relevant. Befund: Zyste."

	sections := spanextract.ExtractSections(text)

	require.Len(t, sections, 1)
	assert.Equal(t, "Befund", sections[0].Name)
	assert.Equal(t, "Zyste.", sections[0].Content)
}

func TestExtractSections_SkipsEmptySections(t *testing.T) {
	text := "Befund: \n Beurteilung: Kein Nachweis einer Fraktur."

	sections := spanextract.ExtractSections(text)

	require.Len(t, sections, 1)
	assert.Equal(t, "Beurteilung", sections[0].Name)
}

func TestExtractSections_NoHeaders(t *testing.T) {
	assert.Empty(t, spanextract.ExtractSections("Kein Header in diesem Text."))
	assert.Empty(t, spanextract.ExtractSections(""))
}

func TestSectionContentSpan(t *testing.T) {
	text := "Befund:   Zyste.  Beurteilung: Benigne."
	sections := spanextract.ExtractSections(text)
	require.NotEmpty(t, sections)

	span, ok := spanextract.SectionContentSpan(text, sections[0])

	require.True(t, ok)
	assert.Equal(t, "Zyste.", span.Text)
	assert.Equal(t, span.Text, text[span.Start:span.End])
}
