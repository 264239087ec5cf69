package specialization_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medreport/internal/domain"
	"medreport/internal/specialization"
)

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		text     string
		expected domain.SeverityTier
	}{
		{"Hochgradige Spinalkanalstenose.", domain.SeveritySevere},
		{"Mittelgradige Stenose und leichte Protrusion.", domain.SeverityModerate},
		{"Geringgradige Osteochondrose.", domain.SeverityMild},
		{"Altersentsprechend unauffälliger Befund.", domain.SeverityNormal},
		{"Notfall: freie Luft.", domain.SeverityCritical},
		{"Abnormal configuration.", domain.SeverityUnspecified},
		{"Zyste der Leber.", domain.SeverityUnspecified},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tier, _ := specialization.SeverityOf(tt.text)
			assert.Equal(t, tt.expected, tier)
		})
	}
}

func TestScanSpine_SegmentMappedToSentence(t *testing.T) {
	text := "Befund: LWK 5/SWK 1 mit mittelgradiger Spinalkanalstenose. Beurteilung: Mittelgradige Stenose."

	spine := specialization.ScanSpine(text)

	require.Contains(t, spine.Segments, "L5/S1")
	seg := spine.Segments["L5/S1"]
	assert.Equal(t, []string{"spinal stenosis"}, seg.Pathologies)
	assert.Equal(t, domain.SeverityModerate, seg.Severity)
	assert.Contains(t, seg.Sentence, "Spinalkanalstenose")
	assert.Equal(t, domain.SeverityModerate, spine.MaxSeverity)
}

func TestScanSpine_MergesRepeatedSegments(t *testing.T) {
	text := "MRT der LWS bei 1,5 T. L4/5: breitbasige Protrusion. In Höhe L4/L5 hochgradige Neuroforamenstenose links. HWK 5/6 regelrecht."

	spine := specialization.ScanSpine(text)

	assert.Equal(t, "1.5 T", spine.FieldStrength)
	require.Len(t, spine.Segments, 2)
	l45 := spine.Segments["L4/5"]
	assert.ElementsMatch(t, []string{"disc protrusion", "foraminal stenosis"}, l45.Pathologies)
	assert.Equal(t, domain.SeveritySevere, l45.Severity)
	assert.Equal(t, domain.SeverityNormal, spine.Segments["C5/6"].Severity)
	assert.Equal(t, domain.SeveritySevere, spine.MaxSeverity)
}

func TestScanSpine_IgnoresImplausibleSegments(t *testing.T) {
	spine := specialization.ScanSpine("Befund vom 12/2023, Kontrolle L7/8 empfohlen.")

	assert.Empty(t, spine.Segments)
	assert.Equal(t, domain.SeverityUnspecified, spine.MaxSeverity)
}

func TestScanCT_ContrastRegionsAndDensity(t *testing.T) {
	text := "CT Abdomen nach i.v. Kontrastmittelgabe (80 ml Imeron) in portalvenöser Phase. Die Leber mit einer Dichte von 45 HE. Kein Pleuraerguss im Thorax."

	ct := specialization.ScanCT(text)

	assert.True(t, ct.Contrast.Administered)
	assert.Equal(t, "Imeron", ct.Contrast.Agent)
	assert.Contains(t, ct.Contrast.Phases, "portal venous")
	assert.Contains(t, ct.Contrast.Evidence, "Kontrastmittelgabe")

	require.Len(t, ct.Densities, 1)
	d := ct.Densities[0]
	assert.InDelta(t, 45.0, d.Value, 1e-9)
	assert.Equal(t, "HE", d.Unit)
	assert.Equal(t, "Leber", d.Structure)
	assert.Equal(t, text[d.Span.Start:d.Span.End], d.Span.Text)

	var regions []string
	for _, r := range ct.Regions {
		regions = append(regions, r.Region)
	}
	assert.Contains(t, regions, "Abdomen")
	assert.Contains(t, regions, "Thorax")
}

func TestScanCT_DensitiesFromMeasurements(t *testing.T) {
	text := "Leberherd 2,1 cm mit -12 HE. Zyste der Niere 3 cm, 8 HU."

	ct := specialization.ScanCT(text)

	require.Len(t, ct.Densities, 2)
	first := ct.Densities[0]
	assert.InDelta(t, -12.0, first.Value, 1e-9)
	assert.Equal(t, "HE", first.Unit)
	assert.Equal(t, "Läsion", first.Structure)
	assert.Equal(t, "-12 HE", first.Span.Text)

	second := ct.Densities[1]
	assert.InDelta(t, 8.0, second.Value, 1e-9)
	assert.Equal(t, "HU", second.Unit)
	assert.Equal(t, "Niere", second.Structure)
	for _, d := range ct.Densities {
		assert.Equal(t, text[d.Span.Start:d.Span.End], d.Span.Text)
	}
}

func TestScanCT_NativeScan(t *testing.T) {
	ct := specialization.ScanCT("CCT nativ. Keine intrakranielle Blutung.")

	assert.False(t, ct.Contrast.Administered)
	assert.Equal(t, []string{"native"}, ct.Contrast.Phases)
	assert.Equal(t, "CCT nativ.", ct.Contrast.Evidence)
	assert.Empty(t, ct.Densities)
}

func TestScanMammography_SidedBIRADS(t *testing.T) {
	text := "Rechts: BI-RADS 2. Links: BI-RADS 4a bei gruppiertem Mikrokalk. ACR-Typ C."

	m := specialization.ScanMammography(text)

	assert.Equal(t, "2", m.BIRADS.Right)
	assert.Equal(t, "4a", m.BIRADS.Left)
	assert.Equal(t, "4a", m.BIRADS.Overall)
	assert.Equal(t, "C", m.BIRADS.Density)
	assert.Contains(t, m.Lesions, "calcification")
}

func TestScanMammography_InlineSideAndNumericDensity(t *testing.T) {
	m := specialization.ScanMammography("Beurteilung: BI-RADS rechts 3, BI-RADS links 1. Brustdichte ACR 2.")

	assert.Equal(t, "3", m.BIRADS.Right)
	assert.Equal(t, "1", m.BIRADS.Left)
	assert.Equal(t, "3", m.BIRADS.Overall)
	assert.Equal(t, "B", m.BIRADS.Density)
}

func TestScanOncology(t *testing.T) {
	text := "Tumorstadium ypT2 N1 M0. Lebermetastase mit 23 mm, größenprogredient. Keine Knochenmetastasen."

	onc := specialization.ScanOncology(text)

	assert.Equal(t, domain.TNMStage{T: "ypT2", N: "N1", M: "M0"}, onc.TNM)
	assert.Equal(t, "PD", onc.Response)
	assert.Equal(t, []string{"Leber"}, onc.MetastasisSites)
	require.Len(t, onc.TargetLesions, 1)
	assert.True(t, strings.HasPrefix(onc.TargetLesions[0].Text, "23 mm"))
}

func TestScanOncology_SequenceNamesAreNotStaging(t *testing.T) {
	onc := specialization.ScanOncology("T2-gewichtete Sequenzen. Keine Progression, Befund unverändert.")

	assert.Equal(t, domain.TNMStage{}, onc.TNM)
	assert.Equal(t, "SD", onc.Response)
	assert.Empty(t, onc.MetastasisSites)
}

func TestScanPathology(t *testing.T) {
	text := "Invasiv duktales Karzinom (NST), G2, R0. ER positiv (90 %), PR: negativ, HER2: 1+. Ki-67: 20 %."

	p := specialization.ScanPathology(text)

	assert.Equal(t, "G2", p.Grading)
	assert.Equal(t, "R0", p.Margin)
	assert.Equal(t, domain.ReceptorStatus{ER: "positive", PR: "negative", HER2: "1+"}, p.Receptors)
	require.NotNil(t, p.Ki67)
	assert.InDelta(t, 20.0, *p.Ki67, 1e-9)
	assert.Equal(t, []string{"invasive ductal carcinoma"}, p.HistologicTypes)
}

func TestScanPathology_TumorFreeMargin(t *testing.T) {
	p := specialization.ScanPathology("Tubuläres Adenom, im Gesunden entfernt.")

	assert.Equal(t, "R0", p.Margin)
	assert.Equal(t, []string{"adenoma"}, p.HistologicTypes)
	assert.Nil(t, p.Ki67)
}

func TestScanPathology_NegatedHistologyIgnored(t *testing.T) {
	p := specialization.ScanPathology("Adenokarzinom des Kolons. Kein Anhalt für Lymphom.")

	assert.Equal(t, []string{"adenocarcinoma"}, p.HistologicTypes)
}

func TestScanCardiac(t *testing.T) {
	text := "LVEF 35 %. Hypokinesie der Vorderwand. Mittelgradige Mitralklappeninsuffizienz. Agatston-Score 412."

	c := specialization.ScanCardiac(text)

	require.NotNil(t, c.EjectionFraction)
	assert.InDelta(t, 35.0, *c.EjectionFraction, 1e-9)
	assert.Equal(t, domain.SeverityModerate, c.EjectionTier)
	assert.Equal(t, []string{"Hypokinesie der Vorderwand."}, c.WallMotion)
	require.Len(t, c.Valves, 1)
	assert.Equal(t, "Mitralklappe", c.Valves[0].Region)
	require.NotNil(t, c.CalciumScore)
	assert.InDelta(t, 412.0, *c.CalciumScore, 1e-9)
}

func TestScanCardiac_RangeAveraged(t *testing.T) {
	c := specialization.ScanCardiac("Normale systolische Funktion, EF 55-60 %.")

	require.NotNil(t, c.EjectionFraction)
	assert.InDelta(t, 57.5, *c.EjectionFraction, 1e-9)
	assert.Equal(t, domain.SeverityNormal, c.EjectionTier)
	assert.Nil(t, c.CalciumScore)
}

func TestEjectionTier(t *testing.T) {
	assert.Equal(t, domain.SeverityNormal, specialization.EjectionTier(60))
	assert.Equal(t, domain.SeverityMild, specialization.EjectionTier(50))
	assert.Equal(t, domain.SeverityModerate, specialization.EjectionTier(30))
	assert.Equal(t, domain.SeveritySevere, specialization.EjectionTier(25))
}

func TestScanUltrasound(t *testing.T) {
	text := "Leber vergrößert mit 18 cm. Milz unauffällig. Nieren beidseits normal groß."

	u := specialization.ScanUltrasound(text)

	var organs []string
	for _, o := range u.Organs {
		organs = append(organs, o.Region)
	}
	assert.Equal(t, []string{"Leber", "Milz", "Nieren"}, organs)
	require.Len(t, u.OrganMeasure["Leber"], 1)
	assert.True(t, strings.HasPrefix(u.OrganMeasure["Leber"][0].Text, "18 cm"))
	assert.NotContains(t, u.OrganMeasure, "Milz")
}

func TestScanGeneral(t *testing.T) {
	text := "Hochgradige Stenose der Arteria carotis. Kleine Zyste der Leber."

	g := specialization.ScanGeneral(text)

	assert.Equal(t, domain.SeveritySevere, g.Severity)
	assert.Equal(t, []string{"hochgradig"}, g.SeverityEvidence)
	assert.Len(t, g.PathologySentences, 2)
	require.Len(t, g.Regions, 1)
	assert.Equal(t, "Abdomen", g.Regions[0].Region)
	assert.Equal(t, []string{"Kleine Zyste der Leber."}, g.Regions[0].Sentences)
	assert.Contains(t, g.Regions[0].Pathologies, "zyste")
}

func TestScanGeneral_EmptyCollectionsAreNotNil(t *testing.T) {
	g := specialization.ScanGeneral("Text ohne Befundbegriffe")

	assert.NotNil(t, g.SeverityEvidence)
	assert.NotNil(t, g.PathologySentences)
	assert.NotNil(t, g.Regions)
}
