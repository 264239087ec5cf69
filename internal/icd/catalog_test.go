package icd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medreport/internal/domain"
	"medreport/internal/icd"
)

func TestValidCode(t *testing.T) {
	for _, code := range []string{"M48.06", "R91", "C50.9", "J90", "T14.2"} {
		assert.True(t, icd.ValidCode(code), code)
	}
	for _, code := range []string{"", "m48.06", "M4", "M48.", "48.06", "M48.12345", "XYZ"} {
		assert.False(t, icd.ValidCode(code), code)
	}
}

func TestCatalog_AddNormalizesAndReplaces(t *testing.T) {
	keywords := []string{" Stenose "}
	c := icd.NewCatalog([]icd.Entry{
		{Code: "m48.06", Description: "first", Keywords: keywords},
		{Code: "bad", Keywords: []string{"x"}},
		{Code: "R91"},
	})
	c.Add(icd.Entry{Code: "M48.06", Description: "second", Keywords: []string{"Spinalkanalstenose"}})

	require.Equal(t, 1, c.Len())
	e, ok := c.Lookup("m48.06")
	require.True(t, ok)
	assert.Equal(t, "second", e.Description)
	assert.Equal(t, []string{"spinalkanalstenose"}, e.Keywords)
	assert.Equal(t, []string{" Stenose "}, keywords)

	_, ok = c.Lookup("R91")
	assert.False(t, ok)
}

func TestCatalog_MatchOrdersByPosition(t *testing.T) {
	text := "LWK 4/5 mit mittelgradiger Spinalkanalstenose und Bandscheibenprotrusion. Kein Nachweis einer Fraktur."

	matches := icd.DefaultCatalog().Match(text, domain.ReportTypeSpineMRI)

	require.Len(t, matches, 2)
	assert.Equal(t, "M48.06", matches[0].Entry.Code)
	assert.Equal(t, "spinalkanalstenose", matches[0].Keyword)
	assert.Equal(t, "Spinalkanalstenose", text[matches[0].Pos:matches[0].Pos+len("Spinalkanalstenose")])
	assert.Equal(t, "M51.2", matches[1].Entry.Code)
	assert.Less(t, matches[0].Pos, matches[1].Pos)
}

func TestCatalog_MatchNegationOnlyBeforeKeyword(t *testing.T) {
	c := icd.DefaultCatalog()

	matches := c.Match("Gallenstein ohne Cholezystitis.", domain.ReportTypeUltrasound)
	require.Len(t, matches, 1)
	assert.Equal(t, "K80.2", matches[0].Entry.Code)

	assert.Empty(t, c.Match("Kein Gallenstein.", domain.ReportTypeUltrasound))
	assert.Empty(t, c.Match("No evidence of pleural effusion.", domain.ReportTypeCT))
}

func TestCatalog_MatchRespectsReportType(t *testing.T) {
	c := icd.DefaultCatalog()
	text := "Einfache Zyste im oberen äußeren Quadranten."

	assert.Empty(t, c.Match(text, domain.ReportTypeCT))

	mammo := c.Match(text, domain.ReportTypeMammography)
	require.Len(t, mammo, 1)
	assert.Equal(t, "N60.0", mammo[0].Entry.Code)

	general := c.Match(text, domain.ReportTypeGeneral)
	require.Len(t, general, 1)
	assert.Equal(t, "N60.0", general[0].Entry.Code)
}

func TestCatalog_MatchOncePerCode(t *testing.T) {
	matches := icd.DefaultCatalog().Match("Pleuraerguss rechts. Pleuraerguss links.", domain.ReportTypeCT)

	require.Len(t, matches, 1)
	assert.Equal(t, "J90", matches[0].Entry.Code)
	assert.Equal(t, 0, matches[0].Pos)
}
