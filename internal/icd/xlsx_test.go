package icd_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"medreport/internal/domain"
	"medreport/internal/icd"
)

func catalogWorkbook(t *testing.T, rows [][]any) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	return f
}

func TestReadCatalogXLSX(t *testing.T) {
	f := catalogWorkbook(t, [][]any{
		{"Code", "Beschreibung", "Description_EN", "Kategorie", "Keywords", "Report_Types"},
		{"k76.0", "Fettleber", "Fatty liver", "Abdomen", "Steatosis hepatis; Fettleber", "ct, ultrasound, xray"},
		{"not-a-code", "Ungültig", "", "", "irgendwas", ""},
		{"R91", "Lungenrundherd", "", "Thorax", "", ""},
		{"J90", "Pleuraerguss", "", "Thorax", "Pleuraerguss", ""},
	})
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	entries, err := icd.ReadCatalogXLSX(bytes.NewReader(buf.Bytes()))

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "K76.0", entries[0].Code)
	assert.Equal(t, "Fettleber", entries[0].Description)
	assert.Equal(t, "Fatty liver", entries[0].DescriptionEN)
	assert.Equal(t, []string{"Steatosis hepatis", "Fettleber"}, entries[0].Keywords)
	assert.Equal(t, []domain.ReportType{domain.ReportTypeCT, domain.ReportTypeUltrasound}, entries[0].ReportTypes)
	assert.Equal(t, "J90", entries[1].Code)
	assert.Empty(t, entries[1].ReportTypes)
}

func TestReadCatalogXLSX_MissingColumns(t *testing.T) {
	f := catalogWorkbook(t, [][]any{
		{"Code", "Beschreibung"},
		{"J90", "Pleuraerguss"},
	})
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = icd.ReadCatalogXLSX(bytes.NewReader(buf.Bytes()))

	assert.ErrorIs(t, err, domain.ErrCatalogUnreadable)
}

func TestReadCatalogXLSX_NotAWorkbook(t *testing.T) {
	_, err := icd.ReadCatalogXLSX(bytes.NewReader([]byte("code,keywords\n")))

	assert.ErrorIs(t, err, domain.ErrCatalogUnreadable)
}

func TestLoadCatalogXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	f := catalogWorkbook(t, [][]any{
		{"ICD", "Keywords"},
		{"E04.1", "Schilddrüsenknoten"},
	})
	require.NoError(t, f.SaveAs(path))

	entries, err := icd.LoadCatalogXLSX(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	c := icd.DefaultCatalog()
	c.Add(entries...)
	e, ok := c.Lookup("E04.1")
	require.True(t, ok)
	assert.Equal(t, []string{"schilddrüsenknoten"}, e.Keywords)
	assert.Empty(t, e.Description)

	_, err = icd.LoadCatalogXLSX(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, domain.ErrCatalogUnreadable)
}
