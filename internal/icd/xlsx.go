package icd

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"medreport/internal/domain"
)

// catalogColumns are the recognised header names of a catalog sheet.
var catalogColumns = map[string]string{
	"code":            "code",
	"icd":             "code",
	"icd-10":          "code",
	"description":     "description",
	"beschreibung":    "description",
	"description_en":  "description_en",
	"category":        "category",
	"kategorie":       "category",
	"keywords":        "keywords",
	"schlüsselwörter": "keywords",
	"report_types":    "report_types",
	"report types":    "report_types",
}

// LoadCatalogXLSX reads catalog entries from the first sheet of an XLSX workbook.
func LoadCatalogXLSX(path string) ([]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrCatalogUnreadable, path, err)
	}
	defer func() { _ = f.Close() }()
	return parseCatalogSheet(f)
}

// ReadCatalogXLSX reads catalog entries from an XLSX stream.
func ReadCatalogXLSX(r io.Reader) ([]Entry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnreadable, err)
	}
	defer func() { _ = f.Close() }()
	return parseCatalogSheet(f)
}

// parseCatalogSheet reads sheet index 0. Row 0 is a header naming the columns
// (code, description, description_en, category, keywords, report_types); keywords and
// report types are separated by ";" or ",". Rows without a valid code are skipped.
func parseCatalogSheet(f *excelize.File) ([]Entry, error) {
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnreadable, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty sheet", domain.ErrCatalogUnreadable)
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		if key, ok := catalogColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[key] = i
		}
	}
	if _, ok := cols["code"]; !ok {
		return nil, fmt.Errorf("%w: no code column", domain.ErrCatalogUnreadable)
	}
	if _, ok := cols["keywords"]; !ok {
		return nil, fmt.Errorf("%w: no keywords column", domain.ErrCatalogUnreadable)
	}

	get := func(row []string, key string) string {
		i, ok := cols[key]
		if !ok {
			return ""
		}
		return strings.TrimSpace(cellVal(row, i))
	}

	var entries []Entry
	for _, row := range rows[1:] {
		code := strings.ToUpper(get(row, "code"))
		if !ValidCode(code) {
			continue
		}
		e := Entry{
			Code:          code,
			Description:   get(row, "description"),
			DescriptionEN: get(row, "description_en"),
			Category:      get(row, "category"),
			Keywords:      splitList(get(row, "keywords")),
		}
		for _, t := range splitList(get(row, "report_types")) {
			rt := domain.ReportType(strings.ToLower(t))
			if domain.ValidReportType(rt) {
				e.ReportTypes = append(e.ReportTypes, rt)
			}
		}
		if len(e.Keywords) == 0 {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
