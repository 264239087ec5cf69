package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"medreport/internal/domain"
)

// Sheet names of the XLSX workbook.
const (
	SheetReport      = "Report"
	SheetFindings    = "Findings"
	SheetCodes       = "Codes"
	SheetAnnotations = "Annotations"
)

// WriteXLSX renders report as a workbook with Report, Findings, Codes and Annotations sheets.
func WriteXLSX(out io.Writer, report *domain.StructuredReport) error {
	f, err := BuildWorkbook(report)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// BuildWorkbook creates the in-memory workbook for report. The caller closes it.
func BuildWorkbook(report *domain.StructuredReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetReport); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, name := range []string{SheetFindings, SheetCodes, SheetAnnotations} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	annotations, err := flattenAnnotations(&report.Sections)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	sheets := map[string][][]any{
		SheetReport:      reportRows(report),
		SheetFindings:    findingRows(report),
		SheetCodes:       codeRows(report.DiagnosticCodes),
		SheetAnnotations: annotations,
	}
	for name, rows := range sheets {
		if err := writeRows(f, name, rows); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	_ = f.SetColWidth(SheetReport, "A", "A", 22)
	_ = f.SetColWidth(SheetReport, "B", "B", 80)
	_ = f.SetColWidth(SheetFindings, "A", "A", 80)
	_ = f.SetColWidth(SheetCodes, "B", "B", 48)
	_ = f.SetColWidth(SheetAnnotations, "A", "A", 40)
	_ = f.SetColWidth(SheetAnnotations, "B", "B", 60)
	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func reportRows(r *domain.StructuredReport) [][]any {
	provider := ""
	if r.Metadata.ModelProvider != nil {
		provider = *r.Metadata.ModelProvider
	}
	return [][]any{
		{"Field", "Value"},
		{"Report ID", r.Metadata.ReportID},
		{"Report Type", string(r.Type)},
		{"Language", r.Metadata.Language},
		{"Agent", r.Metadata.Agent},
		{"Generated By Model", formatBool(r.Metadata.GeneratedByModel)},
		{"Model Provider", provider},
		{"Has Enhanced Findings", formatBool(r.Metadata.HasEnhancedFindings)},
		{"Created At", formatTime(r.Metadata.CreatedAt)},
		{"Findings", r.Findings},
		{"Impression", r.Impression},
		{"Recommendations", r.Recommendations},
		{"Technical Details", r.TechnicalDetails},
	}
}

func findingRows(r *domain.StructuredReport) [][]any {
	rows := [][]any{{"Finding", "Significance", "Category", "Start", "End"}}
	if r.EnhancedFindings == nil {
		return rows
	}
	for _, sf := range r.EnhancedFindings.StructuredFindings {
		rows = append(rows, []any{sf.Text, string(sf.Significance), sf.Category, sf.SourceSpan.Start, sf.SourceSpan.End})
	}
	return rows
}

func codeRows(dc *domain.DiagnosticCodes) [][]any {
	rows := [][]any{{"Code", "Description", "Confidence", "Priority", "Category", "Reasoning", "Source"}}
	if dc == nil {
		return rows
	}
	for _, c := range dc.Codes {
		rows = append(rows, []any{c.Code, c.Description, c.Confidence, c.Priority, c.Category, c.Reasoning, dc.Source})
	}
	return rows
}

// flattenAnnotations turns the specialization annotations and measurements into
// sorted (path, value) rows such as ("spine.segments.L4/5.severity", "moderate").
// Null and empty-string leaves are skipped so every row has a value cell.
func flattenAnnotations(s *domain.Sections) ([][]any, error) {
	annotated := *s
	annotated.Extracted = nil

	data, err := json.Marshal(annotated)
	if err != nil {
		return nil, fmt.Errorf("marshal annotations: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("unmarshal annotations: %w", err)
	}
	delete(tree, "extracted")

	flat := make(map[string]string)
	flatten("", tree, flat)

	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	rows := [][]any{{"Path", "Value"}}
	for _, p := range paths {
		rows = append(rows, []any{p, flat[p]})
	}
	return rows, nil
}

func flatten(prefix string, v any, out map[string]string) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flatten(joinPath(prefix, k), child, out)
		}
	case []any:
		for i, child := range val {
			flatten(prefix+"["+strconv.Itoa(i)+"]", child, out)
		}
	case nil:
	case string:
		if val != "" {
			out[prefix] = val
		}
	case float64:
		out[prefix] = strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		out[prefix] = strconv.FormatBool(val)
	default:
		out[prefix] = fmt.Sprint(val)
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
