package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"medreport/internal/domain"
)

// BOM is the UTF-8 byte order mark, written first so Excel on Windows detects the encoding.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Report ID",
	"Report Type",
	"Finding",
	"Significance",
	"Category",
	"Start",
	"End",
	"Impression",
	"Diagnostic Codes",
	"Generated By Model",
	"Created At",
}

// Writer wraps csv.Writer for exporting structured reports, one row per finding.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteReports converts reports to CSV rows and writes them.
func (w *Writer) WriteReports(reports []*domain.StructuredReport) error {
	for _, r := range reports {
		for _, row := range reportToRows(r) {
			if err := w.csv.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a BOM, the header and the rows of one report to out.
func WriteCSV(out io.Writer, report *domain.StructuredReport) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteReports([]*domain.StructuredReport{report}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// reportToRows emits one row per structured finding. Without enhanced findings the
// plain findings text becomes a single general row without offsets.
func reportToRows(r *domain.StructuredReport) [][]string {
	base := func() []string {
		row := make([]string, len(columns))
		row[0] = r.Metadata.ReportID
		row[1] = string(r.Type)
		row[7] = r.Impression
		row[8] = joinCodes(r.DiagnosticCodes)
		row[9] = formatBool(r.Metadata.GeneratedByModel)
		row[10] = formatTime(r.Metadata.CreatedAt)
		return row
	}

	if r.EnhancedFindings == nil || len(r.EnhancedFindings.StructuredFindings) == 0 {
		row := base()
		row[2] = r.Findings
		row[3] = string(domain.SignificanceGeneral)
		return [][]string{row}
	}

	rows := make([][]string, 0, len(r.EnhancedFindings.StructuredFindings))
	for _, f := range r.EnhancedFindings.StructuredFindings {
		row := base()
		row[2] = f.Text
		row[3] = string(f.Significance)
		row[4] = f.Category
		row[5] = strconv.Itoa(f.SourceSpan.Start)
		row[6] = strconv.Itoa(f.SourceSpan.End)
		rows = append(rows, row)
	}
	return rows
}

func joinCodes(dc *domain.DiagnosticCodes) string {
	if dc == nil {
		return ""
	}
	codes := make([]string, 0, len(dc.Codes))
	for _, c := range dc.Codes {
		codes = append(codes, c.Code)
	}
	return strings.Join(codes, "; ")
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
