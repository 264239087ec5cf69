package export

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"medreport/internal/domain"
)

// Format is an output encoding for a structured report.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a case-insensitive name onto a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json; charset=utf-8"
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces characters outside [a-zA-Z0-9_-] with _, collapses
// consecutive underscores and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a Content-Disposition filename for a report.
// Format: report_{type}_{YYYY-MM-DD}.{ext}
func BuildFilename(report *domain.StructuredReport, f Format) string {
	created := report.Metadata.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	name := SanitizeFilename("report_" + string(report.Type))
	return fmt.Sprintf("%s_%s.%s", name, created.Format("2006-01-02"), f)
}

// Write renders report to out in format f.
func Write(out io.Writer, report *domain.StructuredReport, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(out, report)
	case FormatXLSX:
		return WriteXLSX(out, report)
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, f)
	}
}
