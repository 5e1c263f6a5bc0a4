package enums

import "fmt"

// ReportFormat selects the artifact type of an export.
type ReportFormat string

const (
	ReportFormatWord  ReportFormat = "word"
	ReportFormatExcel ReportFormat = "excel"
)

var validReportFormats = []ReportFormat{
	ReportFormatWord,
	ReportFormatExcel,
}

func (f ReportFormat) String() string { return string(f) }

func (f ReportFormat) IsValid() bool {
	for _, candidate := range validReportFormats {
		if candidate == f {
			return true
		}
	}
	return false
}

// Extension returns the file extension without the dot.
func (f ReportFormat) Extension() string {
	if f == ReportFormatExcel {
		return "xlsx"
	}
	return "docx"
}

// ContentType returns the MIME type of the rendered artifact.
func (f ReportFormat) ContentType() string {
	if f == ReportFormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// ParseReportFormat converts the raw string to ReportFormat.
func ParseReportFormat(value string) (ReportFormat, error) {
	for _, candidate := range validReportFormats {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report format %q", value)
}
