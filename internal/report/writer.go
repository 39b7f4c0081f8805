package report

import (
	"io"
	"strings"

	"github.com/cdrscan/cdrscan/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Writer defines the interface for report output.
// Implementations write analysis results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.AnalysisReport) (int, error)

	// WriteSimple outputs only the simple report portion.
	// This is useful for quick summaries without full details.
	WriteSimple(report *model.SimpleReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.AnalysisReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSimple outputs the simple report to all configured Writers.
func (m *MultiWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSimple(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// labelOverrides maps identifier fragments whose title-cased form would
// read wrong.
var labelOverrides = map[string]string{
	"id":  "ID",
	"csv": "CSV",
}

// displayLabel turns a snake_case identifier into a heading label, e.g.
// "communication_gap" into "Communication Gap".
func displayLabel(identifier string) string {
	title := cases.Title(language.English)
	parts := strings.Split(identifier, "_")
	for i, part := range parts {
		if override, ok := labelOverrides[part]; ok {
			parts[i] = override
			continue
		}
		parts[i] = title.String(part)
	}
	return strings.Join(parts, " ")
}
