package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Dataset is one table: ordered headers and rows keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// record lays a row out in header order. Missing cells are blank.
func (d Dataset) record(row map[string]string) []string {
	rec := make([]string, len(d.Headers))
	for i, h := range d.Headers {
		rec[i] = row[h]
	}
	return rec
}

// utf8BOM lets spreadsheet apps detect UTF-8, which Arabic names need.
const utf8BOM = "\ufeff"

// CSVOption configures a CSVExporter.
type CSVOption func(*CSVExporter)

// WithBOM prefixes the output with a UTF-8 byte order mark. The ingest
// readers strip it again, so the files stay round-trippable.
func WithBOM() CSVOption {
	return func(e *CSVExporter) { e.bom = true }
}

type CSVExporter struct {
	bom bool
}

func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render writes the header line then one line per row.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	var buf bytes.Buffer
	if e.bom {
		buf.WriteString(utf8BOM)
	}
	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for _, row := range data.Rows {
		records = append(records, data.record(row))
	}
	if err := csv.NewWriter(&buf).WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Section is one titled table inside a PDF report
type Section struct {
	Title string
	Lines []string
	Data  Dataset
}

// PDFExporter renders sections into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a landscape A4 document with a title followed by each
// section's free-text lines and table.
func (e *PDFExporter) Render(title string, sections ...Section) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	for _, sec := range sections {
		if sec.Title != "" {
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(0, 9, tr(sec.Title), "", 1, "", false, 0, "")
		}
		pdf.SetFont("Arial", "", 10)
		for _, line := range sec.Lines {
			pdf.CellFormat(0, 6, tr(line), "", 1, "", false, 0, "")
		}
		if len(sec.Data.Headers) > 0 {
			colWidth := 277.0 / float64(len(sec.Data.Headers))
			pdf.SetFont("Arial", "B", 9)
			for _, header := range sec.Data.Headers {
				pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)

			pdf.SetFont("Arial", "", 8)
			for _, row := range sec.Data.Rows {
				for _, cell := range sec.Data.record(row) {
					pdf.CellFormat(colWidth, 7, tr(cell), "1", 0, "", false, 0, "")
				}
				pdf.Ln(-1)
			}
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
