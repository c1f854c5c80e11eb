package contacts

// spreadsheet.go encodes and decodes the tabular interchange formats.
//
// Export always produces a workbook with a single "Contacts" sheet, or a
// CSV file with the same header. Import accepts .xlsx/.xlsm workbooks (the
// first sheet is read) and .csv files. CSV input may carry a UTF-8 BOM and
// invalid byte sequences, both of which are tolerated.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the exported worksheet.
const SheetName = "Contacts"

// Export file names and content types.
const (
	XLSXFileName    = "contacts.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	CSVFileName     = "contacts.csv"
	CSVContentType  = "text/csv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SupportedExtension reports whether filename has an importable extension.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

// ReadTable parses an uploaded document into records, choosing the decoder
// from the file extension.
func ReadTable(filename string, r io.Reader) ([][]string, error) {
	const op = "import"

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readXLSX(r)
	case ".csv":
		return readCSV(r)
	default:
		return nil, Formatf(op, "unsupported file type %q (upload .xlsx or .csv)", filepath.Ext(filename))
	}
}

func readXLSX(r io.Reader) ([][]string, error) {
	const op = "import"

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &Error{Kind: KindFormat, Op: op, Message: "invalid spreadsheet", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, Formatf(op, "empty file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &Error{Kind: KindFormat, Op: op, Message: "invalid spreadsheet", Err: err}
	}
	if len(rows) == 0 {
		return nil, Formatf(op, "empty file")
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	const op = "import"

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: KindFormat, Op: op, Message: "read file", Err: err}
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte("\uFFFD"))
	}

	cr := csv.NewReader(bytes.NewReader(data))
	// Strict quoting: a stray quote must fail the file rather than swallow
	// the rows after it into one field.
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, &Error{Kind: KindFormat, Op: op, Message: "invalid csv", Err: err}
	}
	if len(records) == 0 {
		return nil, Formatf(op, "empty file")
	}
	return records, nil
}

// WriteXLSX writes rows as a workbook to w.
func WriteXLSX(w io.Writer, rows []FlatRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := setRow(f, 1, ExportColumns); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(f, i+2, r.Record()); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, record []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	values := make([]interface{}, len(record))
	for i, v := range record {
		values[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

// WriteCSV writes rows as CSV with the export header to w.
func WriteCSV(w io.Writer, rows []FlatRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
