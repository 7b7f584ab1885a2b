package surveyimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Supported upload extensions.
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
	ExtXLS  = ".xls"
)

// SupportedExtension reports whether filename has an extension Decode accepts.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ExtCSV, ExtXLSX, ExtXLS:
		return true
	}
	return false
}

// Decode reads an uploaded spreadsheet. The format is chosen by the file
// name's extension. The first row is the header; only the first sheet of a
// workbook is read.
func Decode(r io.Reader, filename string) (*Table, error) {
	defer observeStage("decode", time.Now())

	ext := strings.ToLower(filepath.Ext(filename))
	var (
		t   *Table
		err error
	)
	switch ext {
	case ExtCSV:
		t, err = decodeCSV(r)
	case ExtXLSX:
		t, err = decodeXLSX(r)
	case ExtXLS:
		t, err = decodeXLS(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if len(t.Rows) == 0 {
		return nil, ErrEmptyFile
	}
	return t, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decodeCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		// Spreadsheet exports on Windows are often CP-1252.
		if data, err = charmap.Windows1252.NewDecoder().Bytes(data); err != nil {
			return nil, fmt.Errorf("decode csv text: %w", err)
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	return buildTable(records[0], records[1:], func(_, _ int, v string) any { return v }), nil
}

var delimiterCandidates = []rune{',', ';', '\t', '|'}

const delimiterSampleLines = 10

// detectDelimiter picks the candidate that splits the first lines into the
// most columns with a consistent count. Comma wins ties.
func detectDelimiter(data []byte) rune {
	var sample bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 0; n < delimiterSampleLines && sc.Scan(); {
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		sample.Write(line)
		sample.WriteByte('\n')
		n++
	}

	best, bestCols, bestConsistent := ',', 1, false
	for _, c := range delimiterCandidates {
		cols, consistent := sampleShape(sample.Bytes(), c)
		if cols < 2 {
			continue
		}
		if (consistent && !bestConsistent) || (consistent == bestConsistent && cols > bestCols) {
			best, bestCols, bestConsistent = c, cols, consistent
		}
	}
	return best
}

func sampleShape(sample []byte, delim rune) (int, bool) {
	reader := csv.NewReader(bytes.NewReader(sample))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil || len(records) == 0 {
		return 0, false
	}
	cols := len(records[0])
	for _, rec := range records[1:] {
		if len(rec) != cols {
			return cols, false
		}
	}
	return cols, true
}

func decodeXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return buildTable(rows[0], rows[1:], func(row, col int, raw string) any {
		// Header is sheet row 1, so data row i sits on sheet row i+2.
		return xlsxValue(f, sheet, col, row+2, raw)
	}), nil
}

// xlsxValue returns numeric cells as float64 and everything else as text.
// Cells with no type attribute are numeric in OOXML.
func xlsxValue(f *excelize.File, sheet string, col, row int, raw string) any {
	if raw == "" {
		return raw
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return raw
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return raw
	}
	if typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return raw
}

func decodeXLS(r io.Reader) (*Table, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read xls: %w", err)
		}
		rs = bytes.NewReader(data)
	}
	wb, err := xls.OpenReader(rs, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrEmptyFile
	}
	header := sheet.Row(0)
	if header == nil {
		return nil, ErrEmptyFile
	}

	headers := make([]string, 0, header.LastCol())
	for c := 0; c < header.LastCol(); c++ {
		headers = append(headers, header.Col(c))
	}
	var rows [][]string
	for i := 1; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, 0, len(headers))
		for c := 0; c < len(headers) && c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return buildTable(headers, rows, func(_, _ int, v string) any { return v }), nil
}

// buildTable keys each row by header text. Cells beyond the header count are
// skipped; missing trailing cells are left out of the record.
func buildTable(headers []string, rows [][]string, value func(row, col int, raw string) any) *Table {
	t := &Table{Headers: headers, Rows: make([]Record, 0, len(rows))}
	for i, row := range rows {
		rec := make(Record, len(headers))
		for c, h := range headers {
			if c >= len(row) {
				break
			}
			rec[h] = value(i, c, row[c])
		}
		t.Rows = append(t.Rows, rec)
	}
	return t
}
