package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	pkgerrors "github.com/angelmondragon/listdist/pkg/errors"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Format identifies the tabular encoding of an upload.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// AcceptedExtensions lists the file extensions Parse understands.
var AcceptedExtensions = []string{".csv", ".xlsx", ".xls"}

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// legacy workbooks are decoded with this charset.
const xlsCharset = "utf-8"

// DetectFormat resolves the format from the file's declared extension.
func DetectFormat(fileName string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(fileName)))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext), "please upload a CSV, XLSX, or XLS file").
			WithDetails(map[string]any{"extension": ext, "accepted": AcceptedExtensions})
	}
}

// Parse decodes payload according to the extension of fileName. The first
// non-blank record is the header; blank records are skipped.
func Parse(fileName string, payload []byte) (Table, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return Table{}, err
	}

	var records [][]string
	switch format {
	case FormatCSV:
		records, err = readCSV(payload)
	case FormatXLSX:
		records, err = readXLSX(payload)
	case FormatXLS:
		records, err = readXLS(payload)
	}
	if err != nil {
		return Table{}, pkgerrors.Wrap(pkgerrors.CodeValidation, fmt.Errorf("%w: %v", ErrParse, err), "failed to parse file, please check the file format").
			WithDetails(map[string]any{"format": format})
	}

	table := buildTable(records)
	table.Format = format
	return table, nil
}

func readCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func readXLSX(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows from xlsx: %w", err)
	}
	return rows, nil
}

func readXLS(payload []byte) (records [][]string, err error) {
	// the legacy decoder panics on some truncated streams
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("decode xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(payload), xlsCharset)
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		records = append(records, cells)
	}
	return records, nil
}

func buildTable(records [][]string) Table {
	var table Table
	for _, record := range records {
		if isBlank(record) {
			continue
		}
		if table.Header == nil {
			table.Header = make([]string, len(record))
			for i, cell := range record {
				table.Header[i] = strings.TrimSpace(cell)
			}
			continue
		}
		values := make([]string, len(record))
		for i, cell := range record {
			values[i] = strings.TrimSpace(cell)
		}
		table.Rows = append(table.Rows, NewRow(table.Header, values))
	}
	return table
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
