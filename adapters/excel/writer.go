package excel

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"autochart/domain/core"
	"autochart/domain/dataset"
)

// Export formats accepted by Export
const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
	ExportJSON = "json"
)

// ExportFormats lists every format Export can write
var ExportFormats = []string{ExportCSV, ExportXLSX, ExportJSON}

const exportSheet = "Sheet1"

// ExportContentType returns the MIME type of an export format
func ExportContentType(format string) string {
	switch strings.ToLower(format) {
	case ExportCSV:
		return "text/csv; charset=utf-8"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportJSON:
		return "application/json; charset=utf-8"
	}
	return "application/octet-stream"
}

// Export writes ds in format, keeping the dataset column order
func Export(w io.Writer, ds dataset.Dataset, format string) error {
	switch strings.ToLower(format) {
	case ExportCSV:
		return WriteCSV(w, ds)
	case ExportXLSX:
		return WriteXLSX(w, ds)
	case ExportJSON:
		return WriteJSON(w, ds)
	}
	return fmt.Errorf("%w: cannot export %q", core.ErrUnsupportedFormat, format)
}

// WriteCSV writes a dataset as CSV with a header row. Nil cells are empty.
func WriteCSV(w io.Writer, ds dataset.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns); err != nil {
		return err
	}
	record := make([]string, len(ds.Columns))
	for i := range ds.Rows {
		for j, col := range ds.Columns {
			record[j] = exportText(ds.Value(i, col))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a dataset to the first sheet of a new workbook
func WriteXLSX(w io.Writer, ds dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range ds.Rows {
		row := make([]interface{}, len(ds.Columns))
		for j, col := range ds.Columns {
			row[j] = ds.Value(i, col)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// WriteJSON writes a dataset as an indented array of objects whose keys
// follow the column order
func WriteJSON(w io.Writer, ds dataset.Dataset) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := range ds.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range ds.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(col)
			if err != nil {
				return err
			}
			value, err := json.Marshal(ds.Value(i, col))
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", i+1, col, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

func exportText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
