package excel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"autochart/domain/core"
)

const parquetBatchSize = 256

// readParquet flattens every row group of a parquet file. Leaf column paths
// become dotted headers; repeated values are joined with commas.
func readParquet(content []byte) (rawTable, error) {
	f, err := parquet.OpenFile(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return rawTable{}, fmt.Errorf("%w: failed to open parquet file: %v", core.ErrUnsupportedFormat, err)
	}

	columns := f.Schema().Columns()
	if len(columns) == 0 {
		return rawTable{}, core.ErrNoHeaders
	}
	headers := make([]string, len(columns))
	for i, path := range columns {
		headers[i] = strings.Join(path, ".")
	}

	table := rawTable{headers: headers}
	buf := make([]parquet.Row, parquetBatchSize)
	for _, rowGroup := range f.RowGroups() {
		if err := readRowGroup(rowGroup, buf, len(headers), &table); err != nil {
			return rawTable{}, err
		}
	}
	return table, nil
}

func readRowGroup(rowGroup parquet.RowGroup, buf []parquet.Row, width int, table *rawTable) error {
	rows := rowGroup.Rows()
	defer rows.Close()

	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			table.rows = append(table.rows, parquetCells(row, width))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read parquet rows: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
}

func parquetCells(row parquet.Row, width int) []string {
	cells := make([]string, width)
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= width || v.IsNull() {
			continue
		}
		text := parquetText(v)
		if cells[col] != "" {
			text = cells[col] + "," + text
		}
		cells[col] = text
	}
	return cells
}

// parquetText renders a leaf value as cell text, matching the JSON reader
func parquetText(v parquet.Value) string {
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'f', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
