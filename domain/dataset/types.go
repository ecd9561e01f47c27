package dataset

import (
	"sort"
	"time"
)

// Record maps a column name to its raw cell value. Cell values are nil,
// string, bool, time.Time or a Go numeric type.
type Record map[string]interface{}

// Dataset is an immutable snapshot of tabular data. Column order is fixed
// when the dataset is created and every row is read through it; keys a row
// does not carry read as nil.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Record `json:"rows"`
}

// New creates a dataset with an explicit column order
func New(columns []string, rows []Record) Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	if rows == nil {
		rows = []Record{}
	}
	return Dataset{Columns: cols, Rows: rows}
}

// FromRecords creates a dataset whose columns come from the first record.
// Go maps carry no key order, so the keys are sorted to keep the order stable.
func FromRecords(rows []Record) Dataset {
	if len(rows) == 0 {
		return New(nil, nil)
	}
	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return New(cols, rows)
}

// Len returns the number of rows
func (d Dataset) Len() int {
	return len(d.Rows)
}

// IsEmpty reports whether the dataset has no rows
func (d Dataset) IsEmpty() bool {
	return len(d.Rows) == 0
}

// HasColumn reports whether name is one of the dataset columns
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Value returns the raw value at row i for column, or nil when absent
func (d Dataset) Value(i int, column string) interface{} {
	if i < 0 || i >= len(d.Rows) || d.Rows[i] == nil {
		return nil
	}
	return d.Rows[i][column]
}

// Column extracts every value of a column in row order
func (d Dataset) Column(name string) []interface{} {
	values := make([]interface{}, len(d.Rows))
	for i, row := range d.Rows {
		if row != nil {
			values[i] = row[name]
		}
	}
	return values
}

// Head returns up to n leading rows
func (d Dataset) Head(n int) []Record {
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	if n < 0 {
		n = 0
	}
	return d.Rows[:n]
}

// WithRows returns a dataset with the same columns and different rows
func (d Dataset) WithRows(rows []Record) Dataset {
	return New(d.Columns, rows)
}

// UploadMetadata describes a source file that produced a dataset
type UploadMetadata struct {
	FileName      string    `json:"file_name" db:"file_name"`
	FileExtension string    `json:"file_extension" db:"file_extension"`
	UploadedAt    time.Time `json:"uploaded_at" db:"uploaded_at"`
	FileSize      int64     `json:"file_size" db:"file_size"`
	RowCount      int       `json:"row_count" db:"row_count"`
	ColumnCount   int       `json:"column_count" db:"column_count"`
	Checksum      string    `json:"checksum" db:"checksum"`
}

// Ingested is a decoded source file: its rows and the metadata describing it
type Ingested struct {
	Dataset  Dataset        `json:"dataset"`
	Metadata UploadMetadata `json:"metadata"`
}
