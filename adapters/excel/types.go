package excel

import "time"

// Supported source formats, by lower-case file extension
const (
	FormatXLSX    = "xlsx"
	FormatCSV     = "csv"
	FormatTSV     = "tsv"
	FormatJSON    = "json"
	FormatNDJSON  = "ndjson"
	FormatJSONL   = "jsonl"
	FormatParquet = "parquet"
)

// SupportedFormats lists the accepted file extensions
var SupportedFormats = []string{FormatXLSX, FormatCSV, FormatTSV, FormatJSON, FormatNDJSON, FormatJSONL, FormatParquet}

// Compressions accepted as a trailing extension (orders.csv.gz)
const (
	CompressionGzip  = "gzip"
	CompressionBzip2 = "bzip2"
)

// DefaultMaxBytes is the upload size ceiling
const DefaultMaxBytes int64 = 50 * 1024 * 1024

// ReaderConfig controls source decoding
type ReaderConfig struct {
	// MaxBytes rejects larger sources. Zero or negative disables the check.
	MaxBytes int64
	// Now stamps upload metadata; defaults to time.Now.
	Now func() time.Time
}

// DefaultReaderConfig returns the upload defaults
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{MaxBytes: DefaultMaxBytes, Now: time.Now}
}

// rawTable is a decoded source before header and cell normalization.
// Cells are already reduced to text.
type rawTable struct {
	headers []string
	rows    [][]string
}
