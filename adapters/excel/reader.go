package excel

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"encoding/csv"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"autochart/adapters/coercer"
	"autochart/domain/core"
	"autochart/domain/dataset"
	"autochart/internal"
)

// DataReader decodes spreadsheet, delimited text, JSON and parquet sources into datasets
type DataReader struct {
	config ReaderConfig
	logger *internal.Logger
}

// NewDataReader creates a reader with the given limits
func NewDataReader(config ReaderConfig) *DataReader {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &DataReader{config: config, logger: internal.DefaultLogger}
}

// Format returns the lower-case extension of a file name if it is supported.
// A trailing compression extension is ignored.
func Format(fileName string) (string, error) {
	format, _, err := DetectType(fileName)
	return format, err
}

// DetectType splits a file name into its source format and compression
// ("" when uncompressed), e.g. "orders.csv.gz" gives csv and gzip.
func DetectType(fileName string) (format, compression string, err error) {
	name := strings.ToLower(fileName)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	switch ext {
	case "gz", "gzip":
		compression = CompressionGzip
	case "bz2", "bzip2":
		compression = CompressionBzip2
	}
	if compression != "" {
		name = strings.TrimSuffix(name, "."+ext)
		ext = strings.TrimPrefix(filepath.Ext(name), ".")
	}

	for _, f := range SupportedFormats {
		if ext == f {
			return ext, compression, nil
		}
	}
	return "", "", fmt.Errorf("%w: %q (supported: %s)", core.ErrUnsupportedFormat, ext, strings.Join(SupportedFormats, ", "))
}

// ReadFile reads a source from disk
func (r *DataReader) ReadFile(ctx context.Context, path string) (dataset.Ingested, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataset.Ingested{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return r.Read(ctx, f, filepath.Base(path))
}

// Read decodes src according to the extension of fileName
func (r *DataReader) Read(ctx context.Context, src io.Reader, fileName string) (dataset.Ingested, error) {
	format, compression, err := DetectType(fileName)
	if err != nil {
		return dataset.Ingested{}, err
	}

	raw, err := r.readAll(src)
	if err != nil {
		return dataset.Ingested{}, err
	}
	content := raw
	if compression != "" && len(raw) > 0 {
		if content, err = r.decompress(compression, raw); err != nil {
			return dataset.Ingested{}, err
		}
	}
	if len(content) == 0 {
		return dataset.Ingested{}, fmt.Errorf("%w: %s is empty", core.ErrNoData, fileName)
	}
	if err := ctx.Err(); err != nil {
		return dataset.Ingested{}, err
	}

	start := time.Now()
	var table rawTable
	switch format {
	case FormatXLSX:
		table, err = readExcel(content)
	case FormatCSV:
		table, err = readDelimited(content, sniffDelimiter(content))
	case FormatTSV:
		table, err = readDelimited(content, '\t')
	case FormatJSON:
		table, err = readJSON(content)
	case FormatNDJSON, FormatJSONL:
		table, err = readNDJSON(content)
	case FormatParquet:
		table, err = readParquet(content)
	}
	if err != nil {
		return dataset.Ingested{}, err
	}

	ds, err := buildDataset(table)
	if err != nil {
		return dataset.Ingested{}, err
	}
	r.logger.Info("[DataReader] %s parsed in %.2fms (%d columns, %d rows)",
		fileName, float64(time.Since(start).Nanoseconds())/1e6, len(ds.Columns), ds.Len())

	return dataset.Ingested{
		Dataset: ds,
		Metadata: dataset.UploadMetadata{
			FileName:      fileName,
			FileExtension: format,
			UploadedAt:    r.config.Now(),
			FileSize:      int64(len(raw)),
			RowCount:      ds.Len(),
			ColumnCount:   len(ds.Columns),
			Checksum:      core.NewHash(raw).String(),
		},
	}, nil
}

// decompress inflates raw; the size limit applies to the inflated bytes too
func (r *DataReader) decompress(compression string, raw []byte) ([]byte, error) {
	var src io.Reader
	switch compression {
	case CompressionGzip:
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid gzip stream: %v", core.ErrUnsupportedFormat, err)
		}
		defer gz.Close()
		src = gz
	case CompressionBzip2:
		src = bzip2.NewReader(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("%w: compression %q", core.ErrUnsupportedFormat, compression)
	}

	content, err := r.readAll(src)
	if err != nil {
		if stderrors.Is(err, core.ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to decompress: %v", core.ErrUnsupportedFormat, err)
	}
	return content, nil
}

func (r *DataReader) readAll(src io.Reader) ([]byte, error) {
	if r.config.MaxBytes <= 0 {
		return io.ReadAll(src)
	}
	content, err := io.ReadAll(io.LimitReader(src, r.config.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	if int64(len(content)) > r.config.MaxBytes {
		return nil, fmt.Errorf("%w: limit is %d MB", core.ErrFileTooLarge, r.config.MaxBytes/(1024*1024))
	}
	return content, nil
}

// readExcel reads the first sheet as formatted cell text
func readExcel(content []byte) (rawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return rawTable{}, fmt.Errorf("%w: failed to open Excel file: %v", core.ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return rawTable{}, fmt.Errorf("%w: workbook has no sheets", core.ErrNoData)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return rawTable{}, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return tableFromRows(rows)
}

func readDelimited(content []byte, delimiter rune) (rawTable, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return rawTable{}, fmt.Errorf("failed to read delimited file: %w", err)
	}
	return tableFromRows(rows)
}

// sniffDelimiter picks the most frequent candidate separator of the first line
func sniffDelimiter(content []byte) rune {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func tableFromRows(rows [][]string) (rawTable, error) {
	if len(rows) == 0 {
		return rawTable{}, core.ErrNoData
	}
	return rawTable{headers: rows[0], rows: rows[1:]}, nil
}

// readJSON accepts an array of objects, an array of arrays with a header row,
// or an object whose first array-valued field holds the rows
func readJSON(content []byte) (rawTable, error) {
	content = bytes.TrimSpace(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf")))
	if len(content) > 0 && content[0] == '{' {
		nested, err := firstNestedArray(content)
		if err != nil {
			return rawTable{}, err
		}
		content = nested
	}

	var items []json.RawMessage
	if err := json.Unmarshal(content, &items); err != nil {
		return rawTable{}, fmt.Errorf("%w: invalid JSON: %v", core.ErrUnsupportedFormat, err)
	}
	return tableFromItems(items)
}

// readNDJSON reads one JSON value per line; blank lines are skipped
func readNDJSON(content []byte) (rawTable, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	var items []json.RawMessage
	for n, line := range bytes.Split(content, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			return rawTable{}, fmt.Errorf("%w: invalid JSON on line %d", core.ErrUnsupportedFormat, n+1)
		}
		items = append(items, line)
	}
	return tableFromItems(items)
}

// tableFromItems accepts rows that are all objects, keyed by the first
// object's keys, or all arrays with a leading header row
func tableFromItems(items []json.RawMessage) (rawTable, error) {
	if len(items) == 0 {
		return rawTable{}, core.ErrNoData
	}

	first := bytes.TrimSpace(items[0])
	switch {
	case len(first) > 0 && first[0] == '[':
		rows := make([][]string, 0, len(items))
		for _, item := range items {
			var cells []interface{}
			if err := decodeNumbers(item, &cells); err != nil {
				return rawTable{}, fmt.Errorf("%w: rows must all be arrays", core.ErrUnsupportedFormat)
			}
			row := make([]string, len(cells))
			for i, c := range cells {
				row[i] = cellText(c)
			}
			rows = append(rows, row)
		}
		return tableFromRows(rows)

	case len(first) > 0 && first[0] == '{':
		headers, err := objectKeys(first)
		if err != nil {
			return rawTable{}, fmt.Errorf("%w: invalid JSON: %v", core.ErrUnsupportedFormat, err)
		}
		table := rawTable{headers: headers, rows: make([][]string, 0, len(items))}
		for _, item := range items {
			var obj map[string]interface{}
			if err := decodeNumbers(item, &obj); err != nil {
				return rawTable{}, fmt.Errorf("%w: rows must all be objects", core.ErrUnsupportedFormat)
			}
			row := make([]string, len(headers))
			for i, h := range headers {
				row[i] = cellText(obj[h])
			}
			table.rows = append(table.rows, row)
		}
		return table, nil
	}
	return rawTable{}, fmt.Errorf("%w: JSON rows must be objects or arrays", core.ErrNoData)
}

// firstNestedArray returns the first array-valued field of a JSON object
func firstNestedArray(content []byte) ([]byte, error) {
	keys, err := objectKeys(content)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", core.ErrUnsupportedFormat, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", core.ErrUnsupportedFormat, err)
	}
	for _, k := range keys {
		raw := bytes.TrimSpace(fields[k])
		if len(raw) > 0 && raw[0] == '[' {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: JSON file does not contain a recognizable array of data", core.ErrNoData)
}

func decodeNumbers(raw json.RawMessage, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// objectKeys returns the keys of a JSON object in document order
func objectKeys(content []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key")
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// cellText reduces a decoded JSON value to the text a spreadsheet cell would show
func cellText(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(encoded)
	}
}

// buildDataset names headers, drops blank rows and converts numeric text
func buildDataset(table rawTable) (dataset.Dataset, error) {
	headers := normalizeHeaders(table.headers)
	if len(headers) == 0 {
		return dataset.Dataset{}, core.ErrNoHeaders
	}

	rows := make([]dataset.Record, 0, len(table.rows))
	for _, cells := range table.rows {
		if isBlank(cells) {
			continue
		}
		record := make(dataset.Record, len(headers))
		for i, h := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			record[h] = IngestValue(cell)
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return dataset.Dataset{}, fmt.Errorf("%w: no valid data rows found", core.ErrNoData)
	}
	return dataset.New(headers, rows), nil
}

// normalizeHeaders trims header text, names blank headers Column_N and
// suffixes duplicates so every column name is unique
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Column_%d", i+1)
		}
		if seen[name] > 0 {
			base := name
			for n := seen[base] + 1; ; n++ {
				candidate := fmt.Sprintf("%s_%d", base, n)
				if seen[candidate] == 0 {
					seen[base] = n
					name = candidate
					break
				}
			}
		}
		seen[name]++
		headers[i] = name
	}
	return headers
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// IngestValue trims a cell and converts numeric text to float64. Text with a
// leading zero stays text unless it is "0" itself or has a decimal point, so
// identifiers such as zip codes keep their digits.
func IngestValue(cell string) interface{} {
	value := strings.TrimSpace(cell)
	if value == "" {
		return ""
	}
	f, ok := coercer.ParseDecimal(value)
	if !ok {
		return value
	}
	digits := strings.TrimPrefix(value, "-")
	if !strings.HasPrefix(digits, "0") || digits == "0" || strings.Contains(digits, ".") {
		return f
	}
	return value
}
