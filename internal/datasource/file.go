package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// FileReader reads feedback rows from local CSV or XLSX files. The first row
// is the header; short rows are padded so every record carries every column.
type FileReader struct{}

// NewFileReader returns a Reader over the local filesystem.
func NewFileReader() *FileReader {
	return &FileReader{}
}

func (f *FileReader) Read(ctx context.Context, locator string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(locator)) {
	case ".csv":
		return f.readCSV(locator)
	case ".xlsx", ".xlsm":
		return f.readXLSX(locator)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(locator))
	}
}

func (f *FileReader) readCSV(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return toRecords(rows, path)
}

func (f *FileReader) readXLSX(path string) ([]Record, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil {
			logx.Warn().Err(cerr).Str("path", path).Msg("failed to close workbook")
		}
	}()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return toRecords(rows, path)
}

func toRecords(rows [][]string, path string) ([]Record, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return records, nil
}
