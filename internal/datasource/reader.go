// Package datasource reads customer-feedback rows out of spreadsheet files.
// It is an external collaborator of the orchestration core: the fetch worker
// only depends on the Reader contract and the sentinel error kinds.
package datasource

import (
	"context"
	"errors"
	"strings"
)

// Record is one spreadsheet row keyed by header name.
type Record map[string]string

var (
	// ErrNotFound signals that the source locator does not resolve to a
	// readable file (missing or not authorized).
	ErrNotFound = errors.New("data source not found")
	// ErrEmpty signals that the source exists but contains no data rows.
	ErrEmpty = errors.New("data source is empty")
	// ErrUnsupported signals an unrecognized source format.
	ErrUnsupported = errors.New("unsupported data source format")
)

// Reader reads an ordered sequence of row records from a source locator.
type Reader interface {
	Read(ctx context.Context, locator string) ([]Record, error)
}

// Well-known logical columns. The original data set uses Traditional Chinese
// headers; English equivalents are accepted as aliases.
const (
	ColumnID       = "feedback_id"
	ColumnDate     = "feedback_date"
	ColumnContent  = "feedback_content"
	ColumnCategory = "feedback_category"
	ColumnScore    = "score"
)

var columnAliases = map[string][]string{
	ColumnID:       {"回饋編號", "feedback_id", "id"},
	ColumnDate:     {"回饋日期", "feedback_date", "date"},
	ColumnContent:  {"回饋內容", "feedback_content", "content", "feedback"},
	ColumnCategory: {"回饋類別", "feedback_category", "category"},
	ColumnScore:    {"評分", "score", "rating"},
}

// Field resolves a logical column on a record through its header aliases.
// The second return reports whether any alias matched a header (even with an
// empty value).
func (r Record) Field(column string) (string, bool) {
	for _, alias := range columnAliases[column] {
		if v, ok := r[alias]; ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// HasColumn reports whether any record in rows carries the logical column.
func HasColumn(rows []Record, column string) bool {
	for _, r := range rows {
		if _, ok := r.Field(column); ok {
			return true
		}
	}
	return false
}
