// Package dataset loads an uploaded CSV or Parquet file into a set of
// in-memory rows and computes the structural profile the context builder
// turns into a system prompt.
package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Row is one record, column name to typed Go value.
type Row map[string]any

// Table is a loaded dataset: an ordered column list plus its rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// Format identifies a supported dataset file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// DetectFormat infers the format from a filename extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("dataset: unsupported file extension %q", filepath.Ext(filename))
	}
}

// Load reads the dataset file at path using the given format.
func Load(path string, format Format) (*Table, error) {
	switch format {
	case FormatCSV:
		return loadCSV(path)
	case FormatParquet:
		return loadParquet(path)
	default:
		return nil, fmt.Errorf("dataset: unsupported format %q", format)
	}
}
