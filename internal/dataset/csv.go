package dataset

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"
)

// loadCSV reads the file fully into memory and sniffs a type per column from
// the values observed in it. No CSV parsing library exists anywhere in the
// reference pool for this concern, so this is the one legitimate use of the
// standard library's encoding/csv rather than a third-party dependency.
func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, err
	}

	var raw [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		raw = append(raw, rec)
	}

	colTypes := sniffColumnTypes(header, raw)

	rows := make([]Row, 0, len(raw))
	for _, rec := range raw {
		row := make(Row, len(header))
		for i, col := range header {
			var cell string
			if i < len(rec) {
				cell = rec[i]
			}
			row[col] = convertCell(cell, colTypes[i])
		}
		rows = append(rows, row)
	}

	return &Table{Columns: header, Rows: rows}, nil
}

// cellType is the sniffed type for a CSV column.
type cellType string

const (
	cellInteger   cellType = "integer"
	cellFloat     cellType = "float"
	cellBoolean   cellType = "boolean"
	cellTimestamp cellType = "timestamp"
	cellString    cellType = "string"
)

// sniffColumnTypes infers a single type per column from every observed
// non-empty value. Any value that doesn't fit the narrowest common type
// falls back to string — the same "widen on conflict" rule a human skimming
// the file would apply.
func sniffColumnTypes(header []string, rows [][]string) []cellType {
	types := make([]cellType, len(header))
	seen := make([]bool, len(header))
	for i := range types {
		types[i] = cellInteger
	}

	widen := func(cur cellType, v string) cellType {
		if v == "" {
			return cur
		}
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			return cur
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			if cur == cellInteger {
				return cellFloat
			}
			if cur == cellFloat {
				return cur
			}
		}
		if _, err := strconv.ParseBool(v); err == nil && (cur == cellInteger || cur == cellBoolean) {
			return cellBoolean
		}
		if _, err := time.Parse(time.RFC3339, v); err == nil && (cur == cellInteger || cur == cellTimestamp) {
			return cellTimestamp
		}
		return cellString
	}

	for _, rec := range rows {
		for i := range header {
			if i >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[i])
			if v == "" {
				continue
			}
			seen[i] = true
			if types[i] != cellString {
				types[i] = widen(types[i], v)
			}
		}
	}
	for i, s := range seen {
		if !s {
			types[i] = cellString
		}
	}
	return types
}

func convertCell(v string, t cellType) any {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	switch t {
	case cellInteger:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return v
		}
		return n
	case cellFloat:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return v
		}
		return n
	case cellBoolean:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return v
		}
		return b
	case cellTimestamp:
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return v
		}
		return ts
	default:
		return v
	}
}
