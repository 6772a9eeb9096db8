package dataset

import (
	"io"
	"os"

	"github.com/segmentio/parquet-go"
)

// loadParquet reads a Parquet file into row-major form. parquet-go supports
// reading into a map[string]any when the row type isn't known at compile
// time, which is the case here since the column set comes from the upload.
func loadParquet(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, err
	}

	schema := pf.Schema()
	columns := make([]string, 0, len(schema.Fields()))
	for _, field := range schema.Fields() {
		columns = append(columns, field.Name())
	}

	reader := parquet.NewReader(f, schema)
	defer reader.Close()

	var rows []Row
	for {
		rec := make(map[string]any, len(columns))
		if err := reader.Read(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		row := make(Row, len(columns))
		for _, col := range columns {
			row[col] = rec[col]
		}
		rows = append(rows, row)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}
