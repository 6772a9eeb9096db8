package query

import (
	"context"
	"testing"
	"time"

	"github.com/opencode-ai/opencode/internal/dataset"
)

func sampleTable() *dataset.Table {
	return &dataset.Table{
		Columns: []string{"name", "amount"},
		Rows: []dataset.Row{
			{"name": "a", "amount": int64(10)},
			{"name": "b", "amount": int64(20)},
			{"name": "c", "amount": nil},
		},
	}
}

func TestEngine_ExecuteBasicSelect(t *testing.T) {
	e, err := New(sampleTable())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	result, err := e.Execute(context.Background(), "SELECT * FROM data ORDER BY name", 0, 5*time.Second)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Rows))
	}
	if result.Rows[2]["amount"] != nil {
		t.Errorf("expected null amount for row c, got %v", result.Rows[2]["amount"])
	}
}

func TestEngine_RespectsRowCap(t *testing.T) {
	e, err := New(sampleTable())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	result, err := e.Execute(context.Background(), "SELECT * FROM data", 1, 5*time.Second)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Rows) != 1 {
		t.Errorf("expected 1 row, got %d", len(result.Rows))
	}
}

func TestEngine_RejectsInvalidQuery(t *testing.T) {
	e, err := New(sampleTable())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	if _, err := e.Execute(context.Background(), "DROP TABLE data", 0, time.Second); err == nil {
		t.Errorf("expected rejection of DROP statement")
	}
}

func TestEngine_TimesOut(t *testing.T) {
	e, err := New(sampleTable())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Execute(ctx, "SELECT * FROM data", 0, time.Second); err == nil {
		t.Errorf("expected error from cancelled context")
	}
}
