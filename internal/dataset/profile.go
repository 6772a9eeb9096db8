package dataset

import (
	"fmt"
	"sort"
	"time"

	"github.com/opencode-ai/opencode/pkg/types"
)

const sampleSize = 5

// Profile computes the structural summary of a loaded table: row count, and
// per-column type/null-ratio/sample values. Computed once per session and
// cached on the session record (types.DatasetFile.Profile) — never
// recomputed mid-conversation, so the context the LLM sees is stable turn to
// turn.
func Profile(t *Table) types.Profile {
	profile := types.Profile{
		RowCount: len(t.Rows),
		Columns:  make([]types.ColumnProfile, 0, len(t.Columns)),
	}

	for _, col := range t.Columns {
		profile.Columns = append(profile.Columns, profileColumn(col, t.Rows))
	}
	return profile
}

func profileColumn(col string, rows []Row) types.ColumnProfile {
	var nullCount int
	typeCounts := map[string]int{}
	var samples []string

	for _, row := range rows {
		v, ok := row[col]
		if !ok || v == nil {
			nullCount++
			continue
		}
		typeCounts[goTypeName(v)]++
		if len(samples) < sampleSize {
			samples = append(samples, formatSample(v))
		}
	}

	total := len(rows)
	ratio := 0.0
	if total > 0 {
		ratio = float64(nullCount) / float64(total)
	}

	return types.ColumnProfile{
		Name:         col,
		Type:         dominantType(typeCounts),
		NullRatio:    ratio,
		NullBucket:   nullBucket(ratio),
		SampleValues: samples,
	}
}

func goTypeName(v any) string {
	switch v.(type) {
	case int64, int:
		return "integer"
	case float64:
		return "float"
	case bool:
		return "boolean"
	case time.Time:
		return "timestamp"
	default:
		return "string"
	}
}

func dominantType(counts map[string]int) string {
	if len(counts) == 0 {
		return "string"
	}
	type kv struct {
		k string
		v int
	}
	var kvs []kv
	for k, v := range counts {
		kvs = append(kvs, kv{k, v})
	}
	sort.Slice(kvs, func(i, j int) bool { return kvs[i].v > kvs[j].v })
	return kvs[0].k
}

func nullBucket(ratio float64) string {
	switch {
	case ratio == 0:
		return "none"
	case ratio < 0.05:
		return "low"
	case ratio < 0.25:
		return "some"
	default:
		return "high"
	}
}

func formatSample(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}
