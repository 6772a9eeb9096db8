// Package types provides the core data types for the agent runtime.
package types

// Session represents one conversation bound to exactly one dataset file.
type Session struct {
	ID          string      `json:"id"`
	OwnerUserID string      `json:"ownerUserID"`
	Title       string      `json:"title"`
	Dataset     DatasetFile `json:"dataset"`
	Time        SessionTime `json:"time"`
}

// SessionTime contains timestamps for a session.
type SessionTime struct {
	Created int64 `json:"created"`
	Updated int64 `json:"updated"`
}

// DatasetFile describes the single dataset a session is bound to.
type DatasetFile struct {
	Path     string  `json:"path"`     // on-disk location under the data directory
	Filename string  `json:"filename"` // original upload name
	Format   string  `json:"format"`   // "csv" | "parquet"
	Profile  Profile `json:"profile"`
}

// Profile is the cached structural summary of a dataset, computed once and
// reused for every turn's context (never recomputed mid-conversation).
type Profile struct {
	RowCount int              `json:"rowCount"`
	Columns  []ColumnProfile  `json:"columns"`
}

// ColumnProfile describes one column of the dataset.
type ColumnProfile struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"` // "integer" | "float" | "string" | "boolean" | "timestamp"
	NullRatio     float64  `json:"nullRatio"`
	NullBucket    string   `json:"nullBucket"` // "none" | "low" | "some" | "high"
	SampleValues  []string `json:"sampleValues"`
}
