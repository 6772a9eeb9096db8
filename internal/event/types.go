package event

// StatusData is the payload for status events: an advisory, suppressible
// hint of the agent loop's current phase ("Thinking…", "Running query…").
type StatusData struct {
	Message string `json:"message"`
}

// TextData is the payload for text events: a markdown answer body.
type TextData struct {
	Text string `json:"text"`
}

// TableData is the payload for table events.
type TableData struct {
	Title   string   `json:"title"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// PlotData is the payload for plot events. Spec is an opaque declarative
// chart specification; the runtime validates only that it is a JSON object
// with a recognized chart-type discriminator, never its full shape.
type PlotData struct {
	Title string         `json:"title"`
	Spec  map[string]any `json:"spec"`
}

// QueryResultData is the payload for query_result events, emitted once per
// sql_query tool call whether or not the query succeeded.
type QueryResultData struct {
	Description string           `json:"description"`
	SQL         string           `json:"sql"`
	Columns     []string         `json:"columns,omitempty"`
	Rows        []map[string]any `json:"rows,omitempty"`
	RowCount    int              `json:"row_count"`
	Truncated   bool             `json:"truncated,omitempty"`
	IsError     bool             `json:"is_error"`
	Error       string           `json:"error,omitempty"`
}

// SessionUpdateData is the payload for session_update events, emitted when
// finalize sets a session's title for the first time.
type SessionUpdateData struct {
	Title string `json:"title"`
}

// ErrorData is the payload for error events.
type ErrorData struct {
	Message string `json:"message"`
}

// DoneData is the payload for done events, emitted exactly once per turn
// regardless of outcome.
type DoneData struct {
	Aborted      bool     `json:"aborted,omitempty"`
	DataUpdated  bool     `json:"data_updated,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
	CleanlyEnded bool     `json:"cleanly_ended"`
}
