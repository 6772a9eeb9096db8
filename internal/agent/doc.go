// Package agent provides the two fixed prompt-variant profiles used to
// drive a turn's system prompt: auto_analyze for the first turn of a
// session, follow_up for every turn after it.
//
// Both profiles enable the same closed tool set (sql_query, output_text,
// output_table, create_plot, finalize) — there is no per-agent permission
// system or tool wildcarding here, since every tool is already read-only and
// bounded. [Registry] exists only to look a profile up by name:
//
//	registry := agent.NewRegistry()
//	a, err := registry.Get(agent.AutoAnalyze)
package agent
