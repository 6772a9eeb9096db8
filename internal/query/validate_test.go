package query

import (
	"fmt"
	"testing"
)

func TestValidate_AllowsSelect(t *testing.T) {
	cases := []string{
		"SELECT * FROM data",
		"select amount from data where amount > 10",
		"WITH totals AS (SELECT amount FROM data) SELECT * FROM totals",
	}
	for _, sql := range cases {
		if err := Validate(sql); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", sql, err)
		}
	}
}

func TestValidate_RejectsNonSelect(t *testing.T) {
	cases := []string{
		"DROP TABLE data",
		"DELETE FROM data",
		"INSERT INTO data VALUES (1)",
		"UPDATE data SET amount = 0",
		"PRAGMA table_info(data)",
	}
	for _, sql := range cases {
		if err := Validate(sql); err == nil {
			t.Errorf("Validate(%q) = nil, want error", sql)
		}
	}
}

func TestValidate_RejectsOtherTables(t *testing.T) {
	if err := Validate("SELECT * FROM sqlite_master"); err == nil {
		t.Errorf("expected rejection of sqlite_master reference")
	}
}

func TestValidate_RejectsMultipleStatements(t *testing.T) {
	if err := Validate("SELECT * FROM data; DROP TABLE data"); err == nil {
		t.Errorf("expected rejection of multi-statement query")
	}
}

func TestValidate_AllowsTrailingSemicolon(t *testing.T) {
	if err := Validate("SELECT * FROM data;"); err != nil {
		t.Errorf("Validate trailing semicolon = %v, want nil", err)
	}
}

func TestValidate_IgnoresKeywordsInsideStringLiterals(t *testing.T) {
	if err := Validate("SELECT * FROM data WHERE name = 'DROP TABLE'"); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_RejectsEmpty(t *testing.T) {
	if err := Validate("   "); err == nil {
		t.Errorf("expected rejection of empty query")
	}
}

// TestValidate_RejectsEveryForbiddenKeyword covers the SQL-guard property
// that every keyword in forbiddenKeywords is rejected, no matter where it
// appears in an otherwise well-formed statement.
func TestValidate_RejectsEveryForbiddenKeyword(t *testing.T) {
	for kw := range forbiddenKeywords {
		sql := fmt.Sprintf("SELECT * FROM data WHERE %s = 1", kw)
		if err := Validate(sql); err == nil {
			t.Errorf("Validate(%q) = nil, want rejection of keyword %q", sql, kw)
		}
	}
}
