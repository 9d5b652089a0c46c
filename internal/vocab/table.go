// Package vocab loads and validates vocabulary tables used to build quizzes.
package vocab

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

var requiredColumns = []string{"chinese", "pinyin", "english", "example_sentence", "pos", "semantic_type"}

// Entry is one vocabulary row.
type Entry struct {
	Chinese         string `json:"chinese"`
	Pinyin          string `json:"pinyin"`
	English         string `json:"english"`
	ExampleSentence string `json:"example_sentence"`
	POS             string `json:"pos"`
	SemanticType    string `json:"semantic_type"`
}

// Table is a validated, immutable set of vocabulary entries.
type Table struct {
	entries []Entry
}

// MissingColumnsError reports which required columns a file lacks.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("invalid vocabulary file: missing required columns: %s", strings.Join(e.Columns, ", "))
}

// NewTable builds a table from already-structured entries, dropping rows
// without both a Chinese and an English value.
func NewTable(entries []Entry) *Table {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Chinese) == "" || strings.TrimSpace(e.English) == "" {
			continue
		}
		kept = append(kept, e)
	}

	return &Table{entries: kept}
}

// ReadTable parses a CSV vocabulary file. The header must contain every
// required column; extra columns are ignored.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var entries []Entry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		field := func(name string) string {
			return strings.TrimSpace(record[cols[name]])
		}

		entries = append(entries, Entry{
			Chinese:         field("chinese"),
			Pinyin:          field("pinyin"),
			English:         field("english"),
			ExampleSentence: field("example_sentence"),
			POS:             field("pos"),
			SemanticType:    field("semantic_type"),
		})
	}

	return NewTable(entries), nil
}

func (t *Table) Len() int { return len(t.entries) }

// Entries returns the table rows. Callers must not mutate the result.
func (t *Table) Entries() []Entry { return t.entries }
