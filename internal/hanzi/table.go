package hanzi

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Record is the knowledge entry for one character.
type Record struct {
	Char        rune
	Traditional string
	Strokes     int
	Pinyin      []string
	Radical     string
	Frequency   int
	Structure   string
	Chaizi      []string
}

// rawRecord mirrors one object of the knowledge JSON array.
type rawRecord struct {
	Index       int      `json:"index"`
	Char        string   `json:"char"`
	Strokes     int      `json:"strokes"`
	Radicals    string   `json:"radicals"`
	Frequency   int      `json:"frequency"`
	Pinyin      []string `json:"pinyin"`
	Traditional string   `json:"traditional"`
	Chaizi      []string `json:"chaizi"`
	Structure   string   `json:"structure"`
}

// Table is the per-code knowledge table. Record i describes the character
// interned at code i; codes allocated later (corpus characters without a
// knowledge entry) have no record.
type Table struct {
	alphabet *Alphabet
	records  []Record
}

func NewTable() *Table {
	return &Table{alphabet: NewAlphabet()}
}

func (t *Table) Alphabet() *Alphabet { return t.alphabet }

// Record returns the knowledge entry for code, or nil if the code has none.
func (t *Table) Record(c Code) *Record {
	if int(c) >= len(t.records) {
		return nil
	}
	return &t.records[c]
}

// Len is the number of knowledge records.
func (t *Table) Len() int { return len(t.records) }

// Load reads the knowledge JSON array and populates the table, binding each
// record's character to the code equal to its array position. Records without
// a character are skipped and counted. Load must run before any corpus load
// so that knowledge characters occupy the low codes.
func (t *Table) Load(path string, logger *zap.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read hanzi table: %w", err)
	}

	var raws []rawRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		return 0, fmt.Errorf("parse hanzi table %s: %w", path, err)
	}

	skipped := 0
	for _, raw := range raws {
		cp, _ := utf8.DecodeRuneInString(raw.Char)
		if raw.Char == "" || cp == utf8.RuneError {
			skipped++
			continue
		}
		structure := raw.Structure
		if structure == "" {
			structure = "U0"
		}
		code := Code(len(t.records))
		t.alphabet.bind(cp, code)
		t.records = append(t.records, Record{
			Char:        cp,
			Traditional: raw.Traditional,
			Strokes:     raw.Strokes,
			Pinyin:      raw.Pinyin,
			Radical:     raw.Radicals,
			Frequency:   raw.Frequency,
			Structure:   structure,
			Chaizi:      raw.Chaizi,
		})
	}

	if logger != nil {
		logger.Info("loaded hanzi table",
			zap.String("path", path),
			zap.Int("records", len(t.records)),
			zap.Int("skipped", skipped))
	}
	return len(t.records), nil
}
