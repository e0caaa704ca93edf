// Package corpus holds the poetry collection: CSV ingest, sentence splitting
// and id-based lookup. Poems are immutable after load and shared read-only by
// the query workers.
package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/shisou-labs/shisou/internal/hanzi"
)

// Poem is one corpus entry. Sentences are the content split at terminal
// punctuation, with empty sentences dropped.
type Poem struct {
	ID        int
	Title     string
	Dynasty   string
	Author    string
	Content   hanzi.Text
	Sentences []hanzi.Text
}

// Covered pairs a sentence with the poem it came from.
type Covered struct {
	Sentence string
	PoemID   int
}

// Corpus is the loaded poem collection, interning characters into the shared
// alphabet as they are first seen.
type Corpus struct {
	alphabet *hanzi.Alphabet
	poems    []Poem
}

func New(alphabet *hanzi.Alphabet) *Corpus {
	return &Corpus{alphabet: alphabet}
}

// LoadCSV ingests a poetry CSV file: one header line, then
// title,dynasty,author,content rows with optional surrounding double quotes.
// Commas inside quoted fields are not respected: the row is split naively on
// every comma and fields past the fourth are dropped. Rows with fewer than
// four fields are skipped and counted.
func (c *Corpus) LoadCSV(path string, logger *zap.Logger, progress bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open poetry csv: %w", err)
	}
	defer f.Close()

	var bar *progressbar.ProgressBar
	if progress {
		if info, err := f.Stat(); err == nil {
			bar = progressbar.DefaultBytes(info.Size(), "loading poems")
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	loaded, skipped := 0, 0
	header := true
	for scanner.Scan() {
		line := scanner.Text()
		if bar != nil {
			_ = bar.Add(len(line) + 1)
		}
		if header {
			header = false
			continue
		}
		if line == "" {
			continue
		}

		title, dynasty, author, content, ok := parseLine(line)
		if !ok {
			skipped++
			continue
		}
		c.insert(title, dynasty, author, content)
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return loaded, fmt.Errorf("read poetry csv %s: %w", path, err)
	}

	if logger != nil {
		logger.Info("loaded poetry corpus",
			zap.String("path", path),
			zap.Int("poems", loaded),
			zap.Int("skipped", skipped))
	}
	return loaded, nil
}

func (c *Corpus) insert(title, dynasty, author, content string) {
	text := c.alphabet.NewText(content, true)
	c.poems = append(c.poems, Poem{
		ID:        len(c.poems),
		Title:     title,
		Dynasty:   dynasty,
		Author:    author,
		Content:   text,
		Sentences: c.splitSentences(text),
	})
}

func parseLine(line string) (title, dynasty, author, content string, ok bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 4 {
		return "", "", "", "", false
	}
	return trimQuotes(fields[0]), trimQuotes(fields[1]), trimQuotes(fields[2]), trimQuotes(fields[3]), true
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// isTerminator reports whether the code renders to a terminal punctuation
// codepoint: U+FF0C, U+3002, U+FF01 or U+FF1F.
func (c *Corpus) isTerminator(code hanzi.Code) bool {
	switch c.alphabet.Rune(code) {
	case '，', '。', '！', '？':
		return true
	}
	return false
}

func (c *Corpus) splitSentences(content hanzi.Text) []hanzi.Text {
	var out []hanzi.Text
	var current hanzi.Text
	for _, code := range content {
		if c.isTerminator(code) {
			if len(current) > 0 {
				out = append(out, current)
				current = nil
			}
			continue
		}
		current = append(current, code)
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

// Alphabet returns the shared interner.
func (c *Corpus) Alphabet() *hanzi.Alphabet { return c.alphabet }

// Poems exposes the whole collection, read-only by convention.
func (c *Corpus) Poems() []Poem { return c.poems }

// Len is the number of loaded poems.
func (c *Corpus) Len() int { return len(c.poems) }

// PoemByID returns the poem with the given id.
func (c *Corpus) PoemByID(id int) (*Poem, error) {
	if id < 0 || id >= len(c.poems) {
		return nil, fmt.Errorf("poem id %d out of range [0,%d)", id, len(c.poems))
	}
	return &c.poems[id], nil
}

// CoveredBy returns, for each poem that has one, the first sentence whose
// characters all belong to the given set. Characters of the set that were
// never interned cannot cover anything and are ignored.
func (c *Corpus) CoveredBy(charset string) []Covered {
	allowed := make(map[hanzi.Code]struct{})
	for _, code := range c.alphabet.NewText(charset, false) {
		if code != hanzi.Illegal {
			allowed[code] = struct{}{}
		}
	}

	var out []Covered
	for i := range c.poems {
		poem := &c.poems[i]
		for _, sentence := range poem.Sentences {
			ok := true
			for _, code := range sentence {
				if _, in := allowed[code]; !in {
					ok = false
					break
				}
			}
			if ok {
				out = append(out, Covered{Sentence: c.alphabet.Render(sentence), PoemID: poem.ID})
				break
			}
		}
	}
	return out
}

// EstimateMemoryUsage approximates the resident size of the corpus in bytes.
func (c *Corpus) EstimateMemoryUsage() int {
	total := 0
	for i := range c.poems {
		poem := &c.poems[i]
		total += len(poem.Title) + len(poem.Dynasty) + len(poem.Author)
		total += poem.Content.EstimateMemoryUsage()
		for _, s := range poem.Sentences {
			total += s.EstimateMemoryUsage()
		}
	}
	return total
}
