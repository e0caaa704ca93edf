// Package formatter renders query results for the terminal.
package formatter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/shisou-labs/shisou/internal/corpus"
	"github.com/shisou-labs/shisou/search"
)

var (
	titleStyle    = color.New(color.FgCyan, color.Bold)
	metaStyle     = color.New(color.FgHiBlack)
	matchStyle    = color.New(color.FgGreen, color.Bold)
	sentenceStyle = color.New(color.FgWhite)
	countStyle    = color.New(color.FgYellow, color.Bold)
	errorStyle    = color.New(color.FgRed, color.Bold)
)

// FormatResults renders every matched poem with its matching sentences
// highlighted.
func FormatResults(results []search.Result, c *corpus.Corpus) string {
	var sb strings.Builder
	sb.WriteString(countStyle.Sprintf("%d poems matched\n\n", len(results)))

	for _, result := range results {
		poem, err := c.PoemByID(result.PoemID)
		if err != nil {
			sb.WriteString(errorStyle.Sprintf("poem %d: %v\n", result.PoemID, err))
			continue
		}
		sb.WriteString(formatPoem(poem, result.Positions, c))
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatPoem(poem *corpus.Poem, positions []int, c *corpus.Corpus) string {
	matched := make(map[int]bool, len(positions))
	for _, p := range positions {
		matched[p] = true
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Sprint(poem.Title))
	sb.WriteString(metaStyle.Sprintf("  [%d] %s · %s\n", poem.ID, poem.Dynasty, poem.Author))

	alphabet := c.Alphabet()
	for i, sentence := range poem.Sentences {
		text := alphabet.Render(sentence)
		if matched[i] {
			sb.WriteString("  " + matchStyle.Sprint("» "+text) + "\n")
		} else {
			sb.WriteString("  " + sentenceStyle.Sprint("  "+text) + "\n")
		}
	}
	return sb.String()
}

// FormatCovered renders the covered-charset scan output.
func FormatCovered(items []corpus.Covered) string {
	var sb strings.Builder
	sb.WriteString(countStyle.Sprintf("%d sentences covered\n", len(items)))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("  %s  ", matchStyle.Sprint(item.Sentence)))
		sb.WriteString(metaStyle.Sprintf("(poem %d)\n", item.PoemID))
	}
	return sb.String()
}

// FormatStats renders the engine statistics.
func FormatStats(stats search.Stats) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Sprint("engine statistics\n"))
	sb.WriteString(fmt.Sprintf("  poems:          %d\n", stats.Poems))
	sb.WriteString(fmt.Sprintf("  hanzi records:  %d\n", stats.HanziRecords))
	sb.WriteString(fmt.Sprintf("  alphabet size:  %d\n", stats.AlphabetSize))
	sb.WriteString(fmt.Sprintf("  est. memory:    %.1f MiB\n", float64(stats.MemoryBytes)/(1<<20)))
	return sb.String()
}
