package cond

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/shisou-labs/shisou/internal/hanzi"
)

// Kind tags a condition node.
type Kind int

const (
	KindChar      Kind = iota // exact character
	KindWildcard              // any character
	KindStrokes               // stroke count equality
	KindFreq                  // frequency rank equality
	KindStructure             // structure tag group / subgroup
	KindPinyin                // pinyin pattern
	KindChaizi                // component decomposition query
	KindComb                  // conjunction over one character
	KindOption                // disjunction over one character
	KindList                  // ordered sequence over a sentence
	KindUnordered             // multiset sequence over a sentence
	KindMulti                 // repetition over a sequence
	KindAnd                   // logical AND over whole-sentence patterns
	KindOr                    // logical OR over whole-sentence patterns
)

// InfLength is the upper bound used for unbounded repetition.
const InfLength = 1<<28 - 1

// Cond is a condition AST node, a tagged variant rather than an interface
// hierarchy so matcher compilation dispatches on the tag alone.
type Cond struct {
	Kind Kind

	Code     hanzi.Code // KindChar
	Rune     rune       // KindChar, for display
	Number   int        // KindStrokes, KindFreq
	Group    byte       // KindStructure
	Subgroup int        // KindStructure, 0 = whole group
	Pattern  string     // KindPinyin

	Components []hanzi.Code // KindChaizi
	Runes      []rune       // KindChaizi, for display

	Children []*Cond

	Lo, Hi int // KindMulti repetition bounds

	L, R int // byte span in the query string

	// Cache is filled by Init for character-level nodes: bit c is set iff
	// the predicate holds for the character interned at code c.
	Cache *bitset.BitSet

	pinyinRE *regexp.Regexp
}

// CharLevel reports whether the node constrains exactly one character.
func (c *Cond) CharLevel() bool {
	switch c.Kind {
	case KindChar, KindWildcard, KindStrokes, KindFreq, KindStructure,
		KindPinyin, KindChaizi, KindComb, KindOption:
		return true
	}
	return false
}

func (c *Cond) String() string {
	switch c.Kind {
	case KindChar:
		return "'" + string(c.Rune) + "'"
	case KindWildcard:
		return "Any"
	case KindStrokes:
		return fmt.Sprintf("Stroke=%d", c.Number)
	case KindFreq:
		return fmt.Sprintf("Freq=%d", c.Number)
	case KindStructure:
		if c.Subgroup > 0 {
			return fmt.Sprintf("Struct=%c%d", c.Group, c.Subgroup)
		}
		return fmt.Sprintf("Struct=%c", c.Group)
	case KindPinyin:
		return "Pinyin=" + c.Pattern
	case KindChaizi:
		return "Chaizi='" + string(c.Runes) + "'"
	case KindComb:
		return "Comb: [ " + c.childrenString() + " ]"
	case KindOption:
		return "Option: { " + c.childrenString() + " }"
	case KindList:
		return "List: ( " + c.childrenString() + " )"
	case KindUnordered:
		return "Unordered: < " + c.childrenString() + " >"
	case KindMulti:
		return "Multi: ( " + c.childrenString() + " )"
	case KindAnd:
		return "And: ( " + c.childrenString() + " )"
	case KindOr:
		return "Or: ( " + c.childrenString() + " )"
	}
	return "Cond"
}

func (c *Cond) childrenString() string {
	parts := make([]string, len(c.Children))
	for i, child := range c.Children {
		parts[i] = child.String()
	}
	return strings.Join(parts, " ")
}
