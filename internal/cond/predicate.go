package cond

import (
	"regexp"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/shisou-labs/shisou/internal/hanzi"
)

// Init precomputes, for every character-level node of the tree, the bitset of
// alphabet codes whose character satisfies the predicate. Predicate
// evaluation at match time is then a single bit test. Sentence-level nodes
// only recurse. Init is idempotent.
func (c *Cond) Init(table *hanzi.Table) error {
	for _, child := range c.Children {
		if err := child.Init(table); err != nil {
			return err
		}
	}

	if c.Kind == KindPinyin && c.pinyinRE == nil {
		re, err := compilePinyin(c.Pattern, c.L, c.R)
		if err != nil {
			return err
		}
		c.pinyinRE = re
	}

	if !c.CharLevel() || c.Cache != nil {
		return nil
	}

	size := uint(table.Alphabet().Size())
	switch c.Kind {
	case KindComb:
		if len(c.Children) == 0 {
			cache := bitset.New(size)
			for i := uint(0); i < size; i++ {
				cache.Set(i)
			}
			c.Cache = cache
			break
		}
		cache := c.Children[0].Cache.Clone()
		for _, child := range c.Children[1:] {
			cache.InPlaceIntersection(child.Cache)
		}
		c.Cache = cache

	case KindOption:
		cache := bitset.New(size)
		for _, child := range c.Children {
			cache.InPlaceUnion(child.Cache)
		}
		c.Cache = cache

	default:
		cache := bitset.New(size)
		for i := uint(0); i < size; i++ {
			code := hanzi.Code(i)
			if c.evalChar(code, table.Record(code), table) {
				cache.Set(i)
			}
		}
		c.Cache = cache
	}
	return nil
}

// evalChar evaluates the abstract predicate directly against one character.
// Init uses it to fill caches; the caches must agree with it bit for bit.
func (c *Cond) evalChar(code hanzi.Code, rec *hanzi.Record, table *hanzi.Table) bool {
	switch c.Kind {
	case KindWildcard:
		return true
	case KindChar:
		return code == c.Code
	case KindChaizi:
		return chaiziMatches(code, rec, c.Components, table.Alphabet())
	case KindComb:
		for _, child := range c.Children {
			if !child.evalChar(code, rec, table) {
				return false
			}
		}
		return true
	case KindOption:
		for _, child := range c.Children {
			if child.evalChar(code, rec, table) {
				return true
			}
		}
		return false
	}

	if rec == nil {
		return false
	}
	switch c.Kind {
	case KindStrokes:
		return rec.Strokes == c.Number
	case KindFreq:
		return rec.Frequency == c.Number
	case KindStructure:
		s := rec.Structure
		if len(s) == 0 || s[0] != c.Group {
			return false
		}
		if c.Subgroup == 0 {
			return true
		}
		return len(s) >= 2 && s[1] == byte('0'+c.Subgroup)
	case KindPinyin:
		for _, py := range rec.Pinyin {
			if c.pinyinRE.MatchString(py) {
				return true
			}
		}
	}
	return false
}

// compilePinyin lowers a pinyin pattern to a regular expression: '?' matches
// any run of letters, 'g' matches ASCII g or U+0261, and an optional tone
// digit is admitted unless the pattern already ends in one.
func compilePinyin(pattern string, l, r int) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString(`^(?:`)
	var last rune
	for _, ch := range pattern {
		switch ch {
		case '?':
			sb.WriteString(`[a-zɡ]*`)
		case 'g':
			sb.WriteString(`[gɡ]`)
		default:
			sb.WriteRune(ch)
		}
		last = ch
	}
	if last < '0' || last > '9' {
		sb.WriteString(`[0-4]?`)
	}
	sb.WriteString(`)$`)

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, parseErr("invalid pinyin pattern "+pattern, l, r)
	}
	return re, nil
}

// chaiziMatches reports whether the character at code decomposes into the
// target component sequence, or is itself the single target component.
func chaiziMatches(code hanzi.Code, rec *hanzi.Record, target []hanzi.Code, alphabet *hanzi.Alphabet) bool {
	if len(target) == 1 && target[0] == code {
		return true
	}
	if rec == nil {
		return false
	}
	for _, decomp := range rec.Chaizi {
		if containsComponents(alphabet.NewText(decomp, false), target) {
			return true
		}
	}
	return false
}

// containsComponents checks the target against one decomposition: each target
// code scans the decomposition from the start, except that a code equal to
// the immediately preceding target code resumes just past the previously
// matched position. A run of n equal codes therefore needs n distinct
// occurrences, while a re-visited code after a different one may re-find an
// earlier occurrence.
func containsComponents(comp hanzi.Text, target []hanzi.Code) bool {
	prev := hanzi.Illegal
	from := 0
	for _, t := range target {
		if t == hanzi.Illegal {
			return false
		}
		start := 0
		if t == prev {
			start = from
		}
		found := -1
		for i := start; i < len(comp); i++ {
			if comp[i] == t {
				found = i
				break
			}
		}
		if found < 0 {
			return false
		}
		prev, from = t, found+1
	}
	return true
}
