package match

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shisou-labs/shisou/internal/hanzi"
)

// neverMatch is a character class with an empty set, used for a member whose
// bitset covers none of the sentence's characters.
const neverMatch = `[^\x00-\x{10FFFF}]`

// regexMatch evaluates a variable-length subtree by renting a general regex
// runtime: the slice's distinct codes are reassigned to fresh literal runes,
// the subtree is rendered to a pattern over that alphabet, and the normalized
// string is matched in full.
func (m *Matcher) regexMatch(s hanzi.Text, start, end int) bool {
	translate := make(map[hanzi.Code]rune)
	var sb strings.Builder
	for i := start; i < end; i++ {
		code := s[i]
		r, ok := translate[code]
		if !ok {
			r = classRune(len(translate))
			translate[code] = r
		}
		sb.WriteRune(r)
	}

	pattern, err := m.render(translate)
	if err != nil {
		m.recordErr(err)
		return false
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		m.recordErr(&EvalError{Strategy: m.Strategy.String(), Msg: "bad rendered pattern: " + err.Error()})
		return false
	}
	return re.MatchString(sb.String())
}

// classRune picks the i-th rune of the reassigned alphabet. All choices are
// literal in a regex character class.
func classRune(i int) rune {
	switch {
	case i < 26:
		return rune('A' + i)
	case i < 52:
		return rune('a' + i - 26)
	default:
		return rune(0x4E00 + i - 52)
	}
}

// render lowers the subtree to a conventional regex over the reassigned
// alphabet. Bipartite and And subtrees are not expressible and error out;
// compilation routes such trees away from the regex strategy.
func (m *Matcher) render(translate map[hanzi.Code]rune) (string, error) {
	switch m.Strategy {
	case StrategySingle:
		var members []rune
		for code, r := range translate {
			if m.Cache.Test(uint(code)) {
				members = append(members, r)
			}
		}
		if len(members) == 0 {
			return neverMatch, nil
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		return "[" + string(members) + "]", nil

	case StrategyStatic, StrategyDynamic, StrategyRegex:
		var sb strings.Builder
		for _, sub := range m.Subs {
			part, err := sub.render(translate)
			if err != nil {
				return "", err
			}
			sb.WriteString("(?:" + part + ")")
		}
		return sb.String(), nil

	case StrategyMulti:
		part, err := m.Subs[0].render(translate)
		if err != nil {
			return "", err
		}
		return "(?:" + part + ")" + quantifier(m.RepeatLo, m.RepeatHi), nil

	case StrategyOr:
		parts := make([]string, 0, len(m.Subs))
		for _, sub := range m.Subs {
			part, err := sub.render(translate)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return "(?:" + strings.Join(parts, "|") + ")", nil
	}

	return "", &EvalError{Strategy: m.Strategy.String(), Msg: "not expressible as a regular expression"}
}

func quantifier(lo, hi int) string {
	switch {
	case lo == 0 && hi >= InfLength:
		return "*"
	case lo == 1 && hi >= InfLength:
		return "+"
	case hi >= InfLength:
		return fmt.Sprintf("{%d,}", lo)
	case lo == hi:
		return fmt.Sprintf("{%d}", lo)
	default:
		return fmt.Sprintf("{%d,%d}", lo, hi)
	}
}
