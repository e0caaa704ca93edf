// Package match lowers condition trees to matcher trees and evaluates them
// against sentences. Each matcher carries a matching strategy picked from the
// node class and the length profile of its children, so evaluation dispatches
// on a tag with no reflection in the hot path.
package match

import (
	"strings"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/shisou-labs/shisou/internal/cond"
	"github.com/shisou-labs/shisou/internal/hanzi"
)

// Strategy selects how a matcher accepts a slice of a sentence.
type Strategy int

const (
	StrategySingle    Strategy = iota // one character against a bitset
	StrategyMulti                     // repetition of one sub-matcher
	StrategyStatic                    // fixed-length left-to-right sequence
	StrategyDynamic                   // variable-length backtracking sequence
	StrategyRegex                     // variable-length sequence via regexp
	StrategyBipartite                 // unordered multiset via maximum matching
	StrategyAnd                       // all sub-matchers over the whole slice
	StrategyOr                        // any sub-matcher over the whole slice
)

var strategyNames = map[Strategy]string{
	StrategySingle:    "SingleMatcher",
	StrategyMulti:     "MultiMatcher",
	StrategyStatic:    "SeqMatcher[Static]",
	StrategyDynamic:   "SeqMatcher[Dynamic]",
	StrategyRegex:     "SeqMatcher[Regex]",
	StrategyBipartite: "BipartiteMatcher",
	StrategyAnd:       "And",
	StrategyOr:        "Or",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "Unknown"
}

// InfLength caps every length upper bound.
const InfLength = cond.InfLength

// Matcher is a compiled condition subtree. It is immutable after compilation
// and safe for concurrent use by the batch executor.
type Matcher struct {
	Strategy     Strategy
	Lower, Upper int // bounds on the matched slice length

	Cache *bitset.BitSet // StrategySingle only
	Subs  []*Matcher

	// repetition counts for StrategyMulti, used by the regex renderer
	RepeatLo, RepeatHi int

	// Origin points back at the condition node this matcher was compiled
	// from, for diagnostics only.
	Origin *cond.Cond

	regexOK bool

	mu      sync.Mutex
	evalErr error
}

// Compile initializes the condition tree's predicate caches and lowers it to
// a matcher tree.
func Compile(c *cond.Cond, table *hanzi.Table) (*Matcher, error) {
	if err := c.Init(table); err != nil {
		return nil, err
	}
	return compile(c)
}

func compile(c *cond.Cond) (*Matcher, error) {
	if c.CharLevel() {
		return &Matcher{
			Strategy: StrategySingle,
			Lower:    1, Upper: 1,
			Cache:   c.Cache,
			Origin:  c,
			regexOK: true,
		}, nil
	}

	subs := make([]*Matcher, 0, len(c.Children))
	for _, child := range c.Children {
		m, err := compile(child)
		if err != nil {
			return nil, err
		}
		subs = append(subs, m)
	}

	switch c.Kind {
	case cond.KindList:
		return newSequence(subs, c)
	case cond.KindUnordered:
		return newBipartite(subs, c)
	case cond.KindMulti:
		return newRepeat(subs, c)
	case cond.KindAnd:
		return newLogic(StrategyAnd, subs, c)
	case cond.KindOr:
		return newLogic(StrategyOr, subs, c)
	}
	return nil, &CompileError{Msg: "cannot compile condition " + c.String()}
}

func newSequence(subs []*Matcher, origin *cond.Cond) (*Matcher, error) {
	if len(subs) == 0 {
		return nil, &CompileError{Msg: "sequence matcher needs at least one sub-matcher"}
	}
	lower, upper := 0, 0
	for _, sub := range subs {
		lower = capAdd(lower, sub.Lower)
		upper = capAdd(upper, sub.Upper)
	}
	m := &Matcher{
		Strategy: StrategyStatic,
		Lower:    lower, Upper: upper,
		Subs:   subs,
		Origin: origin,
	}
	m.regexOK = allRegexOK(subs)
	if lower != upper {
		m.Strategy = StrategyDynamic
		if m.regexOK {
			m.Strategy = StrategyRegex
		}
	}
	return m, nil
}

func newBipartite(subs []*Matcher, origin *cond.Cond) (*Matcher, error) {
	if len(subs) == 0 {
		return nil, &CompileError{Msg: "bipartite matcher needs at least one sub-matcher"}
	}
	for _, sub := range subs {
		if sub.Strategy != StrategySingle {
			return nil, &CompileError{Msg: "bipartite matcher accepts only single-character members"}
		}
	}
	return &Matcher{
		Strategy: StrategyBipartite,
		Lower:    len(subs), Upper: len(subs),
		Subs:   subs,
		Origin: origin,
	}, nil
}

func newRepeat(subs []*Matcher, origin *cond.Cond) (*Matcher, error) {
	if len(subs) != 1 {
		return nil, &CompileError{Msg: "multi matcher needs exactly one sub-matcher"}
	}
	if origin.Lo > origin.Hi {
		return nil, &CompileError{Msg: "multi matcher lower bound exceeds upper bound"}
	}
	m := &Matcher{
		Strategy: StrategyMulti,
		Lower:    capMul(subs[0].Lower, origin.Lo),
		Upper:    capMul(subs[0].Upper, origin.Hi),
		Subs:     subs,
		RepeatLo: origin.Lo, RepeatHi: origin.Hi,
		Origin: origin,
	}
	m.regexOK = subs[0].regexOK
	return m, nil
}

func newLogic(strategy Strategy, subs []*Matcher, origin *cond.Cond) (*Matcher, error) {
	if len(subs) == 0 {
		return nil, &CompileError{Msg: "logic matcher needs at least one sub-matcher"}
	}
	m := &Matcher{
		Strategy: strategy,
		Lower:    subs[0].Lower, Upper: subs[0].Upper,
		Subs:   subs,
		Origin: origin,
	}
	for _, sub := range subs {
		m.Lower = min(m.Lower, sub.Lower)
		m.Upper = max(m.Upper, sub.Upper)
	}
	m.regexOK = strategy == StrategyOr && allRegexOK(subs)
	return m, nil
}

func allRegexOK(subs []*Matcher) bool {
	for _, sub := range subs {
		if !sub.regexOK {
			return false
		}
	}
	return true
}

func capAdd(a, b int) int {
	if s := a + b; s < InfLength {
		return s
	}
	return InfLength
}

func capMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a >= InfLength || b >= InfLength || a > InfLength/b {
		return InfLength
	}
	return a * b
}

// Match reports whether the matcher accepts the half-open slice [start,end)
// of the sentence.
func (m *Matcher) Match(s hanzi.Text, start, end int) bool {
	switch m.Strategy {
	case StrategySingle:
		return start < end && m.Cache.Test(uint(s[start]))
	case StrategyMulti:
		return m.multiMatch(s, start, end)
	case StrategyStatic:
		return m.staticMatch(s, start, end)
	case StrategyDynamic:
		return m.dynamicMatch(s, start, end)
	case StrategyRegex:
		return m.regexMatch(s, start, end)
	case StrategyBipartite:
		return m.bipartiteMatch(s, start, end)
	case StrategyAnd:
		for _, sub := range m.Subs {
			if !sub.admits(end-start) || !sub.Match(s, start, end) {
				return false
			}
		}
		return true
	case StrategyOr:
		for _, sub := range m.Subs {
			if sub.admits(end-start) && sub.Match(s, start, end) {
				return true
			}
		}
	}
	return false
}

// admits reports whether a slice of length n lies within the matcher's
// length bounds. Logic matchers gate their members with it, which realizes
// the one-character contract of a Single member.
func (m *Matcher) admits(n int) bool {
	return n >= m.Lower && n <= m.Upper
}

// BatchMatch returns the indices of the sentences the matcher accepts as a
// whole. Sentences outside the matcher's length bounds are rejected without
// evaluation; for a Single matcher this enforces the one-character contract.
func (m *Matcher) BatchMatch(sentences []hanzi.Text) []int {
	var out []int
	for i, s := range sentences {
		if len(s) < m.Lower || len(s) > m.Upper {
			continue
		}
		if m.Match(s, 0, len(s)) {
			out = append(out, i)
		}
	}
	return out
}

func (m *Matcher) staticMatch(s hanzi.Text, start, end int) bool {
	pos := start
	for _, sub := range m.Subs {
		next := pos + sub.Lower
		if next > end || !sub.Match(s, pos, next) {
			return false
		}
		pos = next
	}
	return pos == end
}

func (m *Matcher) multiMatch(s hanzi.Text, start, end int) bool {
	if m.regexOK {
		return m.regexMatch(s, start, end)
	}
	if start == end {
		return m.Lower == 0
	}
	child := m.Subs[0]
	hi := min(child.Upper, end-start)
	for l := max(child.Lower, 1); l <= hi; l++ {
		if child.Match(s, start, start+l) && m.multiMatch(s, start+l, end) {
			return true
		}
	}
	return false
}

// dynamicMatch is the fallback sequence matcher: it backtracks over every
// split of the slice consistent with the children's length bounds.
func (m *Matcher) dynamicMatch(s hanzi.Text, start, end int) bool {
	var rec func(idx, pos int) bool
	rec = func(idx, pos int) bool {
		if idx == len(m.Subs) {
			return pos == end
		}
		sub := m.Subs[idx]
		hi := min(sub.Upper, end-pos)
		for l := sub.Lower; l <= hi; l++ {
			if sub.Match(s, pos, pos+l) && rec(idx+1, pos+l) {
				return true
			}
		}
		return false
	}
	return rec(0, start)
}

func (m *Matcher) recordErr(err error) {
	m.mu.Lock()
	if m.evalErr == nil {
		m.evalErr = err
	}
	m.mu.Unlock()
}

// Err returns the first evaluation error recorded anywhere in the tree
// during matching, if any. Evaluation errors never abort a batch; a failing
// sentence simply does not match.
func (m *Matcher) Err() error {
	m.mu.Lock()
	err := m.evalErr
	m.mu.Unlock()
	if err != nil {
		return err
	}
	for _, sub := range m.Subs {
		if err := sub.Err(); err != nil {
			return err
		}
	}
	return nil
}

// TreeString renders the matcher tree for diagnostics.
func (m *Matcher) TreeString(indent int) string {
	pad := strings.Repeat(" ", indent)
	var sb strings.Builder
	sb.WriteString(pad)
	sb.WriteString(m.Strategy.String())
	if len(m.Subs) > 0 {
		sb.WriteString("(\n")
		for _, sub := range m.Subs {
			sb.WriteString(sub.TreeString(indent + 4))
			sb.WriteString("\n")
		}
		sb.WriteString(pad)
		sb.WriteString(")")
	} else if m.Origin != nil {
		sb.WriteString("(" + m.Origin.String() + ")")
	}
	return sb.String()
}
