package cond

import (
	"strconv"
	"unicode/utf8"

	"github.com/shisou-labs/shisou/internal/hanzi"
)

// parser is a top-down recursive descent over the bracket-paired token
// stream, always working on a half-open token range [pos, end).
type parser struct {
	tokens []Token
	table  *hanzi.Table
}

// Parse tokenizes and parses a condition expression against the given
// knowledge table. Characters of the query that were never interned parse to
// the Illegal code and match nothing.
func Parse(query string, table *hanzi.Table) (*Cond, error) {
	tokens, err := NewLexer(query).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, table: table}
	return p.parseOr(0, len(tokens))
}

// splitTop splits [pos,end) into segments at top-level occurrences of sep,
// skipping bracketed subranges via the pre-resolved Next links.
func (p *parser) splitTop(pos, end int, sep TokenType) [][2]int {
	var segs [][2]int
	segStart := pos
	for i := pos; i < end; {
		t := p.tokens[i]
		if _, open := bracketPairs[t.Type]; open {
			i = t.Next + 1
			continue
		}
		if t.Type == sep {
			segs = append(segs, [2]int{segStart, i})
			segStart = i + 1
		}
		i++
	}
	return append(segs, [2]int{segStart, end})
}

func (p *parser) parseOr(pos, end int) (*Cond, error) {
	segs := p.splitTop(pos, end, TokenOr)
	if len(segs) == 1 {
		return p.parseAnd(pos, end)
	}
	node := &Cond{Kind: KindOr, L: p.spanL(pos), R: p.spanR(end)}
	for _, seg := range segs {
		child, err := p.parseAnd(seg[0], seg[1])
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func (p *parser) parseAnd(pos, end int) (*Cond, error) {
	segs := p.splitTop(pos, end, TokenAnd)
	if len(segs) == 1 {
		return p.parseList(pos, end)
	}
	node := &Cond{Kind: KindAnd, L: p.spanL(pos), R: p.spanR(end)}
	for _, seg := range segs {
		child, err := p.parseList(seg[0], seg[1])
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// parseList parses a sentence-level sequence of elements.
func (p *parser) parseList(pos, end int) (*Cond, error) {
	if pos >= end {
		return nil, parseErr("empty condition", p.spanL(pos), p.spanR(end))
	}
	list := &Cond{Kind: KindList, L: p.spanL(pos), R: p.spanR(end)}

	for pos < end {
		t := p.tokens[pos]
		switch t.Type {
		case TokenLBracket:
			opt, err := p.parseOption(pos+1, t.Next)
			if err != nil {
				return nil, err
			}
			opt.L, opt.R = t.L, p.tokens[t.Next].R
			list.Children = append(list.Children, opt)
			pos = t.Next + 1

		case TokenLt:
			inner, err := p.parseList(pos+1, t.Next)
			if err != nil {
				return nil, err
			}
			members := inner.Children
			if inner.Kind != KindList {
				members = []*Cond{inner}
			}
			u := &Cond{Kind: KindUnordered, Children: members, L: t.L, R: p.tokens[t.Next].R}
			list.Children = append(list.Children, u)
			pos = t.Next + 1

		case TokenLParen:
			child, err := p.parseOr(pos+1, t.Next)
			if err != nil {
				return nil, err
			}
			pos = t.Next + 1
			// a trailing '*' tags the group as repetition; the asterisk
			// itself is left in the stream and parses as the next element
			if pos < end && p.tokens[pos].Type == TokenAsterisk {
				child = &Cond{
					Kind: KindMulti, Children: []*Cond{child},
					Lo: 0, Hi: InfLength,
					L: t.L, R: p.tokens[pos].R,
				}
			}
			list.Children = append(list.Children, child)

		default:
			base, err := p.parseBase(&pos, end)
			if err != nil {
				return nil, err
			}
			list.Children = append(list.Children, base)
		}
	}

	if len(list.Children) == 1 {
		return list.Children[0], nil
	}
	return list, nil
}

// parseOption parses the body of a sentence-level [...]: a disjunction whose
// alternatives are separated by '|'. A run of characters, adjacent or comma
// separated, merges into one component query; only '|' flushes it. A nested
// [...] is a conjunction.
func (p *parser) parseOption(pos, end int) (*Cond, error) {
	opt := &Cond{Kind: KindOption}
	sep := true

	for pos < end {
		t := p.tokens[pos]
		switch t.Type {
		case TokenComma:
			pos++

		case TokenOr:
			sep = true
			pos++

		case TokenLBracket:
			comb, err := p.parseComb(pos+1, t.Next)
			if err != nil {
				return nil, err
			}
			comb.L, comb.R = t.L, p.tokens[t.Next].R
			opt.Children = append(opt.Children, comb)
			pos = t.Next + 1
			sep = false

		default:
			base, err := p.parseBase(&pos, end)
			if err != nil {
				return nil, err
			}
			if base.Kind == KindChar {
				last := lastChild(opt)
				if !sep && last != nil && last.Kind == KindChaizi {
					last.Components = append(last.Components, base.Code)
					last.Runes = append(last.Runes, base.Rune)
					last.R = base.R
				} else {
					opt.Children = append(opt.Children, chaiziFromChar(base))
				}
			} else {
				opt.Children = append(opt.Children, base)
			}
			sep = false
		}
	}
	return opt, nil
}

// parseComb parses the body of a nested [...]: a conjunction over one
// character. A comma separates conjuncts and flushes the running component
// query; adjacent characters merge into one.
func (p *parser) parseComb(pos, end int) (*Cond, error) {
	comb := &Cond{Kind: KindComb}
	flush := false

	for pos < end {
		if p.tokens[pos].Type == TokenComma {
			flush = true
			pos++
			continue
		}
		base, err := p.parseBase(&pos, end)
		if err != nil {
			return nil, err
		}
		if base.Kind == KindChar {
			last := lastChild(comb)
			if !flush && last != nil && last.Kind == KindChaizi {
				last.Components = append(last.Components, base.Code)
				last.Runes = append(last.Runes, base.Rune)
				last.R = base.R
			} else {
				comb.Children = append(comb.Children, chaiziFromChar(base))
			}
		} else {
			comb.Children = append(comb.Children, base)
		}
		flush = false
	}
	return comb, nil
}

// parseBase parses one base predicate, advancing *pos.
func (p *parser) parseBase(pos *int, end int) (*Cond, error) {
	if *pos >= end {
		return nil, parseErr("unexpected end of condition", p.spanL(*pos), p.spanR(end))
	}
	t := p.tokens[*pos]

	switch t.Type {
	case TokenAsterisk:
		*pos++
		return &Cond{Kind: KindWildcard, L: t.L, R: t.R}, nil

	case TokenDollar:
		*pos++
		if *pos >= end || p.tokens[*pos].Type != TokenNumber {
			return nil, parseErr("expected frequency number after '$'", t.L, t.R)
		}
		num := p.tokens[*pos]
		n, err := strconv.Atoi(num.Value)
		if err != nil {
			return nil, parseErr("invalid frequency number", num.L, num.R)
		}
		*pos++
		return &Cond{Kind: KindFreq, Number: n, L: t.L, R: num.R}, nil

	case TokenAt:
		*pos++
		if *pos >= end || p.tokens[*pos].Type != TokenLetters {
			return nil, parseErr("expected structure tag after '@'", t.L, t.R)
		}
		tag := p.tokens[*pos]
		node, err := structureCond(tag)
		if err != nil {
			return nil, err
		}
		*pos++
		node.L = t.L
		return node, nil

	case TokenNumber:
		n, err := strconv.Atoi(t.Value)
		if err != nil {
			return nil, parseErr("invalid stroke count", t.L, t.R)
		}
		*pos++
		return &Cond{Kind: KindStrokes, Number: n, L: t.L, R: t.R}, nil

	case TokenLetters:
		*pos++
		return &Cond{Kind: KindPinyin, Pattern: t.Value, L: t.L, R: t.R}, nil

	case TokenChar:
		r, _ := utf8.DecodeRuneInString(t.Value)
		*pos++
		return &Cond{
			Kind: KindChar,
			Code: p.table.Alphabet().Lookup(r),
			Rune: r,
			L:    t.L, R: t.R,
		}, nil
	}

	return nil, parseErr("unexpected token "+t.Type.String(), t.L, t.R)
}

func structureCond(tag Token) (*Cond, error) {
	v := tag.Value
	if len(v) == 0 || len(v) > 2 || !isASCIILetter(rune(v[0])) ||
		(len(v) == 2 && !isASCIIDigit(rune(v[1]))) {
		return nil, parseErr("invalid structure tag "+strconv.Quote(v), tag.L, tag.R)
	}
	node := &Cond{Kind: KindStructure, Group: v[0], R: tag.R}
	if len(v) == 2 {
		node.Subgroup = int(v[1] - '0')
	}
	return node, nil
}

func chaiziFromChar(base *Cond) *Cond {
	return &Cond{
		Kind:       KindChaizi,
		Components: []hanzi.Code{base.Code},
		Runes:      []rune{base.Rune},
		L:          base.L, R: base.R,
	}
}

func lastChild(c *Cond) *Cond {
	if len(c.Children) == 0 {
		return nil
	}
	return c.Children[len(c.Children)-1]
}

func (p *parser) spanL(pos int) int {
	if pos < len(p.tokens) {
		return p.tokens[pos].L
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].R
	}
	return 0
}

func (p *parser) spanR(end int) int {
	if end-1 >= 0 && end-1 < len(p.tokens) {
		return p.tokens[end-1].R
	}
	return p.spanL(end)
}
