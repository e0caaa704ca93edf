package cond

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, input string) []Token {
	t.Helper()
	tokens, err := NewLexer(input).Tokenize()
	require.NoError(t, err)
	return tokens
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		types []TokenType
		texts []string
	}{
		{
			name:  "base predicates",
			input: "*$12@A2 8 hao3",
			types: []TokenType{TokenAsterisk, TokenDollar, TokenNumber, TokenAt, TokenLetters, TokenNumber, TokenLetters},
			texts: []string{"*", "$", "12", "@", "A2", "8", "hao3"},
		},
		{
			name:  "pinyin run absorbs wildcard and tone digits",
			input: "h?o g?ng1",
			types: []TokenType{TokenLetters, TokenLetters},
			texts: []string{"h?o", "g?ng1"},
		},
		{
			name:  "leading question mark starts a letter run",
			input: "?ao",
			types: []TokenType{TokenLetters},
			texts: []string{"?ao"},
		},
		{
			name:  "characters and punctuation",
			input: "[木,木|山]<山水>(4)*",
			types: []TokenType{
				TokenLBracket, TokenChar, TokenComma, TokenChar, TokenOr, TokenChar, TokenRBracket,
				TokenLt, TokenChar, TokenChar, TokenGt,
				TokenLParen, TokenNumber, TokenRParen, TokenAsterisk,
			},
			texts: []string{"[", "木", ",", "木", "|", "山", "]", "<", "山", "水", ">", "(", "4", ")", "*"},
		},
		{
			name:  "whitespace is skipped",
			input: " 木\t水\n4 ",
			types: []TokenType{TokenChar, TokenChar, TokenNumber},
			texts: []string{"木", "水", "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tokenize(t, tt.input)
			require.Len(t, tokens, len(tt.types))
			for i, tok := range tokens {
				assert.Equal(t, tt.types[i], tok.Type, "token %d", i)
				assert.Equal(t, tt.texts[i], tok.Value, "token %d", i)
			}
		})
	}
}

func TestTokenSpans(t *testing.T) {
	tokens := tokenize(t, "山12")
	require.Len(t, tokens, 2)
	assert.Equal(t, 0, tokens[0].L)
	assert.Equal(t, 3, tokens[0].R, "character spans its utf-8 bytes")
	assert.Equal(t, 3, tokens[1].L)
	assert.Equal(t, 5, tokens[1].R)
}

func TestBracketPairing(t *testing.T) {
	tokens := tokenize(t, "[4,[8,9]]<山>(木)")
	// [ 4 , [ 8 , 9 ] ] < 山 > ( 木 )
	assert.Equal(t, 8, tokens[0].Next, "outer [ points at its ]")
	assert.Equal(t, 7, tokens[3].Next, "inner [ points at its ]")
	assert.Equal(t, 11, tokens[9].Next, "< points at >")
	assert.Equal(t, 14, tokens[12].Next, "( points at )")
	assert.Equal(t, 2, tokens[1].Next, "plain token points at the next token")
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"illegal ascii byte", "4%5"},
		{"unmatched opening bracket", "[4"},
		{"unmatched closing bracket", "4]"},
		{"crossed brackets", "[<]>"},
		{"unmatched paren", "((4)"},
		{"invalid utf8", "山" + string([]byte{0xC3})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.input).Tokenize()
			require.Error(t, err)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}
