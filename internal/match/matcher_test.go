package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shisou-labs/shisou/internal/cond"
	"github.com/shisou-labs/shisou/internal/hanzi"
)

// fixture knowledge table; stroke and pinyin values are test data
const hanziFixture = `[
  {"index": 1,  "char": "木", "strokes": 4,  "radicals": "木", "frequency": 400, "pinyin": ["mu4"],   "structure": "D0"},
  {"index": 2,  "char": "林", "strokes": 8,  "radicals": "木", "frequency": 300, "pinyin": ["lin2"],  "structure": "A1", "chaizi": ["木木"]},
  {"index": 3,  "char": "森", "strokes": 12, "radicals": "木", "frequency": 1000,"pinyin": ["sen1"],  "structure": "B1", "chaizi": ["木木木", "木林"]},
  {"index": 4,  "char": "山", "strokes": 3,  "radicals": "山", "frequency": 200, "pinyin": ["shan1"], "structure": "D0"},
  {"index": 5,  "char": "水", "strokes": 4,  "radicals": "水", "frequency": 150, "pinyin": ["shui3"], "structure": "D0"},
  {"index": 6,  "char": "好", "strokes": 6,  "radicals": "女", "frequency": 100, "pinyin": ["hao3"],  "structure": "A1", "chaizi": ["女子"]},
  {"index": 7,  "char": "日", "strokes": 5,  "radicals": "日", "frequency": 50,  "pinyin": ["ri4"],   "structure": "D0"},
  {"index": 8,  "char": "月", "strokes": 6,  "radicals": "月", "frequency": 60,  "pinyin": ["yue4"],  "structure": "D0"},
  {"index": 9,  "char": "是", "strokes": 9,  "radicals": "日", "frequency": 10,  "pinyin": ["shi4"],  "structure": "A2"}
]`

func testTable(t *testing.T) *hanzi.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hanzi.json")
	require.NoError(t, os.WriteFile(path, []byte(hanziFixture), 0o644))
	table := hanzi.NewTable()
	_, err := table.Load(path, nil)
	require.NoError(t, err)
	return table
}

func mustCompile(t *testing.T, table *hanzi.Table, expr string) *Matcher {
	t.Helper()
	c, err := cond.Parse(expr, table)
	require.NoError(t, err, "parse %q", expr)
	m, err := Compile(c, table)
	require.NoError(t, err, "compile %q", expr)
	return m
}

func sentences(table *hanzi.Table, texts ...string) []hanzi.Text {
	out := make([]hanzi.Text, len(texts))
	for i, s := range texts {
		out[i] = table.Alphabet().NewText(s, false)
	}
	return out
}

func TestCompileStrategies(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		expr string
		want Strategy
	}{
		{"4", StrategySingle},
		{"[4,8]", StrategySingle},
		{"[[4,mu]]", StrategySingle},
		{"木水", StrategyStatic},
		{"*(4)*", StrategyRegex},
		{"<山水>", StrategyBipartite},
		{"4&8", StrategyAnd},
		{"4|8", StrategyOr},
		{"(<山水>)**", StrategyDynamic},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			m := mustCompile(t, table, tt.expr)
			assert.Equal(t, tt.want, m.Strategy)
		})
	}
}

func TestCompileBounds(t *testing.T) {
	table := testTable(t)

	m := mustCompile(t, table, "木水")
	assert.Equal(t, 2, m.Lower)
	assert.Equal(t, 2, m.Upper)

	m = mustCompile(t, table, "*(4)*")
	assert.Equal(t, 2, m.Lower)
	assert.Equal(t, InfLength, m.Upper)

	m = mustCompile(t, table, "<山水>")
	assert.Equal(t, 2, m.Lower)
	assert.Equal(t, 2, m.Upper)
}

func TestCompileErrors(t *testing.T) {
	table := testTable(t)

	// an unordered member must be a single-character matcher
	c, err := cond.Parse("<(4)*>", table)
	require.NoError(t, err)
	_, err = Compile(c, table)
	require.Error(t, err)
	var cerr *CompileError
	assert.ErrorAs(t, err, &cerr)
}

func TestStrokeLiteral(t *testing.T) {
	table := testTable(t)
	m := mustCompile(t, table, "4")

	got := m.BatchMatch(sentences(table, "木", "林", "水", "木林"))
	assert.Equal(t, []int{0, 2}, got, "single matcher accepts one-character sentences only")
}

func TestStaticSequence(t *testing.T) {
	table := testTable(t)
	m := mustCompile(t, table, "木水")

	got := m.BatchMatch(sentences(table, "木水", "水木", "木", "木水山"))
	assert.Equal(t, []int{0}, got, "static matcher requires the exact length and order")
}

func TestUnordered(t *testing.T) {
	table := testTable(t)
	m := mustCompile(t, table, "<山水>")

	got := m.BatchMatch(sentences(table, "山水", "水山", "山山", "山水月", "山"))
	assert.Equal(t, []int{0, 1}, got)
}

func TestBipartiteRejectsShortAndLong(t *testing.T) {
	table := testTable(t)
	m := mustCompile(t, table, "<山水月>")

	got := m.BatchMatch(sentences(table, "山水", "月水山", "山水月日"))
	assert.Equal(t, []int{1}, got, "three members accept exactly three characters")
}

func TestKleene(t *testing.T) {
	table := testTable(t)
	m := mustCompile(t, table, "*(4)*")

	got := m.BatchMatch(sentences(table, "日木月", "日月日", "日木木月", "日月"))
	assert.Equal(t, []int{0, 2, 3}, got,
		"wildcard, any run of four-stroke characters, wildcard")
}

func TestLogic(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		expr  string
		texts []string
		want  []int
	}{
		{"4|3", []string{"木", "山", "月"}, []int{0, 1}},
		{"木*&*水", []string{"木水", "木山", "山水", "木"}, []int{0}},
		{"木*|*水", []string{"木山", "山水", "山月"}, []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			m := mustCompile(t, table, tt.expr)
			assert.Equal(t, tt.want, m.BatchMatch(sentences(table, tt.texts...)))
		})
	}
}

func TestOptionWithChaizi(t *testing.T) {
	table := testTable(t)
	m := mustCompile(t, table, "[木,木,木|山]")

	got := m.BatchMatch(sentences(table, "森", "山", "好", "木", "林"))
	assert.Equal(t, []int{0, 1}, got,
		"either a character decomposing into three 木 or the character 山")
}

// forceDynamic strips regex support from the whole tree so a variable-length
// sequence falls back to the backtracking strategy.
func forceDynamic(m *Matcher) {
	m.regexOK = false
	if m.Strategy == StrategyRegex {
		m.Strategy = StrategyDynamic
	}
	for _, sub := range m.Subs {
		forceDynamic(sub)
	}
}

func TestRegexDynamicEquivalence(t *testing.T) {
	table := testTable(t)

	exprs := []string{"*(4)*", "(4)*", "木(水)*月", "*(木水)*", "木(4|8)水", "(4|木水)*日"}
	texts := []string{
		"木", "木水", "木水月", "木水水月", "日木月", "日月日",
		"木木木", "木水木水", "山", "", "木林水", "木水日", "木水木日", "水日",
	}

	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			viaRegex := mustCompile(t, table, expr)
			viaDynamic := mustCompile(t, table, expr)
			forceDynamic(viaDynamic)

			assert.Equal(t,
				viaRegex.BatchMatch(sentences(table, texts...)),
				viaDynamic.BatchMatch(sentences(table, texts...)),
			)
		})
	}
}

func TestMatchEmptySlice(t *testing.T) {
	table := testTable(t)

	m := mustCompile(t, table, "4")
	assert.False(t, m.Match(hanzi.Text{}, 0, 0))

	// the repetition element of a compiled sequence accepts the empty slice
	seq := mustCompile(t, table, "*(4)*")
	multi := seq.Subs[1]
	require.Equal(t, StrategyMulti, multi.Strategy)
	assert.True(t, multi.Match(hanzi.Text{}, 0, 0))
}

func TestTreeString(t *testing.T) {
	table := testTable(t)
	m := mustCompile(t, table, "*(4)*")

	tree := m.TreeString(0)
	assert.Contains(t, tree, "SeqMatcher[Regex]")
	assert.Contains(t, tree, "MultiMatcher")
	assert.Contains(t, tree, "SingleMatcher(Any)")
	assert.Contains(t, tree, "Stroke=4")
}

func TestBatchMatchPositionsAscend(t *testing.T) {
	table := testTable(t)
	m := mustCompile(t, table, "4")

	got := m.BatchMatch(sentences(table, "木", "山", "水", "木"))
	assert.Equal(t, []int{0, 2, 3}, got)
}
