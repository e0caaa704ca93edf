package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shisou-labs/shisou/internal/hanzi"
)

const csvFixture = `title,dynasty,author,content
"静夜思","唐","李白","床前明月光，疑是地上霜。"
"山行","唐","杜牧","远上寒山。白云生处。"
short,row
"无题","宋","无名","山水！水山？山山。"
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poetry.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadFixture(t *testing.T) *Corpus {
	t.Helper()
	c := New(hanzi.NewAlphabet())
	n, err := c.LoadCSV(writeCSV(t, csvFixture), nil, false)
	require.NoError(t, err)
	require.Equal(t, 3, n, "malformed row is skipped")
	return c
}

func TestLoadCSV(t *testing.T) {
	c := loadFixture(t)

	poem, err := c.PoemByID(0)
	require.NoError(t, err)
	assert.Equal(t, "静夜思", poem.Title)
	assert.Equal(t, "唐", poem.Dynasty)
	assert.Equal(t, "李白", poem.Author)
	require.Len(t, poem.Sentences, 2)
	assert.Equal(t, "床前明月光", c.Alphabet().Render(poem.Sentences[0]))
	assert.Equal(t, "疑是地上霜", c.Alphabet().Render(poem.Sentences[1]))
}

func TestSentenceSplitTerminators(t *testing.T) {
	c := loadFixture(t)

	poem, err := c.PoemByID(2)
	require.NoError(t, err)
	got := make([]string, 0, len(poem.Sentences))
	for _, s := range poem.Sentences {
		got = append(got, c.Alphabet().Render(s))
	}
	assert.Equal(t, []string{"山水", "水山", "山山"}, got)
}

func TestNaiveCommaSplit(t *testing.T) {
	// an ASCII comma inside a quoted field is split anyway; fields past the
	// fourth are dropped and the mangled quote survives
	fixture := "title,dynasty,author,content\n\"a\",\"b\",\"c\",\"早，发,白帝城\"\n"
	c := New(hanzi.NewAlphabet())
	n, err := c.LoadCSV(writeCSV(t, fixture), nil, false)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	poem, err := c.PoemByID(0)
	require.NoError(t, err)
	assert.Equal(t, "\"早，发", c.Alphabet().Render(poem.Content))
}

func TestPoemByIDOutOfRange(t *testing.T) {
	c := loadFixture(t)

	_, err := c.PoemByID(-1)
	assert.Error(t, err)
	_, err = c.PoemByID(c.Len())
	assert.Error(t, err)
}

func TestCoveredBy(t *testing.T) {
	c := loadFixture(t)

	tests := []struct {
		name    string
		charset string
		want    []Covered
	}{
		{
			name:    "covers the first qualifying sentence per poem",
			charset: "山水",
			want:    []Covered{{Sentence: "山水", PoemID: 2}},
		},
		{
			name:    "unknown characters cover nothing",
			charset: "龍鳳",
			want:    nil,
		},
		{
			name:    "full charset picks one sentence per poem",
			charset: "山水床前明月光",
			want: []Covered{
				{Sentence: "床前明月光", PoemID: 0},
				{Sentence: "山水", PoemID: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.CoveredBy(tt.charset))
		})
	}
}

func TestEstimateMemoryUsage(t *testing.T) {
	c := loadFixture(t)
	assert.Greater(t, c.EstimateMemoryUsage(), 0)
}

func TestLoadCSVMissingFile(t *testing.T) {
	c := New(hanzi.NewAlphabet())
	_, err := c.LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), nil, false)
	assert.Error(t, err)
}
