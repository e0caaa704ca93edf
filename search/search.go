// Package search is the public facade of the poetry search engine: it owns
// the knowledge table and the corpus, and drives the parse → compile → match
// pipeline for a query expression.
package search

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/shisou-labs/shisou/internal/cond"
	"github.com/shisou-labs/shisou/internal/corpus"
	"github.com/shisou-labs/shisou/internal/hanzi"
	"github.com/shisou-labs/shisou/internal/match"
)

// Result lists the matching sentence indices of one poem, ascending. Poems
// without matches are omitted from query output.
type Result struct {
	PoemID    int
	Positions []int
}

// LoadError wraps a failure to load one of the data files.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Path, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// Engine holds the process-lifetime state: the interned alphabet, the
// knowledge table and the corpus. Load methods run single-threaded before
// the first query; afterwards all shared state is read-only.
type Engine struct {
	table    *hanzi.Table
	corpus   *corpus.Corpus
	logger   *zap.Logger
	workers  int
	progress bool
}

type Option func(*Engine)

// WithLogger attaches a zap logger; nil disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithWorkers fixes the parallel executor's worker count; n < 1 means one
// worker per CPU.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.workers = n
		}
	}
}

// WithProgress shows progress bars during corpus loading and batch matching.
func WithProgress(on bool) Option {
	return func(e *Engine) { e.progress = on }
}

func New(opts ...Option) *Engine {
	table := hanzi.NewTable()
	e := &Engine{
		table:   table,
		corpus:  corpus.New(table.Alphabet()),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Table() *hanzi.Table    { return e.table }
func (e *Engine) Corpus() *corpus.Corpus { return e.corpus }

// LoadHanzi loads the knowledge JSON. It must run before LoadPoetry so the
// knowledge characters occupy the low codes.
func (e *Engine) LoadHanzi(path string) (int, error) {
	n, err := e.table.Load(path, e.logger)
	if err != nil {
		return n, &LoadError{Path: path, Err: err}
	}
	return n, nil
}

// LoadPoetry ingests the poetry CSV, lazily extending the alphabet.
func (e *Engine) LoadPoetry(path string) (int, error) {
	n, err := e.corpus.LoadCSV(path, e.logger, e.progress)
	if err != nil {
		return n, &LoadError{Path: path, Err: err}
	}
	return n, nil
}

// Parse builds the condition tree for an expression.
func (e *Engine) Parse(expr string) (*cond.Cond, error) {
	return cond.Parse(expr, e.table)
}

// Compile parses an expression and lowers it to a matcher.
func (e *Engine) Compile(expr string) (*match.Matcher, error) {
	c, err := e.Parse(expr)
	if err != nil {
		return nil, err
	}
	return match.Compile(c, e.table)
}

// Query runs an expression over the whole corpus with the parallel executor.
func (e *Engine) Query(expr string) ([]Result, error) {
	m, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}
	results := e.Run(m)
	e.reportEvalErr(expr, m)
	return results, nil
}

// QuerySequential is the single-threaded reference execution of Query.
func (e *Engine) QuerySequential(expr string) ([]Result, error) {
	m, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}
	results := e.RunSequential(m)
	e.reportEvalErr(expr, m)
	return results, nil
}

func (e *Engine) reportEvalErr(expr string, m *match.Matcher) {
	if err := m.Err(); err != nil && e.logger != nil {
		e.logger.Warn("query evaluation degraded",
			zap.String("query", expr),
			zap.Error(err))
	}
}

// RunSequential scans every poem in order on the calling goroutine.
func (e *Engine) RunSequential(m *match.Matcher) []Result {
	var results []Result
	for _, poem := range e.corpus.Poems() {
		if positions := m.BatchMatch(poem.Sentences); len(positions) > 0 {
			results = append(results, Result{PoemID: poem.ID, Positions: positions})
		}
	}
	return results
}

// Run fans poem evaluation out over the worker pool. Per-poem work shares
// only the immutable matcher and table; results merge under a mutex and are
// post-sorted by poem id for determinism.
func (e *Engine) Run(m *match.Matcher) []Result {
	poems := e.corpus.Poems()

	var bar *progressbar.ProgressBar
	if e.progress {
		bar = progressbar.NewOptions(len(poems),
			progressbar.OptionSetDescription("matching"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount())
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []Result
	)
	sem := make(chan struct{}, e.workers)

	for i := range poems {
		sem <- struct{}{}
		wg.Add(1)
		go func(poem *corpus.Poem) {
			defer func() {
				<-sem
				wg.Done()
			}()
			positions := m.BatchMatch(poem.Sentences)
			if len(positions) > 0 {
				mu.Lock()
				results = append(results, Result{PoemID: poem.ID, Positions: positions})
				mu.Unlock()
			}
			if bar != nil {
				_ = bar.Add(1)
			}
		}(&poems[i])
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].PoemID < results[j].PoemID })
	return results
}

// Explain returns the parsed condition tree and the compiled matcher tree of
// an expression, rendered for diagnostics.
func (e *Engine) Explain(expr string) (astStr, treeStr string, err error) {
	c, err := e.Parse(expr)
	if err != nil {
		return "", "", err
	}
	m, err := match.Compile(c, e.table)
	if err != nil {
		return c.String(), "", err
	}
	return c.String(), m.TreeString(0), nil
}

// PoemByID returns one poem by its id.
func (e *Engine) PoemByID(id int) (*corpus.Poem, error) {
	return e.corpus.PoemByID(id)
}

// Covered returns, per poem, the first sentence written entirely with the
// characters of charset.
func (e *Engine) Covered(charset string) []corpus.Covered {
	return e.corpus.CoveredBy(charset)
}

// Stats summarizes the loaded state.
type Stats struct {
	Poems        int
	HanziRecords int
	AlphabetSize int
	MemoryBytes  int
}

func (e *Engine) Stats() Stats {
	return Stats{
		Poems:        e.corpus.Len(),
		HanziRecords: e.table.Len(),
		AlphabetSize: e.table.Alphabet().Size(),
		MemoryBytes:  e.corpus.EstimateMemoryUsage() + e.table.Alphabet().EstimateMemoryUsage(),
	}
}
