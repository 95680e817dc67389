// Package tokenizer shares one immutable dictionary across requests and
// hands each request its own analysis worker.
package tokenizer

import (
	"github.com/wangbinyq/ja-tokenizer/internal/analysis"
	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
)

// Tokenizer binds a Dictionary to an analysis Engine. It holds no mutable
// state and is safe for concurrent use; per-request state lives in Workers.
type Tokenizer struct {
	dict   *dictionary.Dictionary
	engine analysis.Engine
}

// New creates a Tokenizer. A nil engine selects the lattice engine.
func New(dict *dictionary.Dictionary, engine analysis.Engine) *Tokenizer {
	if engine == nil {
		engine = analysis.NewLatticeEngine()
	}
	return &Tokenizer{dict: dict, engine: engine}
}

// Dictionary returns the shared dictionary.
func (t *Tokenizer) Dictionary() *dictionary.Dictionary {
	return t.dict
}

// Engine returns the analysis engine.
func (t *Tokenizer) Engine() analysis.Engine {
	return t.engine
}

// NewWorker returns a fresh Worker bound to t. The Worker is owned by the
// caller and must not be shared between goroutines.
func (t *Tokenizer) NewWorker() *Worker {
	return &Worker{
		tokenizer: t,
		ws:        analysis.NewWorkspace(),
	}
}

// Tokenize runs a single-use Worker over text.
func (t *Tokenizer) Tokenize(text string) ([]Token, error) {
	w := t.NewWorker()
	w.ResetSentence(text)
	if err := w.Tokenize(); err != nil {
		return nil, err
	}
	return w.Tokens()
}
