// Package analysis defines the morphological analysis engine boundary and
// the engines shipped with the service.
package analysis

import (
	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
)

// Morpheme is one unit of engine output. Offsets are half-open and refer to
// the text the Workspace was reset with.
type Morpheme struct {
	Word      dictionary.WordIdx
	StartByte int
	EndByte   int
	StartChar int
	EndChar   int
}

// Lexicon is the read-only dictionary view an Engine needs.
// *dictionary.Dictionary implements it.
type Lexicon interface {
	ConnectionCost(right, left uint16) int32
	WordParam(w dictionary.WordIdx) (dictionary.WordParam, bool)
	CommonPrefix(lexType dictionary.LexType, text string, fn func(length int, id uint32) bool)
	Unknown(c dictionary.CharCategory) (dictionary.CategoryInfo, []uint32)
}

// Engine segments the text held by a Workspace.
//
// Analyze must append morphemes to ws in left-to-right order such that
// they tile the text exactly: the first starts at 0, each starts where the
// previous ended, and the last ends at the text length. Engines must be
// safe for concurrent use; all per-call state lives in the Workspace.
type Engine interface {
	Name() string
	Analyze(lex Lexicon, ws *Workspace) error
}
