package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wangbinyq/ja-tokenizer/internal/analysis"
	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
)

// ErrInconsistentSpans reports engine output that does not tile the input.
// It indicates a defect in the engine, not a bad request.
var ErrInconsistentSpans = errors.New("engine produced inconsistent spans")

// ErrNotTokenized is returned by Tokens before a successful Tokenize.
var ErrNotTokenized = errors.New("worker has not tokenized the current sentence")

// Span is a half-open [Start, End) interval.
type Span struct {
	Start int
	End   int
}

// Token is one morpheme of a tokenized sentence. Surface is an independent
// copy and stays valid after the Worker is discarded.
type Token struct {
	Word      dictionary.WordIdx
	Surface   string
	RangeByte Span
	RangeChar Span
}

// Worker is the per-request analysis workspace. Usage is
// ResetSentence, Tokenize, then Tokens.
type Worker struct {
	tokenizer *Tokenizer
	ws        *analysis.Workspace
	done      bool
}

// ResetSentence loads a new input, discarding previous results.
func (w *Worker) ResetSentence(text string) {
	w.ws.Reset(text)
	w.done = false
}

// Tokenize runs the engine over the current sentence.
func (w *Worker) Tokenize() error {
	if err := w.tokenizer.engine.Analyze(w.tokenizer.dict, w.ws); err != nil {
		return fmt.Errorf("analyze with %s engine: %w", w.tokenizer.engine.Name(), err)
	}
	w.done = true
	return nil
}

// NumTokens returns the number of morphemes produced by Tokenize.
func (w *Worker) NumTokens() int {
	if !w.done {
		return 0
	}
	return len(w.ws.Morphemes())
}

// Tokens projects the engine output into Tokens, left to right.
func (w *Worker) Tokens() ([]Token, error) {
	if !w.done {
		return nil, ErrNotTokenized
	}
	text := w.ws.Text()
	ms := w.ws.Morphemes()
	tokens := make([]Token, 0, len(ms))
	var prev Token
	for i, m := range ms {
		tok, err := project(text, m, prev.RangeByte.End, prev.RangeChar.End)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		tokens = append(tokens, tok)
		prev = tok
	}
	if prev.RangeByte.End != len(text) {
		return nil, fmt.Errorf("%w: tokens cover %d of %d bytes", ErrInconsistentSpans, prev.RangeByte.End, len(text))
	}
	return tokens, nil
}

// project converts one morpheme into a Token, checking that it starts
// where the previous one ended and that its char span is the codepoint
// count of its byte span.
func project(text string, m analysis.Morpheme, byteStart, charStart int) (Token, error) {
	switch {
	case m.StartByte != byteStart || m.StartChar != charStart:
		return Token{}, fmt.Errorf("%w: span starts at byte %d char %d, want byte %d char %d",
			ErrInconsistentSpans, m.StartByte, m.StartChar, byteStart, charStart)
	case m.EndByte <= m.StartByte || m.EndByte > len(text):
		return Token{}, fmt.Errorf("%w: byte span [%d, %d) invalid for %d-byte input",
			ErrInconsistentSpans, m.StartByte, m.EndByte, len(text))
	}
	surface := text[m.StartByte:m.EndByte]
	if n := utf8.RuneCountInString(surface); m.EndChar-m.StartChar != n {
		return Token{}, fmt.Errorf("%w: char span [%d, %d) does not match %d codepoints",
			ErrInconsistentSpans, m.StartChar, m.EndChar, n)
	}
	return Token{
		Word:      m.Word,
		Surface:   strings.Clone(surface),
		RangeByte: Span{Start: m.StartByte, End: m.EndByte},
		RangeChar: Span{Start: m.StartChar, End: m.EndChar},
	}, nil
}
