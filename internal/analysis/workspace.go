package analysis

import (
	"sort"

	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
)

// Workspace is the mutable scratch state of one analysis pass. A Workspace
// must not be used by more than one goroutine at a time.
type Workspace struct {
	text    string
	offsets []int // byte offset of each char, plus len(text)
	cats    []dictionary.CharCategory

	lattice [][]latticeNode
	out     []Morpheme
}

// NewWorkspace returns an empty Workspace.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// Reset loads text and clears all previous results. Invalid UTF-8 bytes
// count as one character each.
func (ws *Workspace) Reset(text string) {
	ws.text = text
	ws.offsets = ws.offsets[:0]
	ws.cats = ws.cats[:0]
	for i, r := range text {
		ws.offsets = append(ws.offsets, i)
		ws.cats = append(ws.cats, dictionary.ClassifyRune(r))
	}
	ws.offsets = append(ws.offsets, len(text))
	ws.out = ws.out[:0]
}

// Text returns the text the Workspace was reset with.
func (ws *Workspace) Text() string { return ws.text }

// NumChars returns the number of characters in the text.
func (ws *Workspace) NumChars() int { return len(ws.offsets) - 1 }

// ByteOffset returns the byte offset of character position pos.
// pos may equal NumChars.
func (ws *Workspace) ByteOffset(pos int) int { return ws.offsets[pos] }

// Category returns the character category at pos.
func (ws *Workspace) Category(pos int) dictionary.CharCategory { return ws.cats[pos] }

// CharPos converts a byte offset to a character position. ok is false if
// the offset does not fall on a character boundary.
func (ws *Workspace) CharPos(byteOff int) (pos int, ok bool) {
	pos = sort.SearchInts(ws.offsets, byteOff)
	if pos < len(ws.offsets) && ws.offsets[pos] == byteOff {
		return pos, true
	}
	return 0, false
}

// RunEnd returns the end of the maximal run of characters starting at pos
// that share pos's category.
func (ws *Workspace) RunEnd(pos int) int {
	cat := ws.cats[pos]
	end := pos + 1
	for end < len(ws.cats) && ws.cats[end] == cat {
		end++
	}
	return end
}

// Append adds a morpheme spanning character positions [start, end).
func (ws *Workspace) Append(word dictionary.WordIdx, start, end int) {
	ws.out = append(ws.out, Morpheme{
		Word:      word,
		StartByte: ws.offsets[start],
		EndByte:   ws.offsets[end],
		StartChar: start,
		EndChar:   end,
	})
}

// AppendMorpheme adds m as is. Engines that compute offsets themselves
// are responsible for keeping byte and char spans consistent.
func (ws *Workspace) AppendMorpheme(m Morpheme) {
	ws.out = append(ws.out, m)
}

// Morphemes returns the engine output. The slice is reused by the next
// Reset and must not be retained.
func (ws *Workspace) Morphemes() []Morpheme {
	return ws.out
}
