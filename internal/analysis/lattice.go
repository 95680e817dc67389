package analysis

import (
	"errors"

	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
)

// ErrNoPath is returned when no segmentation covers the whole text. It only
// happens with a Lexicon that lacks unknown-word entries.
var ErrNoPath = errors.New("no path through lattice")

// searchOrder is the order lexicons are consulted; it fixes the insertion
// order of candidates and therefore tie-breaking.
var searchOrder = [...]dictionary.LexType{dictionary.LexTypeSystem, dictionary.LexTypeUser}

type latticeNode struct {
	word  dictionary.WordIdx
	start int // char position, -1 for BOS
	right uint16
	total int64
	prev  int32 // index into lattice[start], -1 for BOS
}

// LatticeEngine finds the minimum-cost segmentation with a Viterbi search.
// The cost of a path is the sum of its word costs plus the connection cost
// of every adjacent pair, including BOS and EOS (context id 0). Among equal
// costs the earliest-inserted candidate wins.
type LatticeEngine struct{}

// NewLatticeEngine creates a new LatticeEngine.
func NewLatticeEngine() *LatticeEngine {
	return &LatticeEngine{}
}

func (e *LatticeEngine) Name() string { return "lattice" }

// Analyze builds the lattice over ws's text and appends the best path.
func (e *LatticeEngine) Analyze(lex Lexicon, ws *Workspace) error {
	n := ws.NumChars()
	if n == 0 {
		return nil
	}
	ws.resetLattice(n)
	ws.lattice[0] = append(ws.lattice[0], latticeNode{start: -1, prev: -1})

	for pos := 0; pos < n; pos++ {
		if len(ws.lattice[pos]) == 0 {
			continue // unreachable position
		}
		base := ws.ByteOffset(pos)
		matched := false
		for _, lt := range searchOrder {
			lex.CommonPrefix(lt, ws.text[base:], func(length int, id uint32) bool {
				end, ok := ws.CharPos(base + length)
				if !ok {
					return true
				}
				word := dictionary.NewWordIdx(lt, id)
				param, ok := lex.WordParam(word)
				if !ok {
					return true
				}
				connect(lex, ws, word, param, pos, end)
				matched = true
				return true
			})
		}

		info, ids := lex.Unknown(ws.Category(pos))
		if matched && !info.Invoke {
			continue
		}
		addUnknown(lex, ws, ids, pos, pos+1)
		if info.Group {
			if end := ws.RunEnd(pos); end > pos+1 {
				addUnknown(lex, ws, ids, pos, end)
			}
		}
	}

	ends := ws.lattice[n]
	if len(ends) == 0 {
		return ErrNoPath
	}
	best := -1
	var bestCost int64
	for i := range ends {
		c := ends[i].total + int64(lex.ConnectionCost(ends[i].right, 0))
		if best < 0 || c < bestCost {
			best, bestCost = i, c
		}
	}

	for pos, idx := n, best; pos > 0; {
		nd := &ws.lattice[pos][idx]
		ws.Append(nd.word, nd.start, pos)
		pos, idx = nd.start, int(nd.prev)
	}
	out := ws.out
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return nil
}

func addUnknown(lex Lexicon, ws *Workspace, ids []uint32, start, end int) {
	for _, id := range ids {
		word := dictionary.NewWordIdx(dictionary.LexTypeUnknown, id)
		if param, ok := lex.WordParam(word); ok {
			connect(lex, ws, word, param, start, end)
		}
	}
}

// connect adds a node for word spanning [start, end), linked to the
// cheapest node ending at start.
func connect(lex Lexicon, ws *Workspace, word dictionary.WordIdx, param dictionary.WordParam, start, end int) {
	prevs := ws.lattice[start]
	best := -1
	var bestCost int64
	for i := range prevs {
		c := prevs[i].total + int64(lex.ConnectionCost(prevs[i].right, param.LeftID))
		if best < 0 || c < bestCost {
			best, bestCost = i, c
		}
	}
	ws.lattice[end] = append(ws.lattice[end], latticeNode{
		word:  word,
		start: start,
		right: param.RightID,
		total: bestCost + int64(param.Cost),
		prev:  int32(best),
	})
}

func (ws *Workspace) resetLattice(n int) {
	if cap(ws.lattice) < n+1 {
		ws.lattice = make([][]latticeNode, n+1)
	} else {
		ws.lattice = ws.lattice[:n+1]
	}
	for i := range ws.lattice {
		ws.lattice[i] = ws.lattice[i][:0]
	}
}
