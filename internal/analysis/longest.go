package analysis

import (
	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
)

// LongestMatchEngine segments greedily, taking the longest lexicon match at
// each position. User entries win over system entries of the same length,
// and the cheaper entry wins within a lexicon. Positions without a match
// become unknown words, grouped by character category when the category
// allows it.
type LongestMatchEngine struct{}

// NewLongestMatchEngine creates a new LongestMatchEngine.
func NewLongestMatchEngine() *LongestMatchEngine {
	return &LongestMatchEngine{}
}

func (e *LongestMatchEngine) Name() string { return "longest" }

// Analyze appends a greedy longest-match segmentation of ws's text.
func (e *LongestMatchEngine) Analyze(lex Lexicon, ws *Workspace) error {
	n := ws.NumChars()
	for pos := 0; pos < n; {
		base := ws.ByteOffset(pos)
		var best dictionary.WordIdx
		var bestCost int16
		bestEnd := -1

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
				better := end > bestEnd ||
					(end == bestEnd && lt == dictionary.LexTypeUser && best.LexType != dictionary.LexTypeUser) ||
					(end == bestEnd && lt == best.LexType && param.Cost < bestCost)
				if better {
					best, bestEnd, bestCost = word, end, param.Cost
				}
				return true
			})
		}
		if bestEnd > pos {
			ws.Append(best, pos, bestEnd)
			pos = bestEnd
			continue
		}

		info, ids := lex.Unknown(ws.Category(pos))
		word, ok := cheapestUnknown(lex, ids)
		if !ok {
			return ErrNoPath
		}
		end := pos + 1
		if info.Group {
			end = ws.RunEnd(pos)
		}
		ws.Append(word, pos, end)
		pos = end
	}
	return nil
}

func cheapestUnknown(lex Lexicon, ids []uint32) (dictionary.WordIdx, bool) {
	var best dictionary.WordIdx
	var bestCost int16
	found := false
	for _, id := range ids {
		word := dictionary.NewWordIdx(dictionary.LexTypeUnknown, id)
		param, ok := lex.WordParam(word)
		if !ok {
			continue
		}
		if !found || param.Cost < bestCost {
			best, bestCost, found = word, param.Cost, true
		}
	}
	return best, found
}
