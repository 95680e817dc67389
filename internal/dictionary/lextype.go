package dictionary

import "fmt"

// LexType identifies which lexicon a word entry belongs to.
// Word IDs are only unique within a single LexType.
type LexType uint8

const (
	// LexTypeUnknown marks entries synthesized for text not found in any lexicon.
	LexTypeUnknown LexType = iota
	// LexTypeSystem marks entries from the compiled system lexicon.
	LexTypeSystem
	// LexTypeUser marks entries from the supplementary user lexicon.
	LexTypeUser
)

func (t LexType) String() string {
	switch t {
	case LexTypeUnknown:
		return "unknown"
	case LexTypeSystem:
		return "system"
	case LexTypeUser:
		return "user"
	}
	return fmt.Sprintf("LexType(%d)", uint8(t))
}

// WordIdx addresses one entry of a Dictionary. It is only meaningful
// relative to the Dictionary that produced it.
type WordIdx struct {
	WordID  uint32
	LexType LexType
}

// NewWordIdx returns the address of entry id in the given lexicon.
func NewWordIdx(lexType LexType, id uint32) WordIdx {
	return WordIdx{WordID: id, LexType: lexType}
}

func (w WordIdx) String() string {
	return fmt.Sprintf("%s:%d", w.LexType, w.WordID)
}
