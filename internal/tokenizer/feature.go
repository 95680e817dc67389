package tokenizer

import "github.com/wangbinyq/ja-tokenizer/internal/dictionary"

// ParseLexType maps a caller-supplied selector to a LexType: absent or 1
// is System, 2 is User, and any other value is Unknown.
func ParseLexType(sel *uint8) dictionary.LexType {
	if sel == nil {
		return dictionary.LexTypeSystem
	}
	switch *sel {
	case 1:
		return dictionary.LexTypeSystem
	case 2:
		return dictionary.LexTypeUser
	default:
		return dictionary.LexTypeUnknown
	}
}

// LexTypeCode is the wire code of a LexType.
func LexTypeCode(t dictionary.LexType) uint8 {
	switch t {
	case dictionary.LexTypeUnknown:
		return 0
	case dictionary.LexTypeSystem:
		return 1
	case dictionary.LexTypeUser:
		return 2
	}
	panic("tokenizer: invalid LexType " + t.String())
}

// Feature returns the feature string of entry id in the lexicon chosen by
// sel. An address with no entry yields a *dictionary.UnknownAddressError.
func (t *Tokenizer) Feature(id uint32, sel *uint8) (string, error) {
	return t.dict.WordFeature(dictionary.NewWordIdx(ParseLexType(sel), id))
}
