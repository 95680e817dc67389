package dictionary

import (
	"fmt"
	"strings"
	"unicode"
)

// CharCategory classifies a rune for unknown-word synthesis.
type CharCategory uint8

const (
	CategoryDefault CharCategory = iota
	CategorySpace
	CategoryAlpha
	CategoryNumeric
	CategorySymbol
	CategoryHiragana
	CategoryKatakana
	CategoryKanji

	numCategories
)

var categoryNames = [numCategories]string{
	"DEFAULT",
	"SPACE",
	"ALPHA",
	"NUMERIC",
	"SYMBOL",
	"HIRAGANA",
	"KATAKANA",
	"KANJI",
}

func (c CharCategory) String() string {
	if c < numCategories {
		return categoryNames[c]
	}
	return fmt.Sprintf("CharCategory(%d)", uint8(c))
}

// ParseCategory returns the category with the given name (case-insensitive).
func ParseCategory(name string) (CharCategory, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range categoryNames {
		if n == upper {
			return CharCategory(i), nil
		}
	}
	return 0, fmt.Errorf("unknown character category: %q", name)
}

// ClassifyRune assigns a category to r.
func ClassifyRune(r rune) CharCategory {
	switch {
	case unicode.IsSpace(r):
		return CategorySpace
	case unicode.Is(unicode.Hiragana, r):
		return CategoryHiragana
	case unicode.Is(unicode.Katakana, r), r == 'ー':
		return CategoryKatakana
	case unicode.Is(unicode.Han, r):
		return CategoryKanji
	case unicode.IsDigit(r):
		return CategoryNumeric
	case unicode.IsLetter(r):
		return CategoryAlpha
	case unicode.IsPunct(r), unicode.IsSymbol(r):
		return CategorySymbol
	default:
		return CategoryDefault
	}
}
