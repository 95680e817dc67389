package server

import (
	"encoding/json"
	"net/http"

	"github.com/wangbinyq/ja-tokenizer/internal/tokenizer"
)

// tokenJSON is the wire form of a token. lex_type is 0 for unknown, 1 for
// system and 2 for user entries.
type tokenJSON struct {
	ID        uint32 `json:"id"`
	Surface   string `json:"surface"`
	LexType   uint8  `json:"lex_type"`
	RangeByte [2]int `json:"range_byte"`
	RangeChar [2]int `json:"range_char"`
}

func encodeTokens(tokens []tokenizer.Token) []tokenJSON {
	out := make([]tokenJSON, len(tokens))
	for i, t := range tokens {
		out[i] = tokenJSON{
			ID:        t.Word.WordID,
			Surface:   t.Surface,
			LexType:   tokenizer.LexTypeCode(t.Word.LexType),
			RangeByte: [2]int{t.RangeByte.Start, t.RangeByte.End},
			RangeChar: [2]int{t.RangeChar.Start, t.RangeChar.End},
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"message": message,
		},
	})
}
