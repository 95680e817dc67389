package dictionary

import (
	"unicode/utf8"
)

// Entry is one word of the system or user lexicon.
type Entry struct {
	Surface string
	LeftID  uint16
	RightID uint16
	Cost    int16
	Feature string
}

// UnknownEntry is a template for words synthesized from runs of
// characters of one category.
type UnknownEntry struct {
	Category CharCategory
	// Invoke forces unknown-word candidates even where a lexicon word matched.
	Invoke bool
	// Group adds a candidate spanning the maximal run of the category.
	Group   bool
	LeftID  uint16
	RightID uint16
	Cost    int16
	Feature string
}

// WordParam carries the lattice parameters of an entry.
type WordParam struct {
	LeftID  uint16
	RightID uint16
	Cost    int16
}

// CategoryInfo is the unknown-word policy of a character category.
type CategoryInfo struct {
	Invoke bool
	Group  bool
}

// Stats summarizes the size of a Dictionary.
type Stats struct {
	SystemEntries  int `json:"system_entries"`
	UserEntries    int `json:"user_entries"`
	UnknownEntries int `json:"unknown_entries"`
	MatrixRight    int `json:"matrix_right"`
	MatrixLeft     int `json:"matrix_left"`
}

// Dictionary is the compiled language model. It is immutable once
// constructed, so a single instance may be shared by any number of
// goroutines without synchronization.
type Dictionary struct {
	matrix  *Matrix
	system  []Entry
	user    []Entry
	unknown []UnknownEntry

	systemTrie *trie
	userTrie   *trie

	// Unknown entry ids and policy per category, with DEFAULT substituted
	// for categories that have no entries of their own.
	unkIDs  [numCategories][]uint32
	unkInfo [numCategories]CategoryInfo
}

// newDictionary validates the parts and builds the lookup structures.
// The slices are owned by the returned Dictionary.
func newDictionary(matrix *Matrix, system, user []Entry, unknown []UnknownEntry) (*Dictionary, error) {
	if matrix == nil {
		return nil, malformed("missing connection matrix")
	}
	d := &Dictionary{
		matrix:     matrix,
		system:     system,
		user:       user,
		unknown:    unknown,
		systemTrie: newTrie(),
		userTrie:   newTrie(),
	}

	if err := d.indexLexicon(d.systemTrie, system, LexTypeSystem); err != nil {
		return nil, err
	}
	if err := d.indexLexicon(d.userTrie, user, LexTypeUser); err != nil {
		return nil, err
	}

	seen := [numCategories]bool{}
	for i, e := range unknown {
		if e.Category >= numCategories {
			return nil, malformed("unknown entry %d: invalid category %d", i, e.Category)
		}
		if err := d.checkContext(e.LeftID, e.RightID); err != nil {
			return nil, malformed("unknown entry %d: %v", i, err)
		}
		if !seen[e.Category] {
			seen[e.Category] = true
			d.unkInfo[e.Category] = CategoryInfo{Invoke: e.Invoke, Group: e.Group}
		}
		d.unkIDs[e.Category] = append(d.unkIDs[e.Category], uint32(i))
	}
	if !seen[CategoryDefault] {
		return nil, malformed("no unknown entry for category %s", CategoryDefault)
	}
	for c := CharCategory(0); c < numCategories; c++ {
		if !seen[c] {
			d.unkIDs[c] = d.unkIDs[CategoryDefault]
			d.unkInfo[c] = d.unkInfo[CategoryDefault]
		}
	}
	return d, nil
}

func (d *Dictionary) indexLexicon(t *trie, entries []Entry, lexType LexType) error {
	if uint64(len(entries)) > uint64(^uint32(0)) {
		return malformed("%s lexicon has too many entries", lexType)
	}
	for i, e := range entries {
		if e.Surface == "" {
			return malformed("%s entry %d: empty surface", lexType, i)
		}
		if !utf8.ValidString(e.Surface) {
			return malformed("%s entry %d: surface is not valid UTF-8", lexType, i)
		}
		if err := d.checkContext(e.LeftID, e.RightID); err != nil {
			return malformed("%s entry %d (%q): %v", lexType, i, e.Surface, err)
		}
		t.insert(e.Surface, uint32(i))
	}
	return nil
}

func (d *Dictionary) checkContext(left, right uint16) error {
	if int(left) >= d.matrix.NumLeft() {
		return malformed("left id %d >= %d", left, d.matrix.NumLeft())
	}
	if int(right) >= d.matrix.NumRight() {
		return malformed("right id %d >= %d", right, d.matrix.NumRight())
	}
	return nil
}

// WordFeature returns the feature string of the addressed entry.
func (d *Dictionary) WordFeature(w WordIdx) (string, error) {
	switch w.LexType {
	case LexTypeSystem:
		if int64(w.WordID) < int64(len(d.system)) {
			return d.system[w.WordID].Feature, nil
		}
	case LexTypeUser:
		if int64(w.WordID) < int64(len(d.user)) {
			return d.user[w.WordID].Feature, nil
		}
	case LexTypeUnknown:
		if int64(w.WordID) < int64(len(d.unknown)) {
			return d.unknown[w.WordID].Feature, nil
		}
	}
	return "", &UnknownAddressError{Word: w}
}

// WordParam returns the lattice parameters of the addressed entry.
func (d *Dictionary) WordParam(w WordIdx) (WordParam, bool) {
	switch w.LexType {
	case LexTypeSystem:
		if int64(w.WordID) < int64(len(d.system)) {
			e := &d.system[w.WordID]
			return WordParam{LeftID: e.LeftID, RightID: e.RightID, Cost: e.Cost}, true
		}
	case LexTypeUser:
		if int64(w.WordID) < int64(len(d.user)) {
			e := &d.user[w.WordID]
			return WordParam{LeftID: e.LeftID, RightID: e.RightID, Cost: e.Cost}, true
		}
	case LexTypeUnknown:
		if int64(w.WordID) < int64(len(d.unknown)) {
			e := &d.unknown[w.WordID]
			return WordParam{LeftID: e.LeftID, RightID: e.RightID, Cost: e.Cost}, true
		}
	}
	return WordParam{}, false
}

// ConnectionCost returns the cost of a word with right context right
// followed by a word with left context left.
func (d *Dictionary) ConnectionCost(right, left uint16) int32 {
	return d.matrix.Cost(right, left)
}

// CommonPrefix calls fn for every entry of the given lexicon whose surface
// is a prefix of text. Lengths are in bytes. Only the system and user
// lexicons are searchable.
func (d *Dictionary) CommonPrefix(lexType LexType, text string, fn func(length int, id uint32) bool) {
	switch lexType {
	case LexTypeSystem:
		d.systemTrie.commonPrefix(text, fn)
	case LexTypeUser:
		d.userTrie.commonPrefix(text, fn)
	case LexTypeUnknown:
	}
}

// Unknown returns the unknown-word policy and entry ids for a category.
// The returned slice must not be modified.
func (d *Dictionary) Unknown(c CharCategory) (CategoryInfo, []uint32) {
	if c >= numCategories {
		c = CategoryDefault
	}
	return d.unkInfo[c], d.unkIDs[c]
}

// Stats returns entry counts.
func (d *Dictionary) Stats() Stats {
	return Stats{
		SystemEntries:  len(d.system),
		UserEntries:    len(d.user),
		UnknownEntries: len(d.unknown),
		MatrixRight:    d.matrix.NumRight(),
		MatrixLeft:     d.matrix.NumLeft(),
	}
}

// WithUserLexicon returns a new Dictionary that shares the receiver's
// system lexicon, matrix and unknown table but uses entries as its user
// lexicon. The receiver is unchanged.
func (d *Dictionary) WithUserLexicon(entries []Entry) (*Dictionary, error) {
	user := make([]Entry, len(entries))
	copy(user, entries)

	nd := &Dictionary{
		matrix:     d.matrix,
		system:     d.system,
		user:       user,
		unknown:    d.unknown,
		systemTrie: d.systemTrie,
		userTrie:   newTrie(),
		unkIDs:     d.unkIDs,
		unkInfo:    d.unkInfo,
	}
	if err := nd.indexLexicon(nd.userTrie, user, LexTypeUser); err != nil {
		return nil, err
	}
	return nd, nil
}

// UserLexicon returns a copy of the user lexicon entries.
func (d *Dictionary) UserLexicon() []Entry {
	out := make([]Entry, len(d.user))
	copy(out, d.user)
	return out
}
