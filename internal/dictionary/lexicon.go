package dictionary

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseLexicon reads MeCab-style lexicon rows:
//
//	surface,left_id,right_id,cost,feature...
//
// The feature is the remaining columns joined with ",".
func ParseLexicon(r io.Reader) ([]Entry, error) {
	cr := newCSVReader(r)
	var entries []Entry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: lexicon: %v", ErrMalformed, err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < 4 {
			return nil, malformed("lexicon line %d: want at least 4 columns, got %d", line, len(rec))
		}
		left, right, cost, err := parseContext(rec[1], rec[2], rec[3])
		if err != nil {
			return nil, malformed("lexicon line %d: %v", line, err)
		}
		entries = append(entries, Entry{
			Surface: rec[0],
			LeftID:  left,
			RightID: right,
			Cost:    cost,
			Feature: strings.Join(rec[4:], ","),
		})
	}
}

// ParseUnknown reads unknown-word rows:
//
//	CATEGORY,invoke,group,left_id,right_id,cost,feature...
//
// invoke and group are 0 or 1.
func ParseUnknown(r io.Reader) ([]UnknownEntry, error) {
	cr := newCSVReader(r)
	var entries []UnknownEntry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: unknown table: %v", ErrMalformed, err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < 6 {
			return nil, malformed("unknown line %d: want at least 6 columns, got %d", line, len(rec))
		}
		cat, err := ParseCategory(rec[0])
		if err != nil {
			return nil, malformed("unknown line %d: %v", line, err)
		}
		invoke, err := strconv.ParseBool(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, malformed("unknown line %d: invoke: %v", line, err)
		}
		group, err := strconv.ParseBool(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, malformed("unknown line %d: group: %v", line, err)
		}
		left, right, cost, err := parseContext(rec[3], rec[4], rec[5])
		if err != nil {
			return nil, malformed("unknown line %d: %v", line, err)
		}
		entries = append(entries, UnknownEntry{
			Category: cat,
			Invoke:   invoke,
			Group:    group,
			LeftID:   left,
			RightID:  right,
			Cost:     cost,
			Feature:  strings.Join(rec[6:], ","),
		})
	}
}

// ParseMatrix reads a MeCab matrix.def: a "num_right num_left" header
// followed by "right_id left_id cost" lines.
func ParseMatrix(r io.Reader) (*Matrix, error) {
	sc := bufio.NewScanner(r)
	var m *Matrix
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if m == nil {
			if len(fields) != 2 {
				return nil, malformed("matrix line %d: header wants 2 fields, got %d", line, len(fields))
			}
			numRight, err1 := strconv.Atoi(fields[0])
			numLeft, err2 := strconv.Atoi(fields[1])
			if err := errors.Join(err1, err2); err != nil {
				return nil, malformed("matrix line %d: %v", line, err)
			}
			var err error
			if m, err = NewMatrix(numRight, numLeft); err != nil {
				return nil, err
			}
			continue
		}
		if len(fields) != 3 {
			return nil, malformed("matrix line %d: want 3 fields, got %d", line, len(fields))
		}
		right, left, cost, err := parseContext(fields[0], fields[1], fields[2])
		if err != nil {
			return nil, malformed("matrix line %d: %v", line, err)
		}
		if err := m.Set(right, left, cost); err != nil {
			return nil, fmt.Errorf("matrix line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read matrix: %w", err)
	}
	if m == nil {
		return nil, malformed("matrix: missing header")
	}
	return m, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}

func parseContext(a, b, c string) (uint16, uint16, int16, error) {
	x, err := strconv.ParseUint(strings.TrimSpace(a), 10, 16)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("id %q: %w", a, err)
	}
	y, err := strconv.ParseUint(strings.TrimSpace(b), 10, 16)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("id %q: %w", b, err)
	}
	cost, err := strconv.ParseInt(strings.TrimSpace(c), 10, 16)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("cost %q: %w", c, err)
	}
	return uint16(x), uint16(y), int16(cost), nil
}
