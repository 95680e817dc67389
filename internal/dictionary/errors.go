package dictionary

import (
	"errors"
	"fmt"

	"github.com/wangbinyq/ja-tokenizer/internal/storage"
)

// ErrLoad is matched by every error returned from Read.
var ErrLoad = errors.New("dictionary load failed")

var (
	ErrUnsupportedCompression = errors.New("unsupported compression format")
	ErrDecompress             = errors.New("decompression failed")
	ErrBadMagic               = errors.New("bad dictionary magic")
	ErrIncompatibleVersion    = errors.New("incompatible dictionary format version")
	ErrTruncated              = errors.New("dictionary stream truncated")
	ErrChecksumMismatch       = storage.ErrChecksumMismatch
	ErrMalformed              = errors.New("malformed dictionary")
)

// ErrUnknownAddress is wrapped by every UnknownAddressError.
var ErrUnknownAddress = errors.New("unknown word address")

// UnknownAddressError reports a WordIdx with no entry in the dictionary.
type UnknownAddressError struct {
	Word WordIdx
}

func (e *UnknownAddressError) Error() string {
	return fmt.Sprintf("%v: id=%d lex_type=%s", ErrUnknownAddress, e.Word.WordID, e.Word.LexType)
}

func (e *UnknownAddressError) Unwrap() error {
	return ErrUnknownAddress
}

func loadError(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrLoad, kind, fmt.Sprintf(format, args...))
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
