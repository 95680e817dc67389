package dictionary

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec is the compression frame wrapped around a dictionary container.
type Codec uint8

const (
	CodecZstd Codec = iota + 1
	CodecLZ4
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

func (c Codec) String() string {
	switch c {
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	}
	return fmt.Sprintf("Codec(%d)", uint8(c))
}

// ParseCodec parses "zstd" or "lz4".
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zstd", "zst":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedCompression, s)
}

// openDecompressor sniffs the frame magic of r and returns a streaming
// decompressor for it.
func openDecompressor(r io.Reader) (io.ReadCloser, Codec, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, loadError(ErrTruncated, "stream shorter than a frame header")
		}
		return nil, 0, loadError(ErrDecompress, "read frame header: %v", err)
	}

	switch {
	case bytes.Equal(head, zstdMagic):
		dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, 0, loadError(ErrDecompress, "zstd: %v", err)
		}
		return dec.IOReadCloser(), CodecZstd, nil
	case bytes.Equal(head, lz4Magic):
		return io.NopCloser(lz4.NewReader(br)), CodecLZ4, nil
	}
	return nil, 0, loadError(ErrUnsupportedCompression, "frame magic %x", head)
}

// newCompressor wraps w in an encoder for c. Closing the returned writer
// flushes the frame but does not close w.
func newCompressor(w io.Writer, c Codec) (io.WriteCloser, error) {
	switch c {
	case CodecZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		return enc, nil
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedCompression, c)
}
