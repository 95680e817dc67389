package dictionary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/wangbinyq/ja-tokenizer/internal/storage"
)

// Container magic (8 bytes) and format version.
const (
	Magic         = "JTDICT\x00\x00"
	FormatVersion = uint16(1)
)

const (
	headerSize   = len(Magic) + 2 + 8 + storage.ChecksumSize
	maxBodySize  = 4 << 30 // 4GB
	bodyPrealloc = 64 << 20
)

// Read decompresses and parses a dictionary artifact. Every returned error
// matches ErrLoad together with one of the more specific sentinels.
func Read(r io.Reader) (*Dictionary, error) {
	zr, _, err := openDecompressor(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return readContainer(zr)
}

func readContainer(r io.Reader) (*Dictionary, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, streamError(err, "header")
	}
	if string(hdr[:len(Magic)]) != Magic {
		return nil, loadError(ErrBadMagic, "got %q", hdr[:len(Magic)])
	}
	off := len(Magic)
	version := binary.LittleEndian.Uint16(hdr[off:])
	off += 2
	if version != FormatVersion {
		return nil, loadError(ErrIncompatibleVersion, "got %d, want %d", version, FormatVersion)
	}
	bodyLen := binary.LittleEndian.Uint64(hdr[off:])
	off += 8
	if bodyLen > maxBodySize {
		return nil, loadError(ErrMalformed, "body length %d exceeds limit", bodyLen)
	}
	sum := hdr[off : off+storage.ChecksumSize]

	var body bytes.Buffer
	body.Grow(int(min(bodyLen, bodyPrealloc)))
	if _, err := io.CopyN(&body, r, int64(bodyLen)); err != nil {
		return nil, streamError(err, "body")
	}
	if err := storage.VerifyChecksum(body.Bytes(), storage.FormatChecksum(sum)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	var extra [1]byte
	if n, err := r.Read(extra[:]); n > 0 {
		return nil, loadError(ErrMalformed, "trailing data after body")
	} else if err != nil && !errors.Is(err, io.EOF) {
		return nil, streamError(err, "trailer")
	}

	d, err := decodeBody(body.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return d, nil
}

func streamError(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return loadError(ErrTruncated, "%s", what)
	}
	return loadError(ErrDecompress, "%s: %v", what, err)
}

// Write encodes d as a container wrapped in a compression frame.
func (d *Dictionary) Write(w io.Writer, codec Codec) error {
	body := encodeBody(d)

	var hdr [headerSize]byte
	off := copy(hdr[:], Magic)
	binary.LittleEndian.PutUint16(hdr[off:], FormatVersion)
	off += 2
	binary.LittleEndian.PutUint64(hdr[off:], uint64(len(body)))
	off += 8
	copy(hdr[off:], storage.ChecksumBytes(body))

	cw, err := newCompressor(w, codec)
	if err != nil {
		return err
	}
	if _, err := cw.Write(hdr[:]); err != nil {
		cw.Close()
		return fmt.Errorf("write dictionary header: %w", err)
	}
	if _, err := cw.Write(body); err != nil {
		cw.Close()
		return fmt.Errorf("write dictionary body: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("flush %s frame: %w", codec, err)
	}
	return nil
}

// --- body encoding ---

func encodeBody(d *Dictionary) []byte {
	var e encoder
	e.u16(uint16(d.matrix.numRight))
	e.u16(uint16(d.matrix.numLeft))
	for _, c := range d.matrix.costs {
		e.u16(uint16(c))
	}
	for _, lex := range [][]Entry{d.system, d.user} {
		e.u32(uint32(len(lex)))
		for _, ent := range lex {
			e.u16(ent.LeftID)
			e.u16(ent.RightID)
			e.u16(uint16(ent.Cost))
			e.str(ent.Surface)
			e.str(ent.Feature)
		}
	}
	e.u32(uint32(len(d.unknown)))
	for _, u := range d.unknown {
		e.u8(uint8(u.Category))
		e.bool(u.Invoke)
		e.bool(u.Group)
		e.u16(u.LeftID)
		e.u16(u.RightID)
		e.u16(uint16(u.Cost))
		e.str(u.Feature)
	}
	return e.buf
}

func decodeBody(data []byte) (*Dictionary, error) {
	dec := decoder{buf: data}

	numRight := int(dec.u16())
	numLeft := int(dec.u16())
	if dec.err != nil {
		return nil, dec.err
	}
	matrix, err := NewMatrix(numRight, numLeft)
	if err != nil {
		return nil, err
	}
	if dec.remaining() < 2*len(matrix.costs) {
		return nil, malformed("matrix section shorter than %dx%d", numRight, numLeft)
	}
	for i := range matrix.costs {
		matrix.costs[i] = int16(dec.u16())
	}

	system := dec.lexicon("system")
	user := dec.lexicon("user")

	count := dec.u32()
	var unknown []UnknownEntry
	if dec.err == nil && uint64(count)*13 <= uint64(dec.remaining()) {
		unknown = make([]UnknownEntry, 0, count)
		for i := uint32(0); i < count && dec.err == nil; i++ {
			var u UnknownEntry
			u.Category = CharCategory(dec.u8())
			u.Invoke = dec.u8() != 0
			u.Group = dec.u8() != 0
			u.LeftID = dec.u16()
			u.RightID = dec.u16()
			u.Cost = int16(dec.u16())
			u.Feature = dec.str()
			unknown = append(unknown, u)
		}
	} else if dec.err == nil {
		return nil, malformed("unknown table count %d exceeds section", count)
	}
	if dec.err != nil {
		return nil, dec.err
	}
	if dec.remaining() != 0 {
		return nil, malformed("%d unparsed bytes at end of body", dec.remaining())
	}

	return newDictionary(matrix, system, user, unknown)
}

type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8)   { e.buf = append(e.buf, v) }
func (e *encoder) u16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *encoder) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }

func (e *encoder) bool(v bool) {
	if v {
		e.u8(1)
		return
	}
	e.u8(0)
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

// decoder reads little-endian fields from a body. The first failure is
// sticky; later reads return zero values.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) remaining() int { return len(d.buf) - d.off }

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.remaining() < n {
		d.err = malformed("section overruns body at offset %d", d.off)
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) u16() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *decoder) u32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) str() string {
	n := d.u32()
	if d.err != nil {
		return ""
	}
	if uint64(n) > uint64(d.remaining()) {
		d.err = malformed("string length %d overruns body at offset %d", n, d.off)
		return ""
	}
	b := d.take(int(n))
	if !utf8.Valid(b) {
		d.err = malformed("invalid UTF-8 string at offset %d", d.off-int(n))
		return ""
	}
	return string(b)
}

func (d *decoder) lexicon(name string) []Entry {
	count := d.u32()
	if d.err != nil {
		return nil
	}
	// Each entry needs at least 14 bytes.
	if uint64(count)*14 > uint64(d.remaining()) {
		d.err = malformed("%s lexicon count %d exceeds section", name, count)
		return nil
	}
	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count && d.err == nil; i++ {
		var e Entry
		e.LeftID = d.u16()
		e.RightID = d.u16()
		e.Cost = int16(d.u16())
		e.Surface = d.str()
		e.Feature = d.str()
		entries = append(entries, e)
	}
	return entries
}
