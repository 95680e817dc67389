package dictionary_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
	"github.com/wangbinyq/ja-tokenizer/internal/testutil"
)

func TestWordFeature(t *testing.T) {
	d := testutil.SampleDictionary(t)

	tests := []struct {
		name string
		word dictionary.WordIdx
		want string
	}{
		{"system", dictionary.NewWordIdx(dictionary.LexTypeSystem, testutil.SysTokyo), "名詞,固有名詞,地域,一般,*,*,東京,トウキョウ,トーキョー"},
		{"user", dictionary.NewWordIdx(dictionary.LexTypeUser, testutil.UserTokyoTo), "名詞,固有名詞,地域,一般,*,*,東京都,トウキョウト,トーキョート"},
		{"unknown", dictionary.NewWordIdx(dictionary.LexTypeUnknown, testutil.UnkSpace), "記号,空白,*,*,*,*,*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.WordFeature(tt.word)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWordFeature_UnknownAddress(t *testing.T) {
	d := testutil.SampleDictionary(t)

	for _, w := range []dictionary.WordIdx{
		dictionary.NewWordIdx(dictionary.LexTypeSystem, 11),
		dictionary.NewWordIdx(dictionary.LexTypeUser, 1),
		dictionary.NewWordIdx(dictionary.LexTypeUnknown, 99),
		dictionary.NewWordIdx(dictionary.LexType(7), 0),
	} {
		feature, err := d.WordFeature(w)
		require.Error(t, err, w.String())
		assert.Empty(t, feature)
		assert.True(t, errors.Is(err, dictionary.ErrUnknownAddress))

		var addrErr *dictionary.UnknownAddressError
		require.True(t, errors.As(err, &addrErr))
		assert.Equal(t, w, addrErr.Word)
	}
}

func TestWordFeature_Idempotent(t *testing.T) {
	d := testutil.SampleDictionary(t)
	w := dictionary.NewWordIdx(dictionary.LexTypeSystem, testutil.SysNi)

	first, err := d.WordFeature(w)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := d.WordFeature(w)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCommonPrefix(t *testing.T) {
	d := testutil.SampleDictionary(t)

	var sys []uint32
	d.CommonPrefix(dictionary.LexTypeSystem, "東京都に", func(_ int, id uint32) bool {
		sys = append(sys, id)
		return true
	})
	assert.Equal(t, []uint32{testutil.SysHigashi, testutil.SysTokyo}, sys)

	var user []uint32
	d.CommonPrefix(dictionary.LexTypeUser, "東京都に", func(length int, id uint32) bool {
		assert.Equal(t, len("東京都"), length)
		user = append(user, id)
		return true
	})
	assert.Equal(t, []uint32{testutil.UserTokyoTo}, user)

	d.CommonPrefix(dictionary.LexTypeUnknown, "東京", func(int, uint32) bool {
		t.Fatal("unknown lexicon is not searchable")
		return false
	})
}

func TestUnknownFallback(t *testing.T) {
	d, err := dictionary.NewBuilder().
		AddUnknown(dictionary.UnknownEntry{Category: dictionary.CategoryDefault, Group: true, Cost: 10}).
		AddUnknown(dictionary.UnknownEntry{Category: dictionary.CategoryKanji, Invoke: true, Cost: 20}).
		Build()
	require.NoError(t, err)

	info, ids := d.Unknown(dictionary.CategoryKatakana)
	assert.Equal(t, dictionary.CategoryInfo{Group: true}, info)
	assert.Equal(t, []uint32{0}, ids)

	info, ids = d.Unknown(dictionary.CategoryKanji)
	assert.Equal(t, dictionary.CategoryInfo{Invoke: true}, info)
	assert.Equal(t, []uint32{1}, ids)
}

func TestBuild_Validation(t *testing.T) {
	defaultUnk := dictionary.UnknownEntry{Category: dictionary.CategoryDefault}
	tests := []struct {
		name string
		b    *dictionary.Builder
	}{
		{"missing default unknown", dictionary.NewBuilder().AddUnknown(dictionary.UnknownEntry{Category: dictionary.CategoryAlpha})},
		{"empty surface", dictionary.NewBuilder().AddUnknown(defaultUnk).AddSystem(dictionary.Entry{})},
		{"invalid utf8 surface", dictionary.NewBuilder().AddUnknown(defaultUnk).AddUser(dictionary.Entry{Surface: "\xff"})},
		{"left id out of range", dictionary.NewBuilder().AddUnknown(defaultUnk).AddSystem(dictionary.Entry{Surface: "x", LeftID: 1})},
		{"unknown right id out of range", dictionary.NewBuilder().AddUnknown(dictionary.UnknownEntry{RightID: 3})},
		{"nil matrix", dictionary.NewBuilder().SetMatrix(nil).AddUnknown(defaultUnk)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			require.Error(t, err)
			assert.True(t, errors.Is(err, dictionary.ErrMalformed), "got %v", err)
		})
	}
}

func TestWithUserLexicon(t *testing.T) {
	base := testutil.SampleDictionary(t)
	entries, err := dictionary.ParseLexicon(strings.NewReader(testutil.SampleUserLexiconCSV))
	require.NoError(t, err)

	d, err := base.WithUserLexicon(entries)
	require.NoError(t, err)

	assert.Equal(t, 2, d.Stats().UserEntries)
	assert.Equal(t, 1, base.Stats().UserEntries, "receiver must be unchanged")
	assert.Equal(t, base.Stats().SystemEntries, d.Stats().SystemEntries)

	feature, err := d.WordFeature(dictionary.NewWordIdx(dictionary.LexTypeUser, 1))
	require.NoError(t, err)
	assert.Equal(t, "名詞,固有名詞,一般,*,*,*,スカイツリー,スカイツリー,スカイツリー", feature)

	_, err = base.WithUserLexicon([]dictionary.Entry{{Surface: ""}})
	assert.ErrorIs(t, err, dictionary.ErrMalformed)
}

func TestReadWrite_RoundTrip(t *testing.T) {
	for _, codec := range []dictionary.Codec{dictionary.CodecZstd, dictionary.CodecLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			want := testutil.SampleDictionary(t)
			got, err := dictionary.Read(bytes.NewReader(testutil.SampleArtifact(t, codec)))
			require.NoError(t, err)
			assert.Equal(t, want.Stats(), got.Stats())

			for _, lt := range []dictionary.LexType{dictionary.LexTypeSystem, dictionary.LexTypeUser, dictionary.LexTypeUnknown} {
				for id := uint32(0); ; id++ {
					w := dictionary.NewWordIdx(lt, id)
					wf, werr := want.WordFeature(w)
					gf, gerr := got.WordFeature(w)
					if werr != nil {
						assert.Error(t, gerr)
						break
					}
					require.NoError(t, gerr)
					assert.Equal(t, wf, gf)

					wp, _ := want.WordParam(w)
					gp, _ := got.WordParam(w)
					assert.Equal(t, wp, gp)
				}
			}
		})
	}
}

func TestRead_ConcurrentSharing(t *testing.T) {
	d, err := dictionary.Read(bytes.NewReader(testutil.SampleArtifact(t, dictionary.CodecZstd)))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				f, err := d.WordFeature(dictionary.NewWordIdx(dictionary.LexTypeSystem, testutil.SysSumu))
				if err != nil || !strings.HasPrefix(f, "動詞") {
					t.Errorf("feature = %q, %v", f, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

// rawContainer builds an uncompressed container around body.
func rawContainer(version uint16, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(dictionary.Magic)
	_ = binary.Write(&buf, binary.LittleEndian, version)
	_ = binary.Write(&buf, binary.LittleEndian, uint64(len(body)))
	sum := sha256.Sum256(body)
	buf.Write(sum[:])
	buf.Write(body)
	return buf.Bytes()
}

func zstdFrame(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write(data)
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

// decompressed returns the container inside the sample zstd artifact.
func decompressed(t *testing.T) []byte {
	t.Helper()
	dec, err := zstd.NewReader(bytes.NewReader(testutil.SampleArtifact(t, dictionary.CodecZstd)))
	require.NoError(t, err)
	defer dec.Close()
	var out bytes.Buffer
	_, err = out.ReadFrom(dec)
	require.NoError(t, err)
	return out.Bytes()
}

func TestRead_Errors(t *testing.T) {
	container := decompressed(t)
	headerLen := len(dictionary.Magic) + 2 + 8 + sha256.Size

	corrupt := append([]byte(nil), container...)
	corrupt[len(corrupt)-1] ^= 0xff

	badMagic := append([]byte(nil), container...)
	badMagic[0] = 'X'

	artifact := testutil.SampleArtifact(t, dictionary.CodecZstd)

	tests := []struct {
		name  string
		input []byte
		kind  error
	}{
		{"empty stream", nil, dictionary.ErrTruncated},
		{"plain bytes", []byte("not a dictionary at all"), dictionary.ErrUnsupportedCompression},
		{"bad magic", zstdFrame(t, badMagic), dictionary.ErrBadMagic},
		{"future version", zstdFrame(t, rawContainer(dictionary.FormatVersion+1, container[headerLen:])), dictionary.ErrIncompatibleVersion},
		{"truncated header", zstdFrame(t, container[:headerLen-1]), dictionary.ErrTruncated},
		{"truncated body", zstdFrame(t, container[:len(container)-3]), dictionary.ErrTruncated},
		{"checksum mismatch", zstdFrame(t, corrupt), dictionary.ErrChecksumMismatch},
		{"trailing data", zstdFrame(t, append(append([]byte(nil), container...), 0)), dictionary.ErrMalformed},
		{"garbage body", zstdFrame(t, rawContainer(dictionary.FormatVersion, []byte{1, 0})), dictionary.ErrMalformed},
		{"corrupt frame", artifact[:len(artifact)/2], nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := dictionary.Read(bytes.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, d)
			assert.True(t, errors.Is(err, dictionary.ErrLoad), "not a load error: %v", err)
			if tt.kind != nil {
				assert.True(t, errors.Is(err, tt.kind), "got %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestParseCodec(t *testing.T) {
	c, err := dictionary.ParseCodec("LZ4")
	require.NoError(t, err)
	assert.Equal(t, dictionary.CodecLZ4, c)

	c, err = dictionary.ParseCodec("zstd")
	require.NoError(t, err)
	assert.Equal(t, dictionary.CodecZstd, c)

	_, err = dictionary.ParseCodec("gzip")
	assert.ErrorIs(t, err, dictionary.ErrUnsupportedCompression)
}
