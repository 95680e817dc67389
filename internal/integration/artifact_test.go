package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wangbinyq/ja-tokenizer/internal/config"
	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
	"github.com/wangbinyq/ja-tokenizer/internal/server"
	"github.com/wangbinyq/ja-tokenizer/internal/testutil"
)

// A damaged artifact must stop startup with a load error.
func TestDamagedArtifact_FailsLoad(t *testing.T) {
	good := testutil.SampleArtifact(t, dictionary.CodecZstd)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty file", nil},
		{"truncated frame", good[:len(good)/2]},
		{"not compressed", []byte("JTDICT\x00\x00 plain bytes")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "system.dic.zst")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatal(err)
			}

			cfg := config.DefaultConfig()
			cfg.DictPath = path
			_, err := server.OpenTokenizer(context.Background(), cfg, nil)
			if !errors.Is(err, dictionary.ErrLoad) {
				t.Fatalf("err = %v, want ErrLoad", err)
			}
		})
	}
}

func TestArtifactCodecs_LoadIdentically(t *testing.T) {
	dir := t.TempDir()
	var results []string
	for _, codec := range []dictionary.Codec{dictionary.CodecZstd, dictionary.CodecLZ4} {
		cfg := config.DefaultConfig()
		cfg.DictPath = testutil.WriteSampleArtifact(t, dir, codec)
		tok, err := server.OpenTokenizer(context.Background(), cfg, nil)
		if err != nil {
			t.Fatalf("%s: %v", codec, err)
		}
		tokens, err := tok.Tokenize("東京都に住む")
		if err != nil {
			t.Fatalf("%s: %v", codec, err)
		}
		var s string
		for _, tok := range tokens {
			s += tok.Surface + "/" + tok.Word.String() + " "
		}
		results = append(results, s)
	}
	if results[0] != results[1] {
		t.Errorf("zstd %q != lz4 %q", results[0], results[1])
	}
}
