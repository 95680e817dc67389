package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wangbinyq/ja-tokenizer/internal/config"
	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
	"github.com/wangbinyq/ja-tokenizer/internal/source"
	"github.com/wangbinyq/ja-tokenizer/internal/testutil"
)

func loaderConfig(dictPath string) config.Config {
	cfg := config.DefaultConfig()
	cfg.DictPath = dictPath
	return cfg
}

func TestOpenTokenizer(t *testing.T) {
	for _, codec := range []dictionary.Codec{dictionary.CodecZstd, dictionary.CodecLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			path := testutil.WriteSampleArtifact(t, t.TempDir(), codec)

			tok, err := OpenTokenizer(context.Background(), loaderConfig(path), nil)
			require.NoError(t, err)
			assert.Equal(t, "lattice", tok.Engine().Name())

			tokens, err := tok.Tokenize("東京都に住む")
			require.NoError(t, err)
			require.Len(t, tokens, 3)
			assert.Equal(t, dictionary.LexTypeUser, tokens[0].Word.LexType)
		})
	}
}

func TestOpenTokenizer_UserLexicon(t *testing.T) {
	dir := t.TempDir()
	cfg := loaderConfig(testutil.WriteSampleArtifact(t, dir, dictionary.CodecZstd))
	cfg.UserDictPath = testutil.WriteFile(t, dir, "user.csv", testutil.SampleUserLexiconCSV)
	cfg.Engine = "longest"

	tok, err := OpenTokenizer(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "longest", tok.Engine().Name())
	assert.Equal(t, 3, tok.Dictionary().Stats().UserEntries)

	// Existing user ids keep their meaning; merged entries follow them.
	tokens, err := tok.Tokenize("京都府")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, dictionary.NewWordIdx(dictionary.LexTypeUser, 1), tokens[0].Word)

	tokens, err = tok.Tokenize("東京都")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, dictionary.NewWordIdx(dictionary.LexTypeUser, testutil.UserTokyoTo), tokens[0].Word)
}

func TestOpenTokenizer_Errors(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteSampleArtifact(t, dir, dictionary.CodecZstd)
	garbage := testutil.WriteFile(t, dir, "garbage.dic", "definitely not a dictionary")

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"missing dict path", func(c *config.Config) { c.DictPath = "" }, config.ErrMissingDictPath},
		{"file not found", func(c *config.Config) { c.DictPath = filepath.Join(dir, "nope.dic") }, source.ErrNotFound},
		{"bad artifact", func(c *config.Config) { c.DictPath = garbage }, dictionary.ErrUnsupportedCompression},
		{"unknown engine", func(c *config.Config) { c.Engine = "neural" }, dictionary.ErrLoad},
		{"user lexicon missing", func(c *config.Config) { c.UserDictPath = filepath.Join(dir, "nope.csv") }, os.ErrNotExist},
		{"user lexicon malformed", func(c *config.Config) {
			c.UserDictPath = testutil.WriteFile(t, dir, "bad.csv", "京都府,0,0\n")
		}, dictionary.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loaderConfig(good)
			tt.mutate(&cfg)

			_, err := OpenTokenizer(context.Background(), cfg, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, dictionary.ErrLoad)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
