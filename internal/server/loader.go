package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/wangbinyq/ja-tokenizer/internal/analysis"
	"github.com/wangbinyq/ja-tokenizer/internal/config"
	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
	"github.com/wangbinyq/ja-tokenizer/internal/source"
	"github.com/wangbinyq/ja-tokenizer/internal/tokenizer"
)

// OpenTokenizer loads the dictionary named by cfg, merges the optional user
// lexicon and binds the configured engine. Every returned error matches
// dictionary.ErrLoad.
func OpenTokenizer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*tokenizer.Tokenizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "loader")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", dictionary.ErrLoad, err)
	}

	engine, err := analysis.NewRegistry().Get(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dictionary.ErrLoad, err)
	}

	start := time.Now()
	rc, err := source.Open(ctx, cfg.DictPath, cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dictionary.ErrLoad, err)
	}
	dict, err := dictionary.Read(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.DictPath, err)
	}
	logger.Info("dictionary loaded",
		"path", cfg.DictPath,
		"duration", time.Since(start),
		"stats", dict.Stats(),
	)

	if cfg.UserDictPath != "" {
		dict, err = mergeUserLexicon(dict, cfg.UserDictPath)
		if err != nil {
			return nil, fmt.Errorf("%w: user lexicon %s: %w", dictionary.ErrLoad, cfg.UserDictPath, err)
		}
		logger.Info("user lexicon merged",
			"path", cfg.UserDictPath,
			"user_entries", dict.Stats().UserEntries,
		)
	}

	return tokenizer.New(dict, engine), nil
}

// mergeUserLexicon appends the entries in path after the dictionary's own
// user entries, so existing user word ids stay stable.
func mergeUserLexicon(dict *dictionary.Dictionary, path string) (*dictionary.Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	extra, err := dictionary.ParseLexicon(f)
	if err != nil {
		return nil, err
	}
	return dict.WithUserLexicon(append(dict.UserLexicon(), extra...))
}
