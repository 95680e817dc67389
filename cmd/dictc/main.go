// Command dictc compiles CSV lexicon sources into a dictionary artifact.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
	"github.com/wangbinyq/ja-tokenizer/internal/storage"
)

type options struct {
	lex    string
	user   string
	matrix string
	unk    string
	out    string
	codec  dictionary.Codec
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(os.Args[1:], logger); err != nil {
		fmt.Fprintf(os.Stderr, "dictc: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, logger *slog.Logger) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	dict, err := compile(opts)
	if err != nil {
		return err
	}

	if err := storage.EnsureDir(filepath.Dir(opts.out)); err != nil {
		return err
	}
	if err := storage.AtomicWriteFile(opts.out, func(w io.Writer) error {
		return dict.Write(w, opts.codec)
	}); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}

	sum, err := storage.ComputeFileChecksum(opts.out)
	if err != nil {
		return err
	}
	logger.Info("dictionary compiled",
		"out", opts.out,
		"codec", opts.codec.String(),
		"checksum", sum,
		"stats", dict.Stats(),
	)
	return nil
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("dictc", flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.lex, "lex", "", "system lexicon CSV (required)")
	fs.StringVar(&opts.user, "user", "", "user lexicon CSV")
	fs.StringVar(&opts.matrix, "matrix", "", "connection matrix file; a 1x1 zero matrix when empty")
	fs.StringVar(&opts.unk, "unk", "", "unknown-word table CSV (required)")
	fs.StringVar(&opts.out, "o", "system.dic.zst", "output artifact path")
	codec := fs.String("codec", "zstd", "compression codec: zstd or lz4")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.lex == "" || opts.unk == "" {
		return opts, errors.New("-lex and -unk are required")
	}
	c, err := dictionary.ParseCodec(*codec)
	if err != nil {
		return opts, err
	}
	opts.codec = c
	return opts, nil
}

func compile(opts options) (*dictionary.Dictionary, error) {
	b := dictionary.NewBuilder()

	if opts.matrix != "" {
		var m *dictionary.Matrix
		if err := withFile(opts.matrix, func(r io.Reader) (err error) {
			m, err = dictionary.ParseMatrix(r)
			return err
		}); err != nil {
			return nil, err
		}
		b.SetMatrix(m)
	}

	if err := withFile(opts.lex, func(r io.Reader) error {
		entries, err := dictionary.ParseLexicon(r)
		b.AddSystem(entries...)
		return err
	}); err != nil {
		return nil, err
	}

	if opts.user != "" {
		if err := withFile(opts.user, func(r io.Reader) error {
			entries, err := dictionary.ParseLexicon(r)
			b.AddUser(entries...)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if err := withFile(opts.unk, func(r io.Reader) error {
		entries, err := dictionary.ParseUnknown(r)
		b.AddUnknown(entries...)
		return err
	}); err != nil {
		return nil, err
	}

	return b.Build()
}

func withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
