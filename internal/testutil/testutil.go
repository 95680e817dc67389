package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
)

// Word ids of the sample dictionary.
const (
	SysTokyo uint32 = iota
	SysKyoto
	SysTo
	SysHigashi
	SysKyo
	SysNi
	SysSumu
	SysSu
	SysMu
	SysA
	SysMaru
)

const UserTokyoTo uint32 = 0

// Unknown-table ids of the sample dictionary, one per category.
const (
	UnkDefault uint32 = iota
	UnkSpace
	UnkAlpha
	UnkNumeric
	UnkSymbol
	UnkHiragana
	UnkKatakana
	UnkKanji
)

// SampleBuilder returns a Builder holding a small Japanese dictionary with
// a 1x1 zero matrix, so path cost is the sum of word costs.
func SampleBuilder() *dictionary.Builder {
	b := dictionary.NewBuilder()
	b.AddSystem(
		dictionary.Entry{Surface: "東京", Cost: 100, Feature: "名詞,固有名詞,地域,一般,*,*,東京,トウキョウ,トーキョー"},
		dictionary.Entry{Surface: "京都", Cost: 100, Feature: "名詞,固有名詞,地域,一般,*,*,京都,キョウト,キョート"},
		dictionary.Entry{Surface: "都", Cost: 300, Feature: "名詞,接尾,地域,*,*,*,都,ト,ト"},
		dictionary.Entry{Surface: "東", Cost: 500, Feature: "名詞,一般,*,*,*,*,東,ヒガシ,ヒガシ"},
		dictionary.Entry{Surface: "京", Cost: 500, Feature: "名詞,固有名詞,地域,一般,*,*,京,キョウ,キョー"},
		dictionary.Entry{Surface: "に", Cost: 50, Feature: "助詞,格助詞,一般,*,*,*,に,ニ,ニ"},
		dictionary.Entry{Surface: "住む", Cost: 100, Feature: "動詞,自立,*,*,五段・マ行,基本形,住む,スム,スム"},
		dictionary.Entry{Surface: "住", Cost: 400, Feature: "名詞,一般,*,*,*,*,住,ジュウ,ジュー"},
		dictionary.Entry{Surface: "む", Cost: 400, Feature: "動詞,自立,*,*,*,*,む,ム,ム"},
		dictionary.Entry{Surface: "a", Cost: 10, Feature: "記号,アルファベット,*,*,*,*,a,エー,エー"},
		dictionary.Entry{Surface: "。", Cost: 20, Feature: "記号,句点,*,*,*,*,。,。,。"},
	)
	b.AddUser(
		dictionary.Entry{Surface: "東京都", Cost: 50, Feature: "名詞,固有名詞,地域,一般,*,*,東京都,トウキョウト,トーキョート"},
	)
	b.AddUnknown(
		dictionary.UnknownEntry{Category: dictionary.CategoryDefault, Group: true, Cost: 1000, Feature: "名詞,一般,*,*,*,*,*"},
		dictionary.UnknownEntry{Category: dictionary.CategorySpace, Group: true, Cost: 200, Feature: "記号,空白,*,*,*,*,*"},
		dictionary.UnknownEntry{Category: dictionary.CategoryAlpha, Group: true, Cost: 800, Feature: "名詞,固有名詞,組織,*,*,*,*"},
		dictionary.UnknownEntry{Category: dictionary.CategoryNumeric, Group: true, Cost: 800, Feature: "名詞,数,*,*,*,*,*"},
		dictionary.UnknownEntry{Category: dictionary.CategorySymbol, Cost: 1000, Feature: "記号,一般,*,*,*,*,*"},
		dictionary.UnknownEntry{Category: dictionary.CategoryHiragana, Cost: 1000, Feature: "名詞,一般,*,*,*,*,*"},
		dictionary.UnknownEntry{Category: dictionary.CategoryKatakana, Invoke: true, Group: true, Cost: 500, Feature: "名詞,一般,*,*,*,*,*"},
		dictionary.UnknownEntry{Category: dictionary.CategoryKanji, Cost: 1000, Feature: "名詞,一般,*,*,*,*,*"},
	)
	return b
}

// SampleDictionary builds the sample dictionary.
func SampleDictionary(t testing.TB) *dictionary.Dictionary {
	t.Helper()
	d, err := SampleBuilder().Build()
	if err != nil {
		t.Fatalf("build sample dictionary: %v", err)
	}
	return d
}

// SampleArtifact returns the sample dictionary as a compressed artifact.
func SampleArtifact(t testing.TB, codec dictionary.Codec) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := SampleDictionary(t).Write(&buf, codec); err != nil {
		t.Fatalf("write sample artifact: %v", err)
	}
	return buf.Bytes()
}

// WriteSampleArtifact writes the sample artifact into dir and returns its path.
func WriteSampleArtifact(t testing.TB, dir string, codec dictionary.Codec) string {
	t.Helper()
	path := filepath.Join(dir, "sample.dic."+codec.String())
	if err := os.WriteFile(path, SampleArtifact(t, codec), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// SampleUserLexiconCSV is a user lexicon in the CSV form read by
// dictionary.ParseLexicon.
const SampleUserLexiconCSV = `京都府,0,0,40,名詞,固有名詞,地域,一般,*,*,京都府,キョウトフ,キョートフ
スカイツリー,0,0,30,名詞,固有名詞,一般,*,*,*,スカイツリー,スカイツリー,スカイツリー
`

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// AssertFileExists checks that a file exists at the given path.
func AssertFileExists(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("expected file to exist: %s", path)
	}
}
