package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/wangbinyq/ja-tokenizer/internal/config"
	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
	"github.com/wangbinyq/ja-tokenizer/internal/metrics"
	"github.com/wangbinyq/ja-tokenizer/internal/server"
	"github.com/wangbinyq/ja-tokenizer/internal/testutil"
)

type wireToken struct {
	ID        uint32 `json:"id"`
	Surface   string `json:"surface"`
	LexType   uint8  `json:"lex_type"`
	RangeByte [2]int `json:"range_byte"`
	RangeChar [2]int `json:"range_char"`
}

// startServer loads a dictionary artifact from disk the way the service
// binary does and serves it over a real listener.
func startServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.DictPath = testutil.WriteSampleArtifact(t, dir, dictionary.CodecZstd)
	cfg.UserDictPath = testutil.WriteFile(t, dir, "user.csv", testutil.SampleUserLexiconCSV)
	if mutate != nil {
		mutate(&cfg)
	}

	tok, err := server.OpenTokenizer(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("OpenTokenizer: %v", err)
	}
	h := server.NewHandler(tok, server.Options{
		MaxTextBytes: cfg.MaxTextBytes,
		MaxBatch:     cfg.MaxBatch,
		MaxInflight:  cfg.MaxInflight,
	}, metrics.New(), nil)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, rawURL string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", rawURL, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, rawURL string, body, v interface{}) int {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(rawURL, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", rawURL, err)
		}
	}
	return resp.StatusCode
}

func tokenizeURL(base, text string) string {
	return base + "/tokenize?text=" + url.QueryEscape(text)
}

func TestE2E_EmptyText(t *testing.T) {
	srv := startServer(t, nil)

	var tokens []wireToken
	if code := getJSON(t, tokenizeURL(srv.URL, ""), &tokens); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if tokens == nil || len(tokens) != 0 {
		t.Errorf("tokens = %v, want empty list", tokens)
	}
}

func TestE2E_SingleSystemEntry(t *testing.T) {
	srv := startServer(t, nil)

	var tokens []wireToken
	getJSON(t, tokenizeURL(srv.URL, "a"), &tokens)
	want := []wireToken{{ID: testutil.SysA, Surface: "a", LexType: 1, RangeByte: [2]int{0, 1}, RangeChar: [2]int{0, 1}}}
	if fmt.Sprint(tokens) != fmt.Sprint(want) {
		t.Errorf("tokens = %v, want %v", tokens, want)
	}
}

func TestE2E_SentenceWithMergedUserLexicon(t *testing.T) {
	srv := startServer(t, nil)

	var tokens []wireToken
	postJSON(t, srv.URL+"/tokenize", map[string]string{"text": "京都府に住む"}, &tokens)

	want := []wireToken{
		{ID: 1, Surface: "京都府", LexType: 2, RangeByte: [2]int{0, 9}, RangeChar: [2]int{0, 3}},
		{ID: testutil.SysNi, Surface: "に", LexType: 1, RangeByte: [2]int{9, 12}, RangeChar: [2]int{3, 4}},
		{ID: testutil.SysSumu, Surface: "住む", LexType: 1, RangeByte: [2]int{12, 18}, RangeChar: [2]int{4, 6}},
	}
	if fmt.Sprint(tokens) != fmt.Sprint(want) {
		t.Errorf("tokens = %v, want %v", tokens, want)
	}

	// Every returned address resolves to a feature.
	for _, tok := range tokens {
		var body map[string]string
		u := fmt.Sprintf("%s/feature?id=%d&lex_type=%d", srv.URL, tok.ID, tok.LexType)
		if code := getJSON(t, u, &body); code != http.StatusOK {
			t.Errorf("feature for %q: status %d", tok.Surface, code)
		}
	}
}

func TestE2E_FeatureDefaultsToSystem(t *testing.T) {
	srv := startServer(t, nil)

	var implicit, explicit map[string]string
	getJSON(t, srv.URL+"/feature?id=0", &implicit)
	getJSON(t, srv.URL+"/feature?id=0&lex_type=1", &explicit)
	if implicit["feature"] == "" || implicit["feature"] != explicit["feature"] {
		t.Errorf("implicit %q, explicit %q", implicit["feature"], explicit["feature"])
	}
}

func TestE2E_UnrecognizedLexTypeIsUnknown(t *testing.T) {
	srv := startServer(t, nil)

	if code := getJSON(t, srv.URL+"/feature?id=99&lex_type=99", nil); code != http.StatusNotFound {
		t.Errorf("id=99 lex_type=99: status %d, want 404", code)
	}

	var unk, viaCode0 map[string]string
	getJSON(t, fmt.Sprintf("%s/feature?id=%d&lex_type=99", srv.URL, testutil.UnkKatakana), &unk)
	getJSON(t, fmt.Sprintf("%s/feature?id=%d&lex_type=0", srv.URL, testutil.UnkKatakana), &viaCode0)
	if unk["feature"] == "" || unk["feature"] != viaCode0["feature"] {
		t.Errorf("lex_type=99 %q, lex_type=0 %q", unk["feature"], viaCode0["feature"])
	}
}

func TestE2E_Batch(t *testing.T) {
	srv := startServer(t, func(c *config.Config) { c.Engine = "longest" })

	texts := []string{"東京タワー", "", "a  a"}
	var body struct {
		Results [][]wireToken `json:"results"`
	}
	if code := postJSON(t, srv.URL+"/tokenize/batch", map[string][]string{"texts": texts}, &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(body.Results) != len(texts) {
		t.Fatalf("results = %d, want %d", len(body.Results), len(texts))
	}
	for i, text := range texts {
		var rebuilt string
		for _, tok := range body.Results[i] {
			rebuilt += tok.Surface
		}
		if rebuilt != text {
			t.Errorf("result %d rebuilds %q, want %q", i, rebuilt, text)
		}
	}
}
