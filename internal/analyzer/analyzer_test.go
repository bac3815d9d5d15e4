package analyzer

import (
	"context"
	"math"
	"testing"

	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer/tokenizer"
	"github.com/avdeevsm/tfidf-analyzer/internal/corpus"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestComputeTF(t *testing.T) {
	stop := tokenizer.DefaultRussian()
	// "на" is a stop word, so five tokens survive and "кот" appears twice.
	tokens := tokenizer.Tokenize("кот сидит на окне кот смотрит", stop)

	tf := ComputeTF(tokens)
	if tf.TotalTokens != 5 {
		t.Fatalf("TotalTokens = %d, want 5", tf.TotalTokens)
	}
	if got := tf.TF["кот"]; !almostEqual(got, 2.0/5.0) {
		t.Errorf("TF(кот) = %v, want 0.4", got)
	}
	if got := tf.Counts["кот"]; got != 2 {
		t.Errorf("Counts(кот) = %d, want 2", got)
	}
}

func TestComputeTFWithoutStopFiltering(t *testing.T) {
	tokens := tokenizer.Tokenize("кот сидит на окне кот смотрит", nil)

	tf := ComputeTF(tokens)
	if tf.TotalTokens != 6 {
		t.Fatalf("TotalTokens = %d, want 6", tf.TotalTokens)
	}
	if got := tf.TF["кот"]; !almostEqual(got, 2.0/6.0) {
		t.Errorf("TF(кот) = %v, want 0.3333...", got)
	}
}

func TestComputeTFSumsToOne(t *testing.T) {
	tokens := tokenizer.Tokenize("гроза облако гроза море тишина облако гроза", nil)
	tf := ComputeTF(tokens)

	var sum float64
	for _, v := range tf.TF {
		sum += v
	}
	if !almostEqual(sum, 1.0) {
		t.Errorf("TF values sum to %v, want 1.0", sum)
	}
}

func TestComputeTFEmpty(t *testing.T) {
	tf := ComputeTF(nil)
	if tf.TotalTokens != 0 || len(tf.TF) != 0 || len(tf.Order) != 0 {
		t.Errorf("empty input: got %+v, want zero values", tf)
	}
}

func TestComputeTFFirstSeenOrder(t *testing.T) {
	tokens := tokenizer.Tokenize("окно кот окно гроза кот", nil)
	tf := ComputeTF(tokens)
	want := []string{"окно", "кот", "гроза"}
	if len(tf.Order) != len(want) {
		t.Fatalf("Order = %v, want %v", tf.Order, want)
	}
	for i, term := range want {
		if tf.Order[i] != term {
			t.Errorf("Order[%d] = %q, want %q", i, tf.Order[i], term)
		}
	}
}

func TestIDF(t *testing.T) {
	tests := []struct {
		name     string
		docCount int
		docFreq  int
		want     float64
	}{
		{"common term", 9, 3, math.Log(10.0 / 4.0)},
		{"unseen term", 5, 0, math.Log(6.0)},
		{"empty corpus", 0, 0, 0},
		{"term in every document", 7, 7, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IDF(tt.docCount, tt.docFreq); !almostEqual(got, tt.want) {
				t.Errorf("IDF(%d, %d) = %v, want %v", tt.docCount, tt.docFreq, got, tt.want)
			}
		})
	}
}

func TestIDFBounds(t *testing.T) {
	// While df <= N holds, 0 <= IDF <= ln(N+1).
	for n := 0; n <= 20; n++ {
		for df := 0; df <= n; df++ {
			got := IDF(n, df)
			if got < 0 {
				t.Fatalf("IDF(%d, %d) = %v, negative", n, df, got)
			}
			if max := math.Log(float64(n + 1)); got > max+epsilon {
				t.Fatalf("IDF(%d, %d) = %v, above ln(N+1) = %v", n, df, got, max)
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{TopWords: 0}).Validate(); err == nil {
		t.Error("TopWords = 0 should be a configuration error")
	}
	if err := (Config{TopWords: -5}).Validate(); err == nil {
		t.Error("negative TopWords should be a configuration error")
	}
	if err := (Config{TopWords: 50}).Validate(); err != nil {
		t.Errorf("TopWords = 50 should be valid, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{TopWords: 0}, corpus.NewMemoryStore()); err == nil {
		t.Fatal("expected construction error for TopWords = 0")
	}
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	a, err := New(Config{TopWords: 50}, corpus.NewMemoryStore())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, text := range []string{"", "   ", "... 123 !!!", "и на не что"} {
		result, err := a.Analyze(context.Background(), text)
		if err != nil {
			t.Fatalf("Analyze(%q) returned error: %v", text, err)
		}
		if len(result.Words) != 0 || result.TotalTokens != 0 {
			t.Errorf("Analyze(%q) = %+v, want empty result", text, result)
		}
	}
}

func TestAnalyzeAgainstGrowingCorpus(t *testing.T) {
	store := corpus.NewMemoryStore()
	a, err := New(Config{TopWords: 50}, store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	// Seed nine documents, three containing "гроза".
	for i := 0; i < 9; i++ {
		terms := []string{"облако"}
		if i < 3 {
			terms = append(terms, "гроза")
		}
		if err := store.RegisterDocument(ctx, string(rune('a'+i)), terms); err != nil {
			t.Fatalf("RegisterDocument: %v", err)
		}
	}

	result, err := a.Analyze(ctx, "гроза гремит")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.Words) != 2 {
		t.Fatalf("got %d words, want 2", len(result.Words))
	}

	byWord := map[string]float64{}
	for _, w := range result.Words {
		byWord[w.Word] = w.IDF
	}
	// N=9, df=3: ln(10/4) rounded to four decimals.
	if got := byWord["гроза"]; got != 0.9163 {
		t.Errorf("IDF(гроза) = %v, want 0.9163", got)
	}
	// Unseen in the corpus: ln(10/1).
	if got := byWord["гремит"]; got != round4(math.Log(10)) {
		t.Errorf("IDF(гремит) = %v, want %v", got, round4(math.Log(10)))
	}
	// Unseen term ranks above the known one.
	if result.Words[0].Word != "гремит" {
		t.Errorf("top word = %q, want гремит", result.Words[0].Word)
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func TestAnalyzeExcludesOwnDocument(t *testing.T) {
	store := corpus.NewMemoryStore()
	a, err := New(Config{TopWords: 50}, store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	// First document against an empty corpus: every IDF is ln(1/1) = 0.
	result, err := a.Analyze(ctx, "кот сидит")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, w := range result.Words {
		if w.IDF != 0 {
			t.Errorf("IDF(%s) = %v against empty corpus, want 0", w.Word, w.IDF)
		}
	}

	// Registering afterwards changes statistics only for later documents.
	if err := store.RegisterDocument(ctx, "doc-1", result.DistinctTerms); err != nil {
		t.Fatalf("RegisterDocument: %v", err)
	}
	second, err := a.Analyze(ctx, "кот сидит")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want := round4(math.Log(2.0 / 2.0))
	for _, w := range second.Words {
		if w.IDF != want {
			t.Errorf("IDF(%s) = %v, want %v", w.Word, w.IDF, want)
		}
	}
}

func TestAnalyzeTopWordsCap(t *testing.T) {
	a, err := New(Config{TopWords: 3}, corpus.NewMemoryStore())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := a.Analyze(context.Background(), "гроза облако море тишина кот собака")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.Words) != 3 {
		t.Errorf("got %d words, want 3", len(result.Words))
	}
	if len(result.DistinctTerms) != 6 {
		t.Errorf("DistinctTerms = %d, want all 6 despite the cap", len(result.DistinctTerms))
	}
}
