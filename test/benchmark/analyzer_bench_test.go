// Package benchmark measures the hot paths of the TF-IDF pipeline:
// tokenization, TF computation, and full document analysis.
package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer"
	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer/tokenizer"
	"github.com/avdeevsm/tfidf-analyzer/internal/corpus"
)

var sampleTexts = map[string]string{
	"short": "Кот сидит на окне, кот смотрит в окно.",
	"medium": `Частотный анализ текста разбивает документ на отдельные слова,
        отбрасывает знаки препинания и числа и удаляет служебные слова.
        Для каждого оставшегося слова вычисляется относительная частота
        в документе и обратная документная частота по всей коллекции.
        Слова с высокой обратной частотой характерны именно для этого
        документа и поднимаются в начало таблицы результатов.`,
	"long": strings.Repeat(`Система хранит документы вместе с таблицей результатов
        анализа. Статистика коллекции растёт монотонно: удаление документа
        не уменьшает документные частоты. Снимок статистики читается до
        регистрации документа, поэтому документ не учитывается в своей
        собственной обратной частоте. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	stop := tokenizer.DefaultRussian()
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := tokenizer.Tokenize(text, stop)
				_ = tokens
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	stop := tokenizer.DefaultRussian()
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tokens := tokenizer.Tokenize(text, stop)
			_ = tokens
		}
	})
}

func BenchmarkComputeTF(b *testing.B) {
	stop := tokenizer.DefaultRussian()
	for name, text := range sampleTexts {
		tokens := tokenizer.Tokenize(text, stop)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				tf := analyzer.ComputeTF(tokens)
				_ = tf
			}
		})
	}
}

func BenchmarkAnalyze(b *testing.B) {
	store := corpus.NewMemoryStore()
	ctx := context.Background()
	// Pre-populate a corpus so IDF values are non-trivial.
	for i := 0; i < 1000; i++ {
		terms := []string{"документ", fmt.Sprintf("слово%d", i%50)}
		_ = store.RegisterDocument(ctx, fmt.Sprintf("doc-%d", i), terms)
	}
	a, err := analyzer.New(analyzer.Config{TopWords: 50}, store)
	if err != nil {
		b.Fatalf("New: %v", err)
	}

	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				result, err := a.Analyze(ctx, text)
				if err != nil {
					b.Fatal(err)
				}
				_ = result
			}
		})
	}
}
