// Package ranker joins per-document term frequencies with corpus IDF values
// and selects the top-scoring words.
package ranker

import (
	"math"
	"sort"
)

// WordScore is one row of the ranked result table.
type WordScore struct {
	Word  string  `json:"word"`
	TF    float64 `json:"tf"`
	IDF   float64 `json:"idf"`
	TFIDF float64 `json:"tfidf"`
}

// Rank joins TF and IDF values per term and returns at most topN WordScores
// sorted by IDF descending. The sort is stable: terms with equal IDF keep
// the order given by firstSeen, which callers populate with the order terms
// were first encountered during tokenization. The result is therefore
// reproducible for identical input and identical corpus state. An empty
// input yields an empty, non-nil result.
func Rank(firstSeen []string, tf map[string]float64, idf map[string]float64, topN int) []WordScore {
	result := make([]WordScore, 0, len(firstSeen))
	for _, term := range firstSeen {
		termTF, ok := tf[term]
		if !ok {
			continue
		}
		termIDF := idf[term]
		result = append(result, WordScore{
			Word:  term,
			TF:    termTF,
			IDF:   termIDF,
			TFIDF: termTF * termIDF,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].IDF > result[j].IDF
	})
	if topN > 0 && len(result) > topN {
		result = result[:topN]
	}
	for i := range result {
		result[i].TF = round4(result[i].TF)
		result[i].IDF = round4(result[i].IDF)
		result[i].TFIDF = round4(result[i].TFIDF)
	}
	return result
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
