package ranker

import (
	"testing"
)

func TestRankSortsByIDFDescending(t *testing.T) {
	firstSeen := []string{"кот", "окно", "гроза"}
	tf := map[string]float64{"кот": 0.5, "окно": 0.3, "гроза": 0.2}
	idf := map[string]float64{"кот": 0.1, "окно": 1.2, "гроза": 2.5}

	got := Rank(firstSeen, tf, idf, 10)
	want := []string{"гроза", "окно", "кот"}
	for i, w := range want {
		if got[i].Word != w {
			t.Errorf("position %d: got %q, want %q", i, got[i].Word, w)
		}
	}
}

func TestRankTieBreakIsFirstSeenOrder(t *testing.T) {
	// All IDFs equal: the ranking must preserve first-seen order.
	firstSeen := []string{"окно", "кот", "гроза"}
	tf := map[string]float64{"окно": 0.2, "кот": 0.5, "гроза": 0.3}
	idf := map[string]float64{"окно": 1.0, "кот": 1.0, "гроза": 1.0}

	got := Rank(firstSeen, tf, idf, 10)
	for i, w := range firstSeen {
		if got[i].Word != w {
			t.Errorf("position %d: got %q, want %q", i, got[i].Word, w)
		}
	}
}

func TestRankTruncatesToTopN(t *testing.T) {
	firstSeen := []string{"a1x", "b2x", "c3x", "d4x"}
	tf := map[string]float64{"a1x": 0.25, "b2x": 0.25, "c3x": 0.25, "d4x": 0.25}
	idf := map[string]float64{"a1x": 4, "b2x": 3, "c3x": 2, "d4x": 1}

	got := Rank(firstSeen, tf, idf, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Word != "a1x" || got[1].Word != "b2x" {
		t.Errorf("got %q, %q; want a1x, b2x", got[0].Word, got[1].Word)
	}
}

func TestRankEmptyInput(t *testing.T) {
	got := Rank(nil, map[string]float64{}, map[string]float64{}, 5)
	if got == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestRankRoundsToFourDecimals(t *testing.T) {
	firstSeen := []string{"кот"}
	tf := map[string]float64{"кот": 1.0 / 3.0}
	idf := map[string]float64{"кот": 0.916290731874155}

	got := Rank(firstSeen, tf, idf, 1)
	if got[0].TF != 0.3333 {
		t.Errorf("TF = %v, want 0.3333", got[0].TF)
	}
	if got[0].IDF != 0.9163 {
		t.Errorf("IDF = %v, want 0.9163", got[0].IDF)
	}
	if got[0].TFIDF != 0.3054 {
		t.Errorf("TFIDF = %v, want 0.3054", got[0].TFIDF)
	}
}

func TestRankSortsBeforeRounding(t *testing.T) {
	// The IDFs differ only past the fourth decimal. Rounding first would
	// produce a tie and first-seen order; sorting on exact values must put
	// the larger one first.
	firstSeen := []string{"окно", "кот"}
	tf := map[string]float64{"окно": 0.5, "кот": 0.5}
	idf := map[string]float64{"окно": 1.00001, "кот": 1.00004}

	got := Rank(firstSeen, tf, idf, 2)
	if got[0].Word != "кот" {
		t.Errorf("got %q first, want кот", got[0].Word)
	}
}
