package huffman

import (
	"strings"
	"testing"
)

func TestBuildCodeEmpty(t *testing.T) {
	if code := BuildCode(""); len(code) != 0 {
		t.Errorf("BuildCode(\"\") = %v, want empty table", code)
	}
	if encoded := Encode(""); encoded != "" {
		t.Errorf("Encode(\"\") = %q, want \"\"", encoded)
	}
}

func TestBuildCodeSingleRune(t *testing.T) {
	code := BuildCode("aaaa")
	if got := code['a']; got != "0" {
		t.Errorf("code(a) = %q, want \"0\"", got)
	}
	if encoded := Encode("aaaa"); encoded != "0000" {
		t.Errorf("Encode(\"aaaa\") = %q, want \"0000\"", encoded)
	}
}

func TestCodeIsPrefixFree(t *testing.T) {
	code := BuildCode("кот сидит на окне кот смотрит")
	for r1, c1 := range code {
		for r2, c2 := range code {
			if r1 != r2 && strings.HasPrefix(c1, c2) {
				t.Errorf("code(%q)=%q is a prefix of code(%q)=%q", r2, c2, r1, c1)
			}
		}
	}
}

func TestMoreFrequentRunesGetShorterCodes(t *testing.T) {
	// 'a' dominates the input, so its code must be no longer than any other.
	code := BuildCode("aaaaaaaaaabbbc")
	for r, c := range code {
		if r != 'a' && len(code['a']) > len(c) {
			t.Errorf("code(a)=%q longer than code(%q)=%q", code['a'], r, c)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	text := "кот сидит на окне"
	first := Encode(text)
	for i := 0; i < 5; i++ {
		if again := Encode(text); again != first {
			t.Fatalf("run %d differs: %q vs %q", i, again, first)
		}
	}
}

func TestEncodedLengthMatchesCodeTable(t *testing.T) {
	text := "гроза облако море"
	code := BuildCode(text)
	want := 0
	for _, r := range text {
		want += len(code[r])
	}
	if got := len(Encode(text)); got != want {
		t.Errorf("encoded length = %d, want %d", got, want)
	}
}
