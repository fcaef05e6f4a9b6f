package vectorizer

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSparseVector(t *testing.T) {
	sv := NewSparseVector(5)
	sv.Set(1, 2.0)
	sv.Set(3, 4.0)
	sv.Set(1, 1.0)

	dense := sv.ToDense()
	if dense[1] != 1.0 || dense[3] != 4.0 || dense[0] != 0.0 {
		t.Errorf("ToDense unexpected: %v", dense)
	}
	if sv.Nnz() != 2 {
		t.Errorf("Nnz = %d, want 2", sv.Nnz())
	}
	if sv.Get(3) != 4.0 || sv.Get(2) != 0 {
		t.Errorf("Get unexpected: %v %v", sv.Get(3), sv.Get(2))
	}

	dot := sv.Dot([]float64{1, 2, 3, 4, 5})
	expected := 1.0*2 + 4.0*4
	if dot != expected {
		t.Errorf("Dot = %v, want %v", dot, expected)
	}
}

func TestBuildVocabulary(t *testing.T) {
	docs := []Document{
		{Tokens: []string{"hola", "amigo", "?"}, Tag: "saludo"},
		{Tokens: []string{"buenas", "amigo"}, Tag: "saludo"},
		{Tokens: []string{"chao"}, Tag: "despedida"},
	}
	v := BuildVocabulary(docs, []string{"?"})

	if diff := cmp.Diff([]string{"amigo", "buenas", "chao", "hola"}, v.Words); diff != "" {
		t.Errorf("Words mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"despedida", "saludo"}, v.Classes); diff != "" {
		t.Errorf("Classes mismatch (-want +got):\n%s", diff)
	}
	if err := v.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBuildVocabularyStable(t *testing.T) {
	docs := []Document{
		{Tokens: []string{"z", "b", "a"}, Tag: "y"},
		{Tokens: []string{"c", "a"}, Tag: "x"},
		{Tokens: []string{"b"}, Tag: "y"},
	}
	first := BuildVocabulary(docs, nil)
	for range 10 {
		again := BuildVocabulary(docs, nil)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("rebuild differs (-first +again):\n%s", diff)
		}
	}
}

func TestVocabularyClassIndex(t *testing.T) {
	v := Vocabulary{Words: []string{"a"}, Classes: []string{"despedida", "saludo", "tristeza"}}
	if got := v.ClassIndex("saludo"); got != 1 {
		t.Errorf("ClassIndex(saludo) = %d, want 1", got)
	}
	if got := v.ClassIndex("ansiedad"); got != -1 {
		t.Errorf("ClassIndex(ansiedad) = %d, want -1", got)
	}
}

func TestVocabularyValidate(t *testing.T) {
	tests := []struct {
		name string
		v    Vocabulary
	}{
		{"empty words", Vocabulary{Classes: []string{"a"}}},
		{"empty classes", Vocabulary{Words: []string{"a"}}},
		{"unsorted words", Vocabulary{Words: []string{"b", "a"}, Classes: []string{"a"}}},
		{"duplicate classes", Vocabulary{Words: []string{"a"}, Classes: []string{"a", "a"}}},
	}
	for _, tt := range tests {
		if err := tt.v.Validate(); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"hola", "hola", 1.0},
		{"abcd", "bcde", 0.75},
		{"hola", "holaa", 8.0 / 9.0},
		{"adiós", "adios", 0.8},
		{"", "", 1.0},
		{"abc", "", 0.0},
	}
	for _, tt := range tests {
		got := Ratio(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEncodeExactMatchSetsBit(t *testing.T) {
	words := []string{"amigo", "chao", "hola", "triste"}
	enc := NewEncoder(words, 0)

	for i, w := range words {
		sv := enc.Encode([]string{w})
		if sv.Get(i) != 1.0 {
			t.Errorf("Encode(%q) did not set bit %d", w, i)
		}
	}
}

func TestEncodeFuzzyMatch(t *testing.T) {
	enc := NewEncoder([]string{"hola", "triste"}, DefaultThreshold)

	sv := enc.Encode([]string{"holaa"})
	if sv.Get(0) != 1.0 {
		t.Error("expected typo 'holaa' to match 'hola'")
	}
	sv = enc.Encode([]string{"tristes"})
	if sv.Get(1) != 1.0 {
		t.Error("expected 'tristes' to match 'triste'")
	}
}

func TestEncodeBelowThresholdSetsNothing(t *testing.T) {
	enc := NewEncoder([]string{"amigo", "chao", "hola"}, DefaultThreshold)
	sv := enc.Encode([]string{"xyzxyz", "qwerty"})
	if sv.Nnz() != 0 {
		t.Errorf("expected no bits, got %v", sv.Indices)
	}

	// "adiós" vs "adios" is exactly 0.8, which does not exceed the threshold.
	enc = NewEncoder([]string{"adios"}, DefaultThreshold)
	if sv := enc.Encode([]string{"adiós"}); sv.Nnz() != 0 {
		t.Errorf("ratio equal to threshold must not set a bit")
	}
}

func TestEncodeEmpty(t *testing.T) {
	enc := NewEncoder([]string{"a", "b", "c"}, 0)
	for _, tokens := range [][]string{nil, {}} {
		sv := enc.Encode(tokens)
		if sv.Dim != 3 {
			t.Errorf("Dim = %d, want 3", sv.Dim)
		}
		if sv.Nnz() != 0 {
			t.Errorf("expected zero vector, got %v", sv.Indices)
		}
		for _, v := range sv.ToDense() {
			if v != 0 {
				t.Fatalf("non-zero entry in %v", sv.ToDense())
			}
		}
	}
}

func TestEncodeMatchesBruteForce(t *testing.T) {
	words := []string{"a", "ab", "abc", "abcd", "ansiedad", "ansioso", "estres", "estresado"}
	tokens := []string{"ansiosa", "estresada", "abce", "b"}
	enc := NewEncoder(words, DefaultThreshold)
	sv := enc.Encode(tokens)

	for i, w := range words {
		want := 0.0
		for _, tok := range tokens {
			if Ratio(tok, w) > DefaultThreshold {
				want = 1.0
			}
		}
		if got := sv.Get(i); got != want {
			t.Errorf("bit %d (%q) = %v, want %v", i, w, got, want)
		}
	}
}

func TestCanExceed(t *testing.T) {
	if canExceed(3, 5, 0.8) {
		t.Error("3 vs 5 runes cannot exceed 0.8")
	}
	if !canExceed(4, 5, 0.8) {
		t.Error("4 vs 5 runes can exceed 0.8")
	}
	if !canExceed(0, 0, 0.8) {
		t.Error("two empty strings have ratio 1")
	}
}

func TestSparseVectorSorted(t *testing.T) {
	sv := NewSparseVector(10)
	for _, idx := range []int{7, 2, 9, 2, 0} {
		sv.Set(idx, float64(idx+1))
	}
	if diff := cmp.Diff([]int{0, 2, 7, 9}, sv.Indices); diff != "" {
		t.Errorf("Indices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 3, 8, 10}, sv.Values); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}
}
