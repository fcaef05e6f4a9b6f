package textutil

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"hola mundo", []string{"hola", "mundo"}},
		{"¿cómo estás?", []string{"¿", "cómo", "estás", "?"}},
		{"user_name", []string{"user_name"}},
		{"", nil},
		{"  spaces  ", []string{"spaces"}},
		{"hola, benedit!", []string{"hola", ",", "benedit", "!"}},
		{"día-a-día", []string{"día", "-", "a", "-", "día"}},
	}
	for _, tt := range tests {
		got := Tokenize(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeWhitespaces(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello\nworld", "hello world"},
		{"hello\r\nworld", "hello world"},
		{"a  b   c", "a b c"},
	}
	for _, tt := range tests {
		got := NormalizeWhitespaces(tt.input)
		if got != tt.want {
			t.Errorf("NormalizeWhitespaces(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTokensWithoutLemmatizer(t *testing.T) {
	tok := NewTokenizer(TokenizerConfig{Language: "spanish", Ignore: DefaultIgnore})

	tests := []struct {
		input string
		want  []string
	}{
		{"¡Hola Benedit!", []string{"hola", "benedit"}},
		{"¿Qué TAL?", []string{"qué", "tal"}},
		{"   ", []string{}},
		{"", []string{}},
		{"ADIÓS, amigo.", []string{"adiós", "amigo"}},
	}
	for _, tt := range tests {
		got := tok.Tokens(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokens(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTokensComposesUnicode(t *testing.T) {
	tok := NewTokenizer(TokenizerConfig{Language: "spanish"})

	// "adiós" written with a combining acute accent.
	decomposed := "adio\u0301s"
	composed := "adi\u00f3s"

	got := tok.Tokens(decomposed)
	want := tok.Tokens(composed)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens(decomposed) = %q, want %q", got, want)
	}
}

func TestTokensSameForTrainingAndInference(t *testing.T) {
	tok := NewTokenizer(DefaultTokenizerConfig())

	inputs := []string{"Me siento muy triste hoy", "estoy ESTRESADO por los exámenes", "Buenas noches"}
	for _, in := range inputs {
		first := tok.Tokens(in)
		second := tok.Tokens(in)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Tokens(%q) not deterministic: %v vs %v", in, first, second)
		}
		for _, token := range first {
			if token == "" {
				t.Errorf("Tokens(%q) produced an empty token", in)
			}
		}
	}
}

func TestTokensDropsIgnoredPunctuation(t *testing.T) {
	tok := NewTokenizer(DefaultTokenizerConfig())
	for _, token := range tok.Tokens("¿¡hola!? ...") {
		for _, ign := range DefaultIgnore {
			if token == ign {
				t.Errorf("ignored token %q present", token)
			}
		}
	}
}

func TestTokenizerConfigRoundTrip(t *testing.T) {
	cfg := DefaultTokenizerConfig()
	tok := NewTokenizer(cfg)
	got := tok.Config()
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("Config() = %+v, want %+v", got, cfg)
	}

	// Mutating the returned slice must not affect the tokenizer.
	got.Ignore[0] = "x"
	if tok.Config().Ignore[0] == "x" {
		t.Error("Config() shares the ignore slice")
	}
}

func TestNewLemmatizerUnknownLanguage(t *testing.T) {
	if _, ok := NewLemmatizer("klingon").(Identity); !ok {
		t.Error("expected Identity lemmatizer for unsupported language")
	}
	if _, ok := NewLemmatizer("Spanish").(Snowball); !ok {
		t.Error("expected Snowball lemmatizer for spanish")
	}
}

func TestSnowballKeepsNonWords(t *testing.T) {
	s := Snowball{Language: "spanish"}
	for _, in := range []string{"123", "-", "😊"} {
		if got := s.Lemma(in); got != in {
			t.Errorf("Lemma(%q) = %q, want unchanged", in, got)
		}
	}
}
