package textutil

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

// Lemmatizer reduces a lowercase token to its base form.
type Lemmatizer interface {
	Lemma(token string) string
}

// Identity leaves tokens unchanged.
type Identity struct{}

// Lemma returns token as is.
func (Identity) Lemma(token string) string { return token }

// Snowball reduces tokens with the Snowball stemmer of a fixed language.
type Snowball struct {
	Language string
}

var snowballLanguages = map[string]bool{
	"english":   true,
	"spanish":   true,
	"french":    true,
	"russian":   true,
	"swedish":   true,
	"norwegian": true,
}

// NewLemmatizer returns the Snowball lemmatizer for lang, or Identity when
// the language has no stemmer.
func NewLemmatizer(lang string) Lemmatizer {
	lang = strings.ToLower(lang)
	if !snowballLanguages[lang] {
		slog.Warn("No stemmer for language, lemmatization disabled", "language", lang)
		return Identity{}
	}
	return Snowball{Language: lang}
}

// Lemma stems token. Tokens without letters and tokens the stemmer rejects
// are returned unchanged.
func (s Snowball) Lemma(token string) string {
	if !strings.ContainsFunc(token, unicode.IsLetter) {
		return token
	}
	stemmed, err := snowball.Stem(token, s.Language, false)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}
