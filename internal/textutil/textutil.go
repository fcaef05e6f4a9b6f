// Package textutil turns raw utterances into normalized, lemmatized tokens.
//
// The same Tokenizer must be used for training patterns and live utterances;
// its settings are persisted with the model for that reason.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultLanguage is the locale used for lowercasing and lemmatization.
const DefaultLanguage = "spanish"

// DefaultIgnore lists punctuation tokens dropped from every token sequence.
var DefaultIgnore = []string{"?", "!", ".", ",", "¡", "¿"}

// A word is a run of letters, digits or underscores; any other non-space
// rune becomes a token on its own.
var tokenizeRe = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+|[^\p{L}\p{M}\p{N}_\s]`)

// Tokenize splits text into word and punctuation tokens without changing case.
func Tokenize(text string) []string {
	return tokenizeRe.FindAllString(text, -1)
}

var (
	newlineRe    = regexp.MustCompile(`[\n\r]`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// NormalizeWhitespaces replaces newlines and multiple whitespace with a single space.
func NormalizeWhitespaces(text string) string {
	text = newlineRe.ReplaceAllString(text, " ")
	return multiSpaceRe.ReplaceAllString(text, " ")
}

// TokenizerConfig is the persisted description of a Tokenizer.
type TokenizerConfig struct {
	Language  string   `json:"language" yaml:"language"`
	Ignore    []string `json:"ignore" yaml:"ignore"`
	Lemmatize bool     `json:"lemmatize" yaml:"lemmatize"`
}

// DefaultTokenizerConfig returns the settings used when none are given.
func DefaultTokenizerConfig() TokenizerConfig {
	ignore := make([]string, len(DefaultIgnore))
	copy(ignore, DefaultIgnore)
	return TokenizerConfig{
		Language:  DefaultLanguage,
		Ignore:    ignore,
		Lemmatize: true,
	}
}

// Tokenizer lowercases, splits, filters and lemmatizes text.
// It is immutable and safe for concurrent use.
type Tokenizer struct {
	config TokenizerConfig
	lower  cases.Caser
	ignore map[string]bool
	lemma  Lemmatizer
}

// NewTokenizer builds a Tokenizer from its configuration.
func NewTokenizer(cfg TokenizerConfig) *Tokenizer {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	ignore := make(map[string]bool, len(cfg.Ignore))
	for _, tok := range cfg.Ignore {
		ignore[tok] = true
	}
	var lemma Lemmatizer = Identity{}
	if cfg.Lemmatize {
		lemma = NewLemmatizer(cfg.Language)
	}
	return &Tokenizer{
		config: cfg,
		lower:  cases.Lower(languageTag(cfg.Language)),
		ignore: ignore,
		lemma:  lemma,
	}
}

// Config returns the settings the tokenizer was built with.
func (t *Tokenizer) Config() TokenizerConfig {
	cfg := t.config
	cfg.Ignore = append([]string(nil), t.config.Ignore...)
	return cfg
}

// Tokens returns the normalized token sequence for text.
// Whitespace-only text yields an empty slice.
func (t *Tokenizer) Tokens(text string) []string {
	text = t.Normalize(text)
	raw := Tokenize(text)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if t.ignore[tok] {
			continue
		}
		lemma := t.lemma.Lemma(tok)
		if lemma == "" || t.ignore[lemma] {
			continue
		}
		tokens = append(tokens, lemma)
	}
	return tokens
}

// Normalize composes Unicode, lowercases with the tokenizer's locale and
// collapses whitespace.
func (t *Tokenizer) Normalize(text string) string {
	text = norm.NFC.String(text)
	text = t.lower.String(text)
	return strings.TrimSpace(NormalizeWhitespaces(text))
}

var languageTags = map[string]language.Tag{
	"english":   language.English,
	"spanish":   language.Spanish,
	"french":    language.French,
	"russian":   language.Russian,
	"swedish":   language.Swedish,
	"norwegian": language.Norwegian,
}

func languageTag(name string) language.Tag {
	if tag, ok := languageTags[strings.ToLower(name)]; ok {
		return tag
	}
	tag, err := language.Parse(name)
	if err != nil {
		return language.Und
	}
	return tag
}
