// Package intent classifies free-form utterances into a fixed set of intents.
//
// A Classifier bundles the tokenizer settings, the ordered vocabulary, the
// ordered class list and the trained network. It is built by Train and
// persisted as three co-versioned files by Save.
//
//	c, _ := intent.Load("model", intent.Options{})
//	for _, cand := range c.Predict("hola, ¿cómo estás?") {
//	    fmt.Println(cand.Tag, cand.Probability) // "saludo" 0.93
//	}
package intent

import (
	"sort"
	"strings"

	"github.com/happyhackingspace/intent/classifier"
	"github.com/happyhackingspace/intent/internal/textutil"
	"github.com/happyhackingspace/intent/internal/vectorizer"
)

// DefaultFloor is the probability a candidate must exceed to be reported.
const DefaultFloor = 0.15

// Candidate is one ranked intent.
type Candidate struct {
	Tag         string  `json:"tag"`
	Probability float64 `json:"probability"`
}

// Options overrides persisted or default prediction settings.
// Zero values keep the persisted (or default) value.
type Options struct {
	Floor     float64
	Threshold float64
}

// Classifier predicts intents for utterances. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	tokenizer *textutil.Tokenizer
	encoder   *vectorizer.Encoder
	vocab     vectorizer.Vocabulary
	net       *classifier.Network
	floor     float64
	keywords  map[string][]string
}

func newClassifier(tok textutil.TokenizerConfig, vocab vectorizer.Vocabulary, net *classifier.Network, threshold float64, keywords map[string][]string, opts Options) *Classifier {
	if opts.Threshold > 0 {
		threshold = opts.Threshold
	}
	floor := DefaultFloor
	if opts.Floor > 0 {
		floor = opts.Floor
	}
	tokenizer := textutil.NewTokenizer(tok)
	return &Classifier{
		tokenizer: tokenizer,
		encoder:   vectorizer.NewEncoder(vocab.Words, threshold),
		vocab:     vocab,
		net:       net,
		floor:     floor,
		keywords:  normalizeKeywords(tokenizer, keywords),
	}
}

// Predict returns the intents whose probability exceeds the floor, most
// probable first. Equal probabilities keep class-list order. An utterance
// that matches no vocabulary word yields an empty slice.
func (c *Classifier) Predict(utterance string) []Candidate {
	x := c.encoder.Encode(c.tokenizer.Tokens(utterance))
	if x.Nnz() == 0 {
		return []Candidate{}
	}
	probs := c.net.Predict(x)

	out := make([]Candidate, 0, len(probs))
	for i, p := range probs {
		if p > c.floor {
			out = append(out, Candidate{Tag: c.vocab.Classes[i], Probability: p})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}

// Top returns the most probable intent, if any clears the floor.
func (c *Classifier) Top(utterance string) (Candidate, bool) {
	cands := c.Predict(utterance)
	if len(cands) == 0 {
		return Candidate{}, false
	}
	return cands[0], true
}

// Route applies keyword shortcuts before prediction: if the normalized
// utterance contains a keyword of some intent, that intent is returned with
// probability 1. Otherwise it behaves like Top.
func (c *Classifier) Route(utterance string) (Candidate, bool) {
	if len(c.keywords) > 0 {
		text := c.tokenizer.Normalize(utterance)
		for _, tag := range c.vocab.Classes {
			for _, kw := range c.keywords[tag] {
				if strings.Contains(text, kw) {
					return Candidate{Tag: tag, Probability: 1}, true
				}
			}
		}
	}
	return c.Top(utterance)
}

// Tokens returns the normalized token sequence the classifier sees.
func (c *Classifier) Tokens(utterance string) []string {
	return c.tokenizer.Tokens(utterance)
}

// Words returns a copy of the vocabulary in feature order.
func (c *Classifier) Words() []string {
	return append([]string(nil), c.vocab.Words...)
}

// Classes returns a copy of the class list in output order.
func (c *Classifier) Classes() []string {
	return append([]string(nil), c.vocab.Classes...)
}

// Floor returns the probability floor in use.
func (c *Classifier) Floor() float64 {
	return c.floor
}

// Threshold returns the fuzzy-match threshold in use.
func (c *Classifier) Threshold() float64 {
	return c.encoder.Threshold()
}

func normalizeKeywords(tok *textutil.Tokenizer, keywords map[string][]string) map[string][]string {
	if len(keywords) == 0 {
		return nil
	}
	out := make(map[string][]string, len(keywords))
	for tag, kws := range keywords {
		for _, kw := range kws {
			if kw = tok.Normalize(kw); kw != "" {
				out[tag] = append(out[tag], kw)
			}
		}
	}
	return out
}
