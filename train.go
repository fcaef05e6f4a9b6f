package intent

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/happyhackingspace/intent/classifier"
	"github.com/happyhackingspace/intent/internal/catalog"
	"github.com/happyhackingspace/intent/internal/textutil"
	"github.com/happyhackingspace/intent/internal/vectorizer"
)

// TrainConfig holds configuration for training.
type TrainConfig struct {
	Network   classifier.TrainConfig
	Tokenizer textutil.TokenizerConfig
	Threshold float64
}

// DefaultTrainConfig returns the default training configuration.
func DefaultTrainConfig() *TrainConfig {
	return &TrainConfig{
		Network:   classifier.DefaultTrainConfig(),
		Tokenizer: textutil.DefaultTokenizerConfig(),
		Threshold: vectorizer.DefaultThreshold,
	}
}

// Train trains a classifier on the labeled patterns of the catalog at
// catalogPath. A nil config uses DefaultTrainConfig.
func Train(catalogPath string, config *TrainConfig) (*Classifier, error) {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("intent: %w", err)
	}
	return TrainCatalog(cat, config)
}

// TrainCatalog trains a classifier on an already loaded catalog.
func TrainCatalog(cat *catalog.Catalog, config *TrainConfig) (*Classifier, error) {
	if config == nil {
		config = DefaultTrainConfig()
	}
	tok := textutil.NewTokenizer(config.Tokenizer)

	docs, err := documents(cat, tok)
	if err != nil {
		return nil, fmt.Errorf("intent: %w", err)
	}
	c, err := fit(docs, tok, config, cat.Keywords())
	if err != nil {
		return nil, fmt.Errorf("intent: %w", err)
	}
	return c, nil
}

// documents tokenizes every pattern of every entry. Entries without usable
// patterns are rejected rather than silently producing an untrainable class.
func documents(cat *catalog.Catalog, tok *textutil.Tokenizer) ([]vectorizer.Document, error) {
	if len(cat.Entries) == 0 {
		return nil, fmt.Errorf("catalog has no intents")
	}
	var docs []vectorizer.Document
	for _, e := range cat.Entries {
		if len(e.Patterns) == 0 {
			return nil, fmt.Errorf("intent %q: no patterns", e.Tag)
		}
		for _, p := range e.Patterns {
			tokens := tok.Tokens(p)
			if len(tokens) == 0 {
				return nil, fmt.Errorf("intent %q: pattern %q has no tokens", e.Tag, p)
			}
			docs = append(docs, vectorizer.Document{Tokens: tokens, Tag: e.Tag})
		}
	}
	return docs, nil
}

func fit(docs []vectorizer.Document, tok *textutil.Tokenizer, config *TrainConfig, keywords map[string][]string) (*Classifier, error) {
	cfg := tok.Config()
	vocab := vectorizer.BuildVocabulary(docs, cfg.Ignore)
	if err := vocab.Validate(); err != nil {
		return nil, err
	}
	slog.Info("Vocabulary built", "patterns", len(docs), "words", len(vocab.Words), "classes", len(vocab.Classes))

	enc := vectorizer.NewEncoder(vocab.Words, config.Threshold)
	examples := make([]classifier.Example, len(docs))
	for i, doc := range docs {
		examples[i] = classifier.Example{
			X: enc.Encode(doc.Tokens),
			Y: vocab.ClassIndex(doc.Tag),
		}
	}

	net, err := classifier.Train(examples, len(vocab.Words), len(vocab.Classes), config.Network)
	if err != nil {
		return nil, err
	}

	kept := make(map[string][]string, len(keywords))
	for tag, kws := range keywords {
		if vocab.ClassIndex(tag) >= 0 {
			kept[tag] = kws
		}
	}
	return newClassifier(cfg, vocab, net, enc.Threshold(), kept, Options{}), nil
}

// CheckTags reports an error unless tags is exactly the classifier's class
// set, as required for every predicted intent to have a catalog entry.
func (c *Classifier) CheckTags(tags []string) error {
	have := make(map[string]bool, len(tags))
	for _, t := range tags {
		have[t] = true
	}
	var missing, extra []string
	for _, cls := range c.vocab.Classes {
		if !have[cls] {
			missing = append(missing, cls)
		}
		delete(have, cls)
	}
	for t := range have {
		extra = append(extra, t)
	}
	sort.Strings(extra)
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "classes without catalog entry: "+strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		parts = append(parts, "catalog entries without class: "+strings.Join(extra, ", "))
	}
	return fmt.Errorf("intent: %w: %s", ErrArtifactMismatch, strings.Join(parts, "; "))
}
