package intent

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/happyhackingspace/intent/classifier"
	"github.com/happyhackingspace/intent/internal/textutil"
	"github.com/happyhackingspace/intent/internal/vectorizer"
)

// Artifact file names inside a model directory.
const (
	WordsFile   = "words.json"
	ClassesFile = "classes.json"
	ModelFile   = "model.json"
)

const artifactVersion = 1

var (
	// ErrMissingArtifact is returned when a model directory lacks one of
	// the three artifact files.
	ErrMissingArtifact = errors.New("missing artifact")
	// ErrArtifactMismatch is returned when the artifacts were not produced
	// by the same training run or their widths disagree.
	ErrArtifactMismatch = errors.New("artifact mismatch")
)

type wordsArtifact struct {
	Version     int      `json:"version"`
	Fingerprint string   `json:"fingerprint"`
	Words       []string `json:"words"`
}

type classesArtifact struct {
	Version     int      `json:"version"`
	Fingerprint string   `json:"fingerprint"`
	Classes     []string `json:"classes"`
}

type modelArtifact struct {
	Version     int                      `json:"version"`
	Fingerprint string                   `json:"fingerprint"`
	Tokenizer   textutil.TokenizerConfig `json:"tokenizer"`
	Threshold   float64                  `json:"threshold"`
	Keywords    map[string][]string      `json:"keywords,omitempty"`
	Network     json.RawMessage          `json:"network"`
}

// bundle is the in-memory form of the three artifact files.
type bundle struct {
	words   wordsArtifact
	classes classesArtifact
	model   modelArtifact
}

// fingerprint identifies an ordered (words, classes) pair.
func fingerprint(words, classes []string) string {
	h := sha256.New()
	for _, w := range words {
		h.Write([]byte(w))
		h.Write([]byte{'\n'})
	}
	h.Write([]byte{0})
	for _, c := range classes {
		h.Write([]byte(c))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Save writes the vocabulary, class list and model to dir, creating it if
// needed. Each file is replaced atomically.
func (c *Classifier) Save(dir string) error {
	b, err := c.bundle()
	if err != nil {
		return fmt.Errorf("intent: %w", err)
	}
	if err := writeBundle(dir, b); err != nil {
		return fmt.Errorf("intent: %w", err)
	}
	return nil
}

func (c *Classifier) bundle() (bundle, error) {
	netData, err := classifier.MarshalNetwork(c.net)
	if err != nil {
		return bundle{}, err
	}
	fp := fingerprint(c.vocab.Words, c.vocab.Classes)
	return bundle{
		words:   wordsArtifact{Version: artifactVersion, Fingerprint: fp, Words: c.vocab.Words},
		classes: classesArtifact{Version: artifactVersion, Fingerprint: fp, Classes: c.vocab.Classes},
		model: modelArtifact{
			Version:     artifactVersion,
			Fingerprint: fp,
			Tokenizer:   c.tokenizer.Config(),
			Threshold:   c.encoder.Threshold(),
			Keywords:    c.keywords,
			Network:     netData,
		},
	}, nil
}

func writeBundle(dir string, b bundle) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := []struct {
		name string
		v    any
	}{
		{WordsFile, b.words},
		{ClassesFile, b.classes},
		{ModelFile, b.model},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.v); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a classifier from the three artifact files in dir. A missing
// file or any inconsistency between them is an error; nothing is truncated
// or padded to make them fit.
func Load(dir string, opts Options) (*Classifier, error) {
	b, err := readBundle(dir)
	if err != nil {
		return nil, fmt.Errorf("intent: %w", err)
	}
	c, err := fromBundle(b, opts)
	if err != nil {
		return nil, fmt.Errorf("intent: %s: %w", dir, err)
	}
	return c, nil
}

func readBundle(dir string) (bundle, error) {
	var b bundle
	if err := readJSON(filepath.Join(dir, WordsFile), &b.words); err != nil {
		return b, err
	}
	if err := readJSON(filepath.Join(dir, ClassesFile), &b.classes); err != nil {
		return b, err
	}
	if err := readJSON(filepath.Join(dir, ModelFile), &b.model); err != nil {
		return b, err
	}
	return b, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissingArtifact, path)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func fromBundle(b bundle, opts Options) (*Classifier, error) {
	for name, v := range map[string]int{
		WordsFile:   b.words.Version,
		ClassesFile: b.classes.Version,
		ModelFile:   b.model.Version,
	} {
		if v != artifactVersion {
			return nil, fmt.Errorf("%w: %s has version %d, want %d", ErrArtifactMismatch, name, v, artifactVersion)
		}
	}

	vocab := vectorizer.Vocabulary{Words: b.words.Words, Classes: b.classes.Classes}
	if err := vocab.Validate(); err != nil {
		return nil, err
	}
	fp := fingerprint(vocab.Words, vocab.Classes)
	if b.words.Fingerprint != fp || b.classes.Fingerprint != fp || b.model.Fingerprint != fp {
		return nil, fmt.Errorf("%w: %s, %s and %s come from different training runs",
			ErrArtifactMismatch, WordsFile, ClassesFile, ModelFile)
	}

	net, err := classifier.UnmarshalNetwork(b.model.Network)
	if err != nil {
		return nil, err
	}
	if net.InputSize() != len(vocab.Words) {
		return nil, fmt.Errorf("%w: model expects %d features, vocabulary has %d words",
			ErrArtifactMismatch, net.InputSize(), len(vocab.Words))
	}
	if net.OutputSize() != len(vocab.Classes) {
		return nil, fmt.Errorf("%w: model outputs %d classes, class list has %d",
			ErrArtifactMismatch, net.OutputSize(), len(vocab.Classes))
	}

	for tag := range b.model.Keywords {
		if vocab.ClassIndex(tag) < 0 {
			return nil, fmt.Errorf("%w: keywords for unknown class %q", ErrArtifactMismatch, tag)
		}
	}

	return newClassifier(b.model.Tokenizer, vocab, net, b.model.Threshold, b.model.Keywords, opts), nil
}
