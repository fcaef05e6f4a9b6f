package intent

import (
	"log/slog"
	"sync/atomic"
)

// Handle holds the current Classifier and lets it be replaced while other
// goroutines keep predicting. A reader always sees one complete bundle.
type Handle struct {
	cur  atomic.Pointer[Classifier]
	opts Options
}

// NewHandle returns a Handle serving c.
func NewHandle(c *Classifier, opts Options) *Handle {
	h := &Handle{opts: opts}
	h.cur.Store(c)
	return h
}

// OpenHandle loads the artifacts in dir and returns a Handle serving them.
func OpenHandle(dir string, opts Options) (*Handle, error) {
	c, err := Load(dir, opts)
	if err != nil {
		return nil, err
	}
	return NewHandle(c, opts), nil
}

// Classifier returns the classifier currently served.
func (h *Handle) Classifier() *Classifier {
	return h.cur.Load()
}

// Predict classifies utterance with the current classifier.
func (h *Handle) Predict(utterance string) []Candidate {
	return h.cur.Load().Predict(utterance)
}

// Reload loads the artifacts in dir and swaps them in. On error the
// previous classifier keeps serving.
func (h *Handle) Reload(dir string) error {
	c, err := Load(dir, h.opts)
	if err != nil {
		slog.Warn("Reload failed, keeping current model", "dir", dir, "error", err)
		return err
	}
	h.Swap(c)
	slog.Info("Model reloaded", "dir", dir, "words", len(c.vocab.Words), "classes", len(c.vocab.Classes))
	return nil
}

// Swap replaces the served classifier and returns the previous one.
func (h *Handle) Swap(c *Classifier) *Classifier {
	if c == nil {
		panic("intent: Swap with nil classifier")
	}
	return h.cur.Swap(c)
}
