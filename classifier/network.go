// Package classifier implements the feed-forward network that maps
// bag-of-words vectors to a probability distribution over intent classes.
package classifier

import (
	"fmt"
	"math"

	"github.com/happyhackingspace/intent/internal/vectorizer"
)

// Activation names accepted in serialized layers.
const (
	ActivationReLU    = "relu"
	ActivationSoftmax = "softmax"
)

// Layer is a dense layer followed by an activation and, during training only,
// dropout of its outputs.
type Layer struct {
	Weights    [][]float64 `json:"weights"` // [outputs][inputs]
	Bias       []float64   `json:"bias"`    // [outputs]
	Activation string      `json:"activation"`
	Dropout    float64     `json:"dropout,omitempty"`
}

// Inputs returns the layer's input width.
func (l *Layer) Inputs() int {
	if len(l.Weights) == 0 {
		return 0
	}
	return len(l.Weights[0])
}

// Outputs returns the layer's output width.
func (l *Layer) Outputs() int {
	return len(l.Weights)
}

// Network is a trained multi-layer perceptron. It is not modified after
// training and is safe for concurrent Predict calls.
type Network struct {
	Layers []Layer `json:"layers"`
}

// InputSize returns the expected feature vector width.
func (n *Network) InputSize() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return n.Layers[0].Inputs()
}

// OutputSize returns the number of classes the network scores.
func (n *Network) OutputSize() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return n.Layers[len(n.Layers)-1].Outputs()
}

// Validate checks layer shapes and activations.
func (n *Network) Validate() error {
	if len(n.Layers) == 0 {
		return fmt.Errorf("network has no layers")
	}
	prev := n.InputSize()
	if prev == 0 {
		return fmt.Errorf("network input width is zero")
	}
	for i := range n.Layers {
		l := &n.Layers[i]
		if l.Outputs() == 0 {
			return fmt.Errorf("layer %d has no outputs", i)
		}
		if len(l.Bias) != l.Outputs() {
			return fmt.Errorf("layer %d: %d biases for %d outputs", i, len(l.Bias), l.Outputs())
		}
		for j, row := range l.Weights {
			if len(row) != prev {
				return fmt.Errorf("layer %d row %d: width %d, want %d", i, j, len(row), prev)
			}
		}
		last := i == len(n.Layers)-1
		switch {
		case last && l.Activation != ActivationSoftmax:
			return fmt.Errorf("output layer activation %q, want %q", l.Activation, ActivationSoftmax)
		case !last && l.Activation != ActivationReLU:
			return fmt.Errorf("layer %d activation %q, want %q", i, l.Activation, ActivationReLU)
		}
		prev = l.Outputs()
	}
	return nil
}

// Predict returns the class probabilities for x. The result has OutputSize
// entries summing to 1.
func (n *Network) Predict(x vectorizer.SparseVector) []float64 {
	act := n.Layers[0].forwardSparse(x)
	for i := 1; i < len(n.Layers); i++ {
		act = n.Layers[i].forward(act)
	}
	return act
}

// Classify returns the index of the most probable class and its probability.
func (n *Network) Classify(x vectorizer.SparseVector) (int, float64) {
	probs := n.Predict(x)
	best, bestProb := 0, -1.0
	for i, p := range probs {
		if p > bestProb {
			best, bestProb = i, p
		}
	}
	return best, bestProb
}

func (l *Layer) forwardSparse(x vectorizer.SparseVector) []float64 {
	z := make([]float64, l.Outputs())
	for o, row := range l.Weights {
		z[o] = x.Dot(row) + l.Bias[o]
	}
	return l.activate(z)
}

func (l *Layer) forward(in []float64) []float64 {
	z := make([]float64, l.Outputs())
	for o, row := range l.Weights {
		sum := l.Bias[o]
		for i, v := range in {
			sum += row[i] * v
		}
		z[o] = sum
	}
	return l.activate(z)
}

func (l *Layer) activate(z []float64) []float64 {
	if l.Activation == ActivationSoftmax {
		return softmax(z)
	}
	for i, v := range z {
		if v < 0 {
			z[i] = 0
		}
	}
	return z
}

func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(l - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
