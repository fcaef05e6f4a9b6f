package classifier

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/happyhackingspace/intent/internal/vectorizer"
)

// Example is one training pair: a feature vector and its class index.
type Example struct {
	X vectorizer.SparseVector
	Y int
}

// TrainConfig holds network shape and optimizer hyperparameters.
type TrainConfig struct {
	Hidden       []int     // hidden layer widths, input side first
	Dropout      []float64 // dropout rate after each hidden layer
	Epochs       int
	BatchSize    int
	LearningRate float64
	Decay        float64 // learning rate time decay per update
	Momentum     float64
	Nesterov     bool
	Seed         uint64
}

// DefaultTrainConfig returns the default two-hidden-layer configuration.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Hidden:       []int{256, 128},
		Dropout:      []float64{0.5, 0.3},
		Epochs:       300,
		BatchSize:    5,
		LearningRate: 0.01,
		Decay:        1e-6,
		Momentum:     0.9,
		Nesterov:     true,
		Seed:         1,
	}
}

func (c TrainConfig) validate() error {
	if len(c.Hidden) != len(c.Dropout) {
		return fmt.Errorf("%d hidden layers but %d dropout rates", len(c.Hidden), len(c.Dropout))
	}
	for i, h := range c.Hidden {
		if h <= 0 {
			return fmt.Errorf("hidden layer %d width %d", i, h)
		}
	}
	for i, p := range c.Dropout {
		if p < 0 || p >= 1 {
			return fmt.Errorf("dropout %d rate %v outside [0, 1)", i, p)
		}
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %v", c.LearningRate)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return fmt.Errorf("momentum %v outside [0, 1)", c.Momentum)
	}
	return nil
}

// Train fits a network mapping inputSize-wide vectors to numClasses
// probabilities by minimizing categorical cross-entropy with mini-batch SGD.
// Training is deterministic for a given Seed.
func Train(examples []Example, inputSize, numClasses int, config TrainConfig) (*Network, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("no training examples")
	}
	if inputSize <= 0 {
		return nil, fmt.Errorf("input width must be positive, got %d", inputSize)
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("class count must be positive, got %d", numClasses)
	}
	for i, ex := range examples {
		if ex.X.Dim != inputSize {
			return nil, fmt.Errorf("example %d: width %d, want %d", i, ex.X.Dim, inputSize)
		}
		if ex.Y < 0 || ex.Y >= numClasses {
			return nil, fmt.Errorf("example %d: class %d out of range [0, %d)", i, ex.Y, numClasses)
		}
	}

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	rng := rand.New(rand.NewPCG(config.Seed, config.Seed^0x9e3779b97f4a7c15))
	net := newNetwork(inputSize, numClasses, config, rng)
	opt := newSGD(net, config)

	order := make([]int, len(examples))
	for i := range order {
		order[i] = i
	}

	var loss, acc float64
	for epoch := range config.Epochs {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var lossSum float64
		correct := 0
		for start := 0; start < len(order); start += batchSize {
			end := min(start+batchSize, len(order))
			batch := make([]Example, 0, end-start)
			for _, idx := range order[start:end] {
				batch = append(batch, examples[idx])
			}
			bl, bc := opt.step(batch, rng)
			lossSum += bl
			correct += bc
		}
		loss = lossSum / float64(len(examples))
		acc = float64(correct) / float64(len(examples))
		slog.Debug("Epoch", "epoch", epoch+1, "loss", loss, "accuracy", acc, "lr", opt.currentLR())
	}

	slog.Info("Network trained", "examples", len(examples), "epochs", config.Epochs, "loss", loss, "accuracy", acc)
	return net, nil
}

// newNetwork builds ReLU hidden layers and a softmax output layer with
// Glorot-uniform weights and zero biases.
func newNetwork(inputSize, numClasses int, config TrainConfig, rng *rand.Rand) *Network {
	widths := append([]int{inputSize}, config.Hidden...)
	widths = append(widths, numClasses)

	net := &Network{Layers: make([]Layer, len(widths)-1)}
	for i := range net.Layers {
		in, out := widths[i], widths[i+1]
		limit := math.Sqrt(6.0 / float64(in+out))
		l := Layer{
			Weights:    make([][]float64, out),
			Bias:       make([]float64, out),
			Activation: ActivationReLU,
		}
		for o := range out {
			l.Weights[o] = make([]float64, in)
			for j := range in {
				l.Weights[o][j] = (rng.Float64()*2 - 1) * limit
			}
		}
		if i < len(config.Dropout) {
			l.Dropout = config.Dropout[i]
		}
		if i == len(net.Layers)-1 {
			l.Activation = ActivationSoftmax
		}
		net.Layers[i] = l
	}
	return net
}

// sgd is stochastic gradient descent with momentum and time-based decay.
type sgd struct {
	net        *Network
	lr         float64
	decay      float64
	momentum   float64
	nesterov   bool
	iterations int

	velW  [][][]float64
	velB  [][]float64
	gradW [][][]float64
	gradB [][]float64
}

func newSGD(net *Network, config TrainConfig) *sgd {
	o := &sgd{
		net:      net,
		lr:       config.LearningRate,
		decay:    config.Decay,
		momentum: config.Momentum,
		nesterov: config.Nesterov,
	}
	for _, l := range net.Layers {
		o.velW = append(o.velW, zeros2(l.Outputs(), l.Inputs()))
		o.gradW = append(o.gradW, zeros2(l.Outputs(), l.Inputs()))
		o.velB = append(o.velB, make([]float64, l.Outputs()))
		o.gradB = append(o.gradB, make([]float64, l.Outputs()))
	}
	return o
}

func (o *sgd) currentLR() float64 {
	return o.lr / (1 + o.decay*float64(o.iterations))
}

// step accumulates mean gradients over batch, applies one update and returns
// the summed loss and the number of correctly classified examples.
func (o *sgd) step(batch []Example, rng *rand.Rand) (float64, int) {
	for l := range o.gradW {
		for _, row := range o.gradW[l] {
			clear(row)
		}
		clear(o.gradB[l])
	}

	scale := 1.0 / float64(len(batch))
	var lossSum float64
	correct := 0
	for _, ex := range batch {
		trace := o.forward(ex.X, rng)
		probs := trace.outputs[len(trace.outputs)-1]

		lossSum -= math.Log(probs[ex.Y] + 1e-12)
		if argmax(probs) == ex.Y {
			correct++
		}

		delta := make([]float64, len(probs))
		for k, p := range probs {
			delta[k] = p * scale
		}
		delta[ex.Y] -= scale
		o.backward(ex.X, trace, delta)
	}

	lr := o.currentLR()
	for l := range o.net.Layers {
		layer := &o.net.Layers[l]
		for out, row := range layer.Weights {
			vel, grad := o.velW[l][out], o.gradW[l][out]
			for i := range row {
				row[i] += o.update(&vel[i], grad[i], lr)
			}
			layer.Bias[out] += o.update(&o.velB[l][out], o.gradB[l][out], lr)
		}
	}
	o.iterations++
	return lossSum, correct
}

func (o *sgd) update(vel *float64, grad, lr float64) float64 {
	*vel = o.momentum*(*vel) - lr*grad
	if o.nesterov {
		return o.momentum*(*vel) - lr*grad
	}
	return *vel
}

// forwardTrace records what backward needs: each layer's pre-activations,
// its post-dropout outputs and the dropout mask.
type forwardTrace struct {
	pre     [][]float64
	outputs [][]float64
	masks   [][]float64
}

func (o *sgd) forward(x vectorizer.SparseVector, rng *rand.Rand) forwardTrace {
	n := len(o.net.Layers)
	tr := forwardTrace{
		pre:     make([][]float64, n),
		outputs: make([][]float64, n),
		masks:   make([][]float64, n),
	}
	var in []float64
	for l := range o.net.Layers {
		layer := &o.net.Layers[l]
		z := make([]float64, layer.Outputs())
		for out, row := range layer.Weights {
			if l == 0 {
				z[out] = x.Dot(row) + layer.Bias[out]
				continue
			}
			sum := layer.Bias[out]
			for i, v := range in {
				sum += row[i] * v
			}
			z[out] = sum
		}
		tr.pre[l] = z

		act := layer.activate(append([]float64(nil), z...))
		if layer.Dropout > 0 && layer.Activation != ActivationSoftmax {
			keep := 1 - layer.Dropout
			mask := make([]float64, len(act))
			for i := range act {
				if rng.Float64() < keep {
					mask[i] = 1 / keep
				}
				act[i] *= mask[i]
			}
			tr.masks[l] = mask
		}
		tr.outputs[l] = act
		in = act
	}
	return tr
}

// backward accumulates gradients given delta, the loss gradient with respect
// to the output layer's pre-activations.
func (o *sgd) backward(x vectorizer.SparseVector, tr forwardTrace, delta []float64) {
	for l := len(o.net.Layers) - 1; l >= 0; l-- {
		layer := &o.net.Layers[l]
		for out, d := range delta {
			if d == 0 {
				continue
			}
			o.gradB[l][out] += d
			grad := o.gradW[l][out]
			if l == 0 {
				for k, idx := range x.Indices {
					grad[idx] += d * x.Values[k]
				}
				continue
			}
			for i, v := range tr.outputs[l-1] {
				grad[i] += d * v
			}
		}
		if l == 0 {
			return
		}

		prev := make([]float64, layer.Inputs())
		for out, d := range delta {
			if d == 0 {
				continue
			}
			for i, w := range layer.Weights[out] {
				prev[i] += w * d
			}
		}
		mask, pre := tr.masks[l-1], tr.pre[l-1]
		for i := range prev {
			if pre[i] <= 0 {
				prev[i] = 0
				continue
			}
			if mask != nil {
				prev[i] *= mask[i]
			}
		}
		delta = prev
	}
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func zeros2(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}
