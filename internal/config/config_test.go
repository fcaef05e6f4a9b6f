package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultLoad(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	v, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	tc := cfg.TrainConfig()
	if tc.Network.Epochs != 300 || tc.Network.BatchSize != 5 {
		t.Errorf("unexpected training defaults: %+v", tc.Network)
	}
	if tc.Threshold != 0.8 {
		t.Errorf("threshold = %v, want 0.8", tc.Threshold)
	}
	if opts := cfg.Options(); opts.Floor != 0.15 || opts.Threshold != 0 {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := `model: artifacts
floor: 0.3
tokenizer:
  language: english
train:
  hidden: [64]
  dropout: [0.2]
  epochs: 50
enrich:
  timeout: 3s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "artifacts" || cfg.Floor != 0.3 || cfg.Tokenizer.Language != "english" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if diff := cmp.Diff([]int{64}, cfg.Train.Hidden); diff != "" {
		t.Errorf("hidden mismatch (-want +got):\n%s", diff)
	}
	if cfg.Train.Epochs != 50 || cfg.Train.BatchSize != 5 {
		t.Errorf("train = %+v", cfg.Train)
	}
	if cfg.Enrich.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", cfg.Enrich.Timeout)
	}
	if !cfg.Tokenizer.Lemmatize {
		t.Error("unset keys should keep defaults")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("INTENT_FLOOR", "0.25")
	t.Setenv("INTENT_TRAIN_EPOCHS", "12")
	v, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Floor != 0.25 {
		t.Errorf("floor = %v, want 0.25", cfg.Floor)
	}
	if cfg.Train.Epochs != 12 {
		t.Errorf("epochs = %d, want 12", cfg.Train.Epochs)
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for explicit missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"floor", func(c *Config) { c.Floor = 1 }},
		{"threshold", func(c *Config) { c.Threshold = -0.1 }},
		{"zero floor", func(c *Config) { c.Floor = 0 }},
		{"zero threshold", func(c *Config) { c.Threshold = 0 }},
		{"dropout length", func(c *Config) { c.Train.Dropout = []float64{0.5} }},
		{"epochs", func(c *Config) { c.Train.Epochs = 0 }},
	}
	for _, tt := range tests {
		c := Default()
		tt.mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestExplicitThreshold(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "intent.yaml")
	if err := os.WriteFile(path, []byte("threshold: 0.8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.ThresholdSet || cfg.Options().Threshold != 0.8 {
		t.Errorf("threshold from file not applied: set=%v options=%+v", cfg.ThresholdSet, cfg.Options())
	}

	t.Setenv("INTENT_THRESHOLD", "0.8")
	v, err = New("")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Options().Threshold != 0.8 {
		t.Errorf("threshold from environment not applied: %+v", cfg.Options())
	}
}
