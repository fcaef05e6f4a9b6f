// Package config loads intent settings from defaults, a YAML config file,
// INTENT_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/happyhackingspace/intent"
	"github.com/happyhackingspace/intent/classifier"
	"github.com/happyhackingspace/intent/internal/textutil"
)

// EnvPrefix prefixes environment overrides, e.g. INTENT_TRAIN_EPOCHS.
const EnvPrefix = "INTENT"

// Config is the typed view of all settings.
type Config struct {
	Model     string    `mapstructure:"model"`
	Catalog   string    `mapstructure:"catalog"`
	Floor     float64   `mapstructure:"floor"`
	Threshold float64   `mapstructure:"threshold"`
	Tokenizer Tokenizer `mapstructure:"tokenizer"`
	Train     Train     `mapstructure:"train"`
	Evaluate  Evaluate  `mapstructure:"evaluate"`
	Enrich    Enrich    `mapstructure:"enrich"`

	// ThresholdSet records that the threshold came from a config file, the
	// environment or a flag rather than the built-in default.
	ThresholdSet bool `mapstructure:"-"`
}

// Tokenizer configures text normalization.
type Tokenizer struct {
	Language  string   `mapstructure:"language"`
	Lemmatize bool     `mapstructure:"lemmatize"`
	Ignore    []string `mapstructure:"ignore"`
}

// Train configures the network and optimizer.
type Train struct {
	Hidden       []int     `mapstructure:"hidden"`
	Dropout      []float64 `mapstructure:"dropout"`
	Epochs       int       `mapstructure:"epochs"`
	BatchSize    int       `mapstructure:"batch_size"`
	LearningRate float64   `mapstructure:"learning_rate"`
	Decay        float64   `mapstructure:"decay"`
	Momentum     float64   `mapstructure:"momentum"`
	Nesterov     bool      `mapstructure:"nesterov"`
	Seed         uint64    `mapstructure:"seed"`
}

// Evaluate configures cross-validation.
type Evaluate struct {
	Folds int `mapstructure:"folds"`
}

// Enrich configures media title fetching.
type Enrich struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Default returns the built-in settings.
func Default() Config {
	net := classifier.DefaultTrainConfig()
	tok := textutil.DefaultTokenizerConfig()
	return Config{
		Model:     "model",
		Catalog:   "intents.json",
		Floor:     intent.DefaultFloor,
		Threshold: intent.DefaultTrainConfig().Threshold,
		Tokenizer: Tokenizer{
			Language:  tok.Language,
			Lemmatize: tok.Lemmatize,
			Ignore:    tok.Ignore,
		},
		Train: Train{
			Hidden:       net.Hidden,
			Dropout:      net.Dropout,
			Epochs:       net.Epochs,
			BatchSize:    net.BatchSize,
			LearningRate: net.LearningRate,
			Decay:        net.Decay,
			Momentum:     net.Momentum,
			Nesterov:     net.Nesterov,
			Seed:         net.Seed,
		},
		Evaluate: Evaluate{Folds: 5},
		Enrich:   Enrich{Timeout: 15 * time.Second},
	}
}

// SetDefaults registers every default with v so environment variables can
// override keys that appear in no config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("model", d.Model)
	v.SetDefault("catalog", d.Catalog)
	v.SetDefault("floor", d.Floor)
	v.SetDefault("threshold", d.Threshold)
	v.SetDefault("tokenizer.language", d.Tokenizer.Language)
	v.SetDefault("tokenizer.lemmatize", d.Tokenizer.Lemmatize)
	v.SetDefault("tokenizer.ignore", d.Tokenizer.Ignore)
	v.SetDefault("train.hidden", d.Train.Hidden)
	v.SetDefault("train.dropout", d.Train.Dropout)
	v.SetDefault("train.epochs", d.Train.Epochs)
	v.SetDefault("train.batch_size", d.Train.BatchSize)
	v.SetDefault("train.learning_rate", d.Train.LearningRate)
	v.SetDefault("train.decay", d.Train.Decay)
	v.SetDefault("train.momentum", d.Train.Momentum)
	v.SetDefault("train.nesterov", d.Train.Nesterov)
	v.SetDefault("train.seed", d.Train.Seed)
	v.SetDefault("evaluate.folds", d.Evaluate.Folds)
	v.SetDefault("enrich.timeout", d.Enrich.Timeout)
}

// New returns a viper instance with defaults, environment overrides and the
// config file applied. With an empty cfgFile it looks for intent.yaml in the
// working directory, then in $HOME/.config/intent; finding none is not an
// error.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("intent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "intent"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	c.ThresholdSet = Explicit(v, "threshold")
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Explicit reports whether key was given in the config file or the
// environment. Flags are tracked by the caller, since viper reports a bound
// flag's default as if it were set.
func Explicit(v *viper.Viper, key string) bool {
	if v.InConfig(key) {
		return true
	}
	env := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	_, ok := os.LookupEnv(env)
	return ok
}

// Validate checks ranges that would otherwise fail deep inside training.
func (c Config) Validate() error {
	if c.Floor <= 0 || c.Floor >= 1 {
		return fmt.Errorf("floor %v outside (0, 1)", c.Floor)
	}
	if c.Threshold <= 0 || c.Threshold >= 1 {
		return fmt.Errorf("threshold %v outside (0, 1)", c.Threshold)
	}
	if len(c.Train.Hidden) != len(c.Train.Dropout) {
		return fmt.Errorf("train.hidden has %d layers but train.dropout has %d rates",
			len(c.Train.Hidden), len(c.Train.Dropout))
	}
	if c.Train.Epochs <= 0 {
		return fmt.Errorf("train.epochs must be positive, got %d", c.Train.Epochs)
	}
	return nil
}

// TokenizerConfig returns the tokenizer settings.
func (c Config) TokenizerConfig() textutil.TokenizerConfig {
	return textutil.TokenizerConfig{
		Language:  c.Tokenizer.Language,
		Ignore:    append([]string(nil), c.Tokenizer.Ignore...),
		Lemmatize: c.Tokenizer.Lemmatize,
	}
}

// TrainConfig returns the training settings.
func (c Config) TrainConfig() *intent.TrainConfig {
	t := c.Train
	return &intent.TrainConfig{
		Network: classifier.TrainConfig{
			Hidden:       append([]int(nil), t.Hidden...),
			Dropout:      append([]float64(nil), t.Dropout...),
			Epochs:       t.Epochs,
			BatchSize:    t.BatchSize,
			LearningRate: t.LearningRate,
			Decay:        t.Decay,
			Momentum:     t.Momentum,
			Nesterov:     t.Nesterov,
			Seed:         t.Seed,
		},
		Tokenizer: c.TokenizerConfig(),
		Threshold: c.Threshold,
	}
}

// EvalConfig returns the cross-validation settings.
func (c Config) EvalConfig() *intent.EvalConfig {
	return &intent.EvalConfig{Folds: c.Evaluate.Folds, Train: c.TrainConfig()}
}

// Options returns the prediction overrides. The threshold is only applied
// when it was set explicitly, so a model trained with a custom threshold
// keeps it otherwise.
func (c Config) Options() intent.Options {
	opts := intent.Options{Floor: c.Floor}
	if c.ThresholdSet {
		opts.Threshold = c.Threshold
	}
	return opts
}
