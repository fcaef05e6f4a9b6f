// Package cli implements the intent command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/happyhackingspace/intent/internal/config"
)

// flagKeys maps command flags to the config keys they override.
var flagKeys = map[string]string{
	"model":     "model",
	"catalog":   "catalog",
	"floor":     "floor",
	"threshold": "threshold",
	"epochs":    "train.epochs",
	"seed":      "train.seed",
	"folds":     "evaluate.folds",
	"timeout":   "enrich.timeout",
}

// CLI encapsulates the command-line interface with its dependencies.
type CLI struct {
	version     string
	verbose     bool
	silent      bool
	cfgFile     string
	cfg         config.Config
	initialized bool
	rootCmd     *cobra.Command
	stdin       io.Reader
	stdout      io.Writer
}

// New creates a new CLI instance with the given version string.
func New(version string) *CLI {
	c := &CLI{version: version, stdin: os.Stdin, stdout: os.Stdout}
	c.setupCommands()
	return c
}

func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:           "intent",
		Short:         "Train and run an intent classifier for scripted conversations",
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initApp(cmd)
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	c.rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "Config file (default: ./intent.yaml or ~/.config/intent/intent.yaml)")
	c.rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose/debug output")
	c.rootCmd.PersistentFlags().BoolVarP(&c.silent, "silent", "s", false, "Suppress all logging")

	c.rootCmd.AddCommand(c.newTrainCommand())
	c.rootCmd.AddCommand(c.newPredictCommand())
	c.rootCmd.AddCommand(c.newEvaluateCommand())
	c.rootCmd.AddCommand(c.newVocabCommand())
	c.rootCmd.AddCommand(c.newCatalogCommand())
	c.rootCmd.AddCommand(c.newUpCommand())
}

// Run executes the CLI and returns any error.
func (c *CLI) Run() error {
	return c.execute(os.Args[1:])
}

func (c *CLI) execute(args []string) error {
	c.rootCmd.SetArgs(args)
	err := c.rootCmd.Execute()
	if err != nil {
		slog.Error("Command failed", "error", err)
	}
	return err
}

// initApp configures logging and loads the configuration, letting the
// executing command's flags override file and environment values.
func (c *CLI) initApp(cmd *cobra.Command) error {
	if c.initialized {
		return nil
	}
	c.initialized = true

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	if c.silent {
		level = slog.Level(100)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	v, err := config.New(c.cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	c.cfg, err = config.Load(v)
	if err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("threshold"); f != nil && f.Changed {
		c.cfg.ThresholdSet = true
	}
	if used := v.ConfigFileUsed(); used != "" {
		slog.Debug("Using config file", "path", used)
	}
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func isStdinTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
