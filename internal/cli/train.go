package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/intent"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train [model-dir]",
		Short: "Train a model on the catalog's labeled patterns",
		Args:  cobra.MaximumNArgs(1),
		Example: `  intent train model --catalog intents.json
  intent train model --catalog intents.yaml --epochs 200 -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modelDir := c.cfg.Model
			if len(args) == 1 {
				modelDir = args[0]
			}
			slog.Info("Training classifier", "catalog", c.cfg.Catalog, "output", modelDir)
			start := time.Now()
			cl, err := intent.Train(c.cfg.Catalog, c.cfg.TrainConfig())
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start))
			if err := cl.Save(modelDir); err != nil {
				return err
			}
			slog.Info("Model saved", "dir", modelDir, "words", len(cl.Words()), "classes", len(cl.Classes()))
			return nil
		},
	}

	cmd.Flags().String("catalog", "intents.json", "Path to the intent catalog (.json or .yaml)")
	cmd.Flags().Int("epochs", 300, "Training epochs")
	cmd.Flags().Uint64("seed", 1, "Random seed for weight init and shuffling")
	return cmd
}
