package cli

import (
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/intent"
)

func (c *CLI) newVocabCommand() *cobra.Command {
	var classes bool

	cmd := &cobra.Command{
		Use:   "vocab [pattern]",
		Short: "List the model's vocabulary or classes, optionally fuzzy-filtered",
		Args:  cobra.MaximumNArgs(1),
		Example: `  intent vocab
  intent vocab ansi
  intent vocab --classes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := intent.Load(c.cfg.Model, c.cfg.Options())
			if err != nil {
				return err
			}
			items := cl.Words()
			if classes {
				items = cl.Classes()
			}
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			for _, item := range filterItems(pattern, items) {
				fmt.Fprintln(c.stdout, item)
			}
			return nil
		},
	}

	cmd.Flags().String("model", "model", "Directory holding the model artifacts")
	cmd.Flags().BoolVar(&classes, "classes", false, "List classes instead of vocabulary words")
	return cmd
}

// filterItems returns items in their stored order when pattern is empty,
// otherwise the fuzzy matches best first.
func filterItems(pattern string, items []string) []string {
	if pattern == "" {
		return items
	}
	matches := fuzzy.Find(pattern, items)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}
