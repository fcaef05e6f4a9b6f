package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/intent"
	"github.com/happyhackingspace/intent/internal/catalog"
)

func (c *CLI) newCatalogCommand() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and maintain the intent catalog",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	var modelDir string
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog and, with --model, its tags against a trained model",
		Example: `  intent catalog check --catalog intents.json
  intent catalog check --catalog intents.json --model model`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.catalogCheck(modelDir)
		},
	}
	checkCmd.Flags().String("catalog", "intents.json", "Path to the intent catalog")
	checkCmd.Flags().StringVar(&modelDir, "model", "", "Model directory whose classes must match the catalog tags")

	var output string
	enrichCmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill missing media titles from the linked pages",
		Example: `  intent catalog enrich --catalog intents.json
  intent catalog enrich --catalog intents.json --output enriched.json --timeout 5s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.catalogEnrich(cmd.Context(), output)
		},
	}
	enrichCmd.Flags().String("catalog", "intents.json", "Path to the intent catalog")
	enrichCmd.Flags().StringVar(&output, "output", "", "Write the enriched catalog here instead of in place")
	enrichCmd.Flags().Duration("timeout", 0, "HTTP timeout per media page")

	catalogCmd.AddCommand(checkCmd, enrichCmd)
	return catalogCmd
}

func (c *CLI) catalogCheck(modelDir string) error {
	cat, err := catalog.Load(c.cfg.Catalog)
	if err != nil {
		return err
	}
	if err := cat.Validate(); err != nil {
		return err
	}

	patterns, media := 0, 0
	for _, e := range cat.Entries {
		patterns += len(e.Patterns)
		media += len(e.Videos)
	}
	fmt.Fprintf(c.stdout, "%d intents, %d patterns, %d media links\n", len(cat.Entries), patterns, media)

	sources := cat.MediaSources()
	names := make([]string, 0, len(sources))
	for s := range sources {
		names = append(names, s)
	}
	sort.Strings(names)
	for _, s := range names {
		fmt.Fprintf(c.stdout, "  %-24s %d\n", s, sources[s])
	}

	if modelDir != "" {
		cl, err := intent.Load(modelDir, c.cfg.Options())
		if err != nil {
			return err
		}
		if err := cl.CheckTags(cat.Tags()); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "catalog tags match model %s\n", modelDir)
	}
	return nil
}

func (c *CLI) catalogEnrich(ctx context.Context, output string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cat, err := catalog.Load(c.cfg.Catalog)
	if err != nil {
		return err
	}
	n, err := catalog.NewEnricher(c.cfg.Enrich.Timeout).Enrich(ctx, cat)
	if err != nil {
		return err
	}

	dest := c.cfg.Catalog
	if output != "" {
		dest = output
	}
	if n == 0 && output == "" {
		slog.Info("No media titles to fill", "catalog", dest)
		return nil
	}
	if err := cat.Save(dest); err != nil {
		return err
	}
	slog.Info("Catalog enriched", "titles", n, "path", dest)
	return nil
}
