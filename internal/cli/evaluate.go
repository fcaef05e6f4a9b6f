package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/intent"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "evaluate",
		Short:   "Evaluate accuracy via cross-validation over the catalog",
		Example: `  intent evaluate --catalog intents.json --folds 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ec := c.cfg.EvalConfig()
			slog.Info("Evaluating", "folds", ec.Folds, "catalog", c.cfg.Catalog)
			start := time.Now()
			result, err := intent.Evaluate(c.cfg.Catalog, ec)
			if err != nil {
				return err
			}
			slog.Debug("Evaluation completed", "duration", time.Since(start))

			fmt.Fprintf(c.stdout, "Accuracy: %.1f%% (%d/%d, %d folds)\n",
				result.Accuracy*100, result.Correct, result.Total, result.Folds)
			printConfusionMatrix(c.stdout, result)
			printClassReport(c.stdout, result.Classes)
			return nil
		},
	}

	cmd.Flags().String("catalog", "intents.json", "Path to the intent catalog")
	cmd.Flags().Int("folds", 5, "Number of cross-validation folds")
	cmd.Flags().Int("epochs", 300, "Training epochs per fold")
	return cmd
}

func printClassReport(w io.Writer, classes []intent.ClassMetrics) {
	fmt.Fprintf(w, "\nPer-class metrics:\n")
	fmt.Fprintf(w, "%14s  %6s  %6s  %6s  %7s\n", "class", "prec", "recall", "f1", "support")
	for _, m := range classes {
		fmt.Fprintf(w, "%14s  %5.1f%%  %5.1f%%  %5.1f%%  %7d\n",
			m.Tag, m.Precision*100, m.Recall*100, m.F1*100, m.Support)
	}
}

func printConfusionMatrix(w io.Writer, result *intent.EvalResult) {
	if len(result.Confusion) == 0 {
		return
	}
	classes := make([]string, 0, len(result.Classes)+1)
	for _, m := range result.Classes {
		classes = append(classes, m.Tag)
	}
	cols := append(append([]string(nil), classes...), intent.NoIntent)

	rows := append([]string(nil), classes...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rowTotal(result.Confusion[rows[i]]) > rowTotal(result.Confusion[rows[j]])
	})

	fmt.Fprintf(w, "\nConfusion matrix (rows=true, cols=predicted):\n")
	fmt.Fprintf(w, "%14s", "")
	for i := range cols {
		fmt.Fprintf(w, " %5d", i)
	}
	fmt.Fprintf(w, "  total  acc%%\n")

	for _, trueClass := range rows {
		fmt.Fprintf(w, "%14s", trueClass)
		row := result.Confusion[trueClass]
		total := rowTotal(row)
		for _, predClass := range cols {
			if n := row[predClass]; n == 0 {
				fmt.Fprintf(w, " %5s", ".")
			} else {
				fmt.Fprintf(w, " %5d", n)
			}
		}
		acc := 0.0
		if total > 0 {
			acc = float64(row[trueClass]) / float64(total) * 100
		}
		fmt.Fprintf(w, "  %5d %5.1f\n", total, acc)
	}
	fmt.Fprintf(w, "\nColumns:")
	for i, cls := range cols {
		fmt.Fprintf(w, " %d=%s", i, cls)
	}
	fmt.Fprintln(w)
}

func rowTotal(row map[string]int) int {
	total := 0
	for _, n := range row {
		total += n
	}
	return total
}
