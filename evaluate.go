package intent

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/happyhackingspace/intent/internal/catalog"
	"github.com/happyhackingspace/intent/internal/textutil"
	"github.com/happyhackingspace/intent/internal/vectorizer"
)

// NoIntent labels predictions where no intent cleared the floor.
const NoIntent = "(none)"

// EvalConfig holds configuration for evaluation.
type EvalConfig struct {
	Folds int
	Train *TrainConfig
}

// ClassMetrics holds per-intent scores.
type ClassMetrics struct {
	Tag       string  `json:"tag"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// EvalResult holds cross-validation evaluation results.
type EvalResult struct {
	Folds     int                       `json:"folds"`
	Correct   int                       `json:"correct"`
	Total     int                       `json:"total"`
	Accuracy  float64                   `json:"accuracy"`
	Classes   []ClassMetrics            `json:"classes"`
	Confusion map[string]map[string]int `json:"confusion"` // actual -> predicted -> count
}

// Evaluate runs k-fold cross-validation over the catalog's patterns.
// Patterns with the same normalized tokens always land in the same fold.
func Evaluate(catalogPath string, config *EvalConfig) (*EvalResult, error) {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("intent: %w", err)
	}
	return EvaluateCatalog(cat, config)
}

// EvaluateCatalog is Evaluate on an already loaded catalog.
func EvaluateCatalog(cat *catalog.Catalog, config *EvalConfig) (*EvalResult, error) {
	nFolds := 5
	trainConfig := DefaultTrainConfig()
	if config != nil {
		if config.Folds > 0 {
			nFolds = config.Folds
		}
		if config.Train != nil {
			trainConfig = config.Train
		}
	}
	if nFolds < 2 {
		return nil, fmt.Errorf("intent: need at least 2 folds, got %d", nFolds)
	}

	tok := textutil.NewTokenizer(trainConfig.Tokenizer)
	docs, err := documents(cat, tok)
	if err != nil {
		return nil, fmt.Errorf("intent: %w", err)
	}
	folds := groupKFold(patternGroups(docs), nFolds)
	if len(folds) < 2 {
		return nil, fmt.Errorf("intent: need at least 2 distinct patterns to evaluate")
	}

	result := &EvalResult{Folds: len(folds), Confusion: make(map[string]map[string]int)}
	for f, testIdx := range folds {
		testSet := makeTestSet(len(docs), testIdx)
		var train []vectorizer.Document
		for i, doc := range docs {
			if !testSet[i] {
				train = append(train, doc)
			}
		}

		c, err := fit(train, tok, trainConfig, nil)
		if err != nil {
			return nil, fmt.Errorf("intent: fold %d: %w", f+1, err)
		}

		foldCorrect := 0
		for _, idx := range testIdx {
			actual := docs[idx].Tag
			predicted := NoIntent
			if cand, ok := c.topTokens(docs[idx].Tokens); ok {
				predicted = cand.Tag
			}
			if result.Confusion[actual] == nil {
				result.Confusion[actual] = make(map[string]int)
			}
			result.Confusion[actual][predicted]++
			if predicted == actual {
				foldCorrect++
			}
		}
		result.Correct += foldCorrect
		result.Total += len(testIdx)
		slog.Debug("Fold evaluated", "fold", f+1, "train", len(train), "test", len(testIdx), "correct", foldCorrect)
	}

	if result.Total > 0 {
		result.Accuracy = float64(result.Correct) / float64(result.Total)
	}
	result.Classes = classMetrics(cat.Tags(), result.Confusion)
	return result, nil
}

// topTokens is Top for an already tokenized utterance.
func (c *Classifier) topTokens(tokens []string) (Candidate, bool) {
	x := c.encoder.Encode(tokens)
	if x.Nnz() == 0 {
		return Candidate{}, false
	}
	cls, p := c.net.Classify(x)
	if p <= c.floor {
		return Candidate{}, false
	}
	return Candidate{Tag: c.vocab.Classes[cls], Probability: p}, true
}

func classMetrics(tags []string, confusion map[string]map[string]int) []ClassMetrics {
	out := make([]ClassMetrics, 0, len(tags))
	for _, tag := range tags {
		var tp, fp, fn int
		for actual, row := range confusion {
			for predicted, n := range row {
				switch {
				case actual == tag && predicted == tag:
					tp += n
				case actual == tag:
					fn += n
				case predicted == tag:
					fp += n
				}
			}
		}
		m := ClassMetrics{Tag: tag, Support: tp + fn}
		if tp+fp > 0 {
			m.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			m.Recall = float64(tp) / float64(tp+fn)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		out = append(out, m)
	}
	return out
}

// patternGroups assigns one group per distinct token sequence, numbered in
// order of first appearance.
func patternGroups(docs []vectorizer.Document) []int {
	groups := make([]int, len(docs))
	seen := make(map[string]int)
	for i, doc := range docs {
		key := strings.Join(doc.Tokens, " ")
		g, ok := seen[key]
		if !ok {
			g = len(seen)
			seen[key] = g
		}
		groups[i] = g
	}
	return groups
}

// groupKFold splits indices into at most nFolds folds, never separating
// members of a group. Groups are dealt round-robin in group order.
func groupKFold(groups []int, nFolds int) [][]int {
	nGroups := 0
	for _, g := range groups {
		nGroups = max(nGroups, g+1)
	}
	if nFolds > nGroups {
		nFolds = nGroups
	}
	if nFolds == 0 {
		return nil
	}
	folds := make([][]int, nFolds)
	for i, g := range groups {
		fold := g % nFolds
		folds[fold] = append(folds[fold], i)
	}
	return folds
}

func makeTestSet(n int, testIdx []int) []bool {
	set := make([]bool, n)
	for _, i := range testIdx {
		set[i] = true
	}
	return set
}
