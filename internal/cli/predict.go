package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/intent"
	"github.com/happyhackingspace/intent/internal/catalog"
	"github.com/happyhackingspace/intent/internal/vectorizer"
)

// prediction is one line of predict output.
type prediction struct {
	Utterance string             `json:"utterance"`
	Intents   []intent.Candidate `json:"intents"`
	Route     *intent.Candidate  `json:"route,omitempty"`
	Reply     *catalog.Reply     `json:"reply,omitempty"`
}

func (c *CLI) newPredictCommand() *cobra.Command {
	var (
		respond bool
		route   bool
		name    string
	)

	cmd := &cobra.Command{
		Use:   "predict [utterance...]",
		Short: "Classify utterances given as arguments or stdin lines",
		Example: `  # Classify one utterance
  intent predict "hola, ¿cómo estás?"

  # Classify one utterance per stdin line
  cat mensajes.txt | intent predict

  # Apply keyword shortcuts and print a filled reply
  intent predict --route --respond --name Ana "hola benedit"

  # Report only intents above 0.4
  intent predict --floor 0.4 "me siento triste"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			cl, err := intent.Load(c.cfg.Model, c.cfg.Options())
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "dir", c.cfg.Model, "duration", time.Since(start))

			var cat *catalog.Catalog
			if respond {
				cat, err = catalog.Load(c.cfg.Catalog)
				if err != nil {
					return err
				}
				if err := cl.CheckTags(cat.Tags()); err != nil {
					return err
				}
			}

			p := &predictor{
				cl:      cl,
				cat:     cat,
				route:   route,
				name:    name,
				rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
				encoder: json.NewEncoder(c.stdout),
			}
			if len(args) > 0 {
				return p.run(strings.Join(args, " "))
			}
			if isStdinTerminal() {
				return cmd.Help()
			}
			return p.runLines(c.stdin)
		},
	}

	cmd.Flags().String("model", "model", "Directory holding words.json, classes.json and model.json")
	cmd.Flags().String("catalog", "intents.json", "Intent catalog used by --respond")
	cmd.Flags().Float64("floor", intent.DefaultFloor, "Minimum probability for a reported intent")
	cmd.Flags().Float64("threshold", vectorizer.DefaultThreshold, "Fuzzy match threshold for vocabulary words")
	cmd.Flags().BoolVar(&respond, "respond", false, "Include a filled response from the catalog")
	cmd.Flags().BoolVar(&route, "route", false, "Apply catalog keyword shortcuts before the model")
	cmd.Flags().StringVar(&name, "name", "", "Display name substituted into responses")
	return cmd
}

type predictor struct {
	cl      *intent.Classifier
	cat     *catalog.Catalog
	route   bool
	name    string
	rng     *rand.Rand
	encoder *json.Encoder
}

func (p *predictor) runLines(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := p.run(line); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (p *predictor) run(utterance string) error {
	out := prediction{Utterance: utterance, Intents: p.cl.Predict(utterance)}

	top, ok := firstCandidate(out.Intents)
	if p.route {
		if top, ok = p.cl.Route(utterance); ok {
			out.Route = &top
		}
	}

	if p.cat != nil {
		reply := catalog.Reply{Text: catalog.ClarifyText}
		if ok {
			var err error
			reply, err = p.cat.Respond(top.Tag, p.name, p.rng)
			switch {
			case errors.Is(err, catalog.ErrUnknownTag):
				reply = catalog.Reply{Tag: top.Tag, Text: catalog.FallbackText}
			case err != nil:
				return fmt.Errorf("respond to %q: %w", top.Tag, err)
			}
		}
		out.Reply = &reply
	}
	return p.encoder.Encode(out)
}

func firstCandidate(cands []intent.Candidate) (intent.Candidate, bool) {
	if len(cands) == 0 {
		return intent.Candidate{}, false
	}
	return cands[0], true
}
