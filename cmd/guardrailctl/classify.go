package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/codec"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/signals"
)

var (
	classifyText     string
	classifyPage     string
	classifySlug     string
	classifyPrevious string
)

var classifyCmd = &cobra.Command{
	Use:   "classify [breakdown.json|-]",
	Short: "Classify an archetype breakdown",
	Long: `Builds the archetype classification from a JSON breakdown file (or stdin).
With --text the breakdown is produced from the message lexicon instead.
With --previous the breakdown is smoothed into that vector first, using the
configured smoothing factor.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyText, "text", "", "Produce the breakdown from this user message")
	classifyCmd.Flags().StringVar(&classifyPage, "page-url", "", "Page context for --text")
	classifyCmd.Flags().StringVar(&classifySlug, "model-slug", "", "Model slug context for --text")
	classifyCmd.Flags().StringVar(&classifyPrevious, "previous", "", `Previous vector as JSON, e.g. '{"prestige":0.4,...}'`)
}

type classifyOutput struct {
	Breakdown      archetype.Breakdown      `json:"breakdown"`
	Vector         archetype.Vector         `json:"vector"`
	Smoothed       bool                     `json:"smoothed"`
	Classification archetype.Classification `json:"classification"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	b, err := loadBreakdown(cmd, args)
	if err != nil {
		return err
	}
	client, err := remoteClient()
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
	}
	ctx := context.Background()

	out := classifyOutput{Breakdown: b, Vector: b.Vector}
	if classifyPrevious != "" && !b.Vector.IsZero() {
		var prev archetype.Vector
		if err := json.Unmarshal([]byte(classifyPrevious), &prev); err != nil {
			return fmt.Errorf("parse --previous: %w", err)
		}
		prev = archetype.NormalizeVector(prev)
		delta := archetype.NormalizeVector(b.Vector)
		if client != nil {
			resp, err := client.SmoothUpdate(ctx, codec.SmoothRequest{Previous: &prev, Delta: delta})
			if err != nil {
				return err
			}
			out.Vector = resp.Vector
		} else {
			out.Vector = archetype.SmoothUpdate(prev, delta, cfg.Archetype.SmoothingFactor)
		}
		out.Smoothed = true
	}

	scored := archetype.Breakdown{Primary: b.Primary, Vector: out.Vector, Signals: b.Signals, Reasoning: b.Reasoning}
	if client != nil {
		if out.Classification, err = client.Classify(ctx, scored); err != nil {
			return err
		}
	} else {
		out.Classification = archetype.BuildClassification(scored)
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), out)
	}
	w := cmd.OutOrStdout()
	for _, k := range archetype.Keys {
		fmt.Fprintf(w, "%-9s %.4f\n", k, out.Classification.ArchetypeScores[k])
	}
	primary := "none"
	if out.Classification.Archetype != nil {
		primary = string(*out.Classification.Archetype)
	}
	fmt.Fprintf(w, "primary: %s\n", primary)
	if d := out.Classification.Decision; d != nil {
		fmt.Fprintf(w, "winner: %s  runner-up: %s\n", d.Winner, d.RunnerUp)
		if d.Reasoning != "" {
			fmt.Fprintf(w, "reasoning: %s\n", d.Reasoning)
		}
	}
	return nil
}

func loadBreakdown(cmd *cobra.Command, args []string) (archetype.Breakdown, error) {
	if classifyText != "" {
		p := signals.NewProducer(cfg.Boost.Tiers())
		return p.Produce(signals.ProduceInput{UserText: classifyText, PageURL: classifyPage, ModelSlug: classifySlug}), nil
	}

	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return archetype.Breakdown{}, fmt.Errorf("open breakdown: %w", err)
		}
		defer f.Close()
		r = f
	}
	var b archetype.Breakdown
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return archetype.Breakdown{}, fmt.Errorf("parse breakdown: %w", err)
	}
	return b, nil
}
