package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json>",
	Short: "Replay a recorded conversation and check its expectations",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

type replayOutput struct {
	Results []replay.ReplayResult `json:"results"`
	Summary replay.ReplaySummary  `json:"summary"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := replay.LoadFixture(args[0])
	if err != nil {
		return err
	}
	results, err := replay.Replay(cmd.Context(), f, logger)
	if err != nil {
		return err
	}
	summary := replay.Summarize(results)

	if jsonOut {
		if err := printJSON(cmd.OutOrStdout(), replayOutput{Results: results, Summary: summary}); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-8s  %-14s  %-7s  %-5s  %-9s  %-8s  %s\n",
			"Turn", "Retrieve", "Blocked", "Label", "Qualifier", "Winner", "Result")
		for _, r := range results {
			status := "ok"
			if len(r.Mismatches) > 0 {
				status = fmt.Sprintf("MISMATCH %v", r.Mismatches)
			}
			fmt.Fprintf(w, "%-8s  %-14s  %-7t  %-5t  %-9t  %-8s  %s\n",
				r.TurnID, r.RetrieveReason, r.Blocked, r.LabelInjected, r.QualifierInjected, r.Winner, status)
		}
		fmt.Fprintf(w, "\n%d turns: %d blocked, %d labeled, %d qualified, %d smoothed\n",
			summary.TotalTurns, summary.Blocked, summary.Labeled, summary.Qualified, summary.Smoothed)
	}

	if summary.Mismatches > 0 {
		return fmt.Errorf("replay: %d expectation(s) not met", summary.Mismatches)
	}
	return nil
}
