package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/evidence"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/gate"
)

var evidenceMode string

var validateCmd = &cobra.Command{
	Use:   "validate [text|-]",
	Short: "Post-validate model output",
	Long: `Runs the post-validation guardrail over text (or stdin) and prints the
text the user would see. Reasons go to stderr; --json prints everything.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&evidenceMode, "mode", string(evidence.ModePerazziSourced),
		"Evidence mode: perazzi_sourced | general_unsourced")
}

func runValidate(cmd *cobra.Command, args []string) error {
	text, err := textArg(cmd, args)
	if err != nil {
		return err
	}

	var res gate.Result
	client, err := remoteClient()
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
		res, err = client.PostValidate(context.Background(), text, evidenceMode)
		if err != nil {
			return err
		}
	} else {
		res = gate.PostValidate(text, gate.Options{EvidenceMode: evidence.ParseMode(evidenceMode)})
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	if res.Triggered {
		fmt.Fprintf(cmd.ErrOrStderr(), "triggered: %s\n", strings.Join(res.Reasons, ", "))
	}
	return nil
}
