package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/codec"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/retrieval"
)

var pageURL string

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [text|-]",
	Short: "Show the retrieval decision for a user message",
	RunE:  runRetrieve,
}

func init() {
	retrieveCmd.Flags().StringVar(&pageURL, "page-url", "", "Page the message was sent from")
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	text, err := textArg(cmd, args)
	if err != nil {
		return err
	}
	in := retrieval.Input{UserText: text, PageURL: pageURL}

	client, err := remoteClient()
	if err != nil {
		return err
	}
	var out codec.RetrieveResponse
	if client != nil {
		defer client.Close()
		if out, err = client.ShouldRetrieve(context.Background(), in); err != nil {
			return err
		}
	} else {
		out = codec.RetrieveResponse{
			Decision:           retrieval.ShouldRetrieve(in),
			ModelSpecFactQuery: retrieval.IsModelSpecFactQuery(text),
		}
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), out)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "retrieve=%t reason=%s spec_query=%t\n",
		out.Retrieve, out.Reason, out.ModelSpecFactQuery)
	return nil
}
