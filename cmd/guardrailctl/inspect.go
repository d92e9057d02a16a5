package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/logging"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/session"
)

var (
	inspectDB   string
	inspectLast int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [session-id]",
	Short: "Show sessions, or one session's vector history and turn log",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectDB, "db", "", "Session database (default: server.session_db)")
	inspectCmd.Flags().IntVar(&inspectLast, "last", 20, "Show N most recent rows")
}

// #region inspect
type sessionDetail struct {
	SessionID string               `json:"session_id"`
	Versions  []session.Record     `json:"versions"`
	Turns     []logging.TurnRecord `json:"turns"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	dbPath := inspectDB
	if dbPath == "" {
		dbPath = cfg.Server.SessionDB
	}
	store, err := session.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()
	ctx := context.Background()

	if len(args) == 0 {
		return listSessions(ctx, cmd, store)
	}

	detail := sessionDetail{SessionID: args[0]}
	if detail.Versions, err = store.History(ctx, args[0], inspectLast); err != nil {
		return err
	}
	if detail.Turns, err = logging.NewJournal(store.DB()).Turns(ctx, args[0], inspectLast); err != nil {
		return err
	}
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), detail)
	}
	printHistory(cmd, detail)
	return nil
}

func listSessions(ctx context.Context, cmd *cobra.Command, store *session.Store) error {
	sessions, err := store.Sessions(ctx, inspectLast)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), sessions)
	}
	w := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no sessions found")
		return nil
	}
	fmt.Fprintf(w, "%-36s  %-8s  %8s  %s\n", "Session", "Version", "Versions", "Updated")
	for _, s := range sessions {
		fmt.Fprintf(w, "%-36s  %-8s  %8d  %s\n",
			s.SessionID, shortID(s.VersionID), s.Versions, s.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

func printHistory(cmd *cobra.Command, d sessionDetail) {
	w := cmd.OutOrStdout()
	if len(d.Versions) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "no versions for session %s\n", d.SessionID)
	} else {
		fmt.Fprintf(w, "%-8s  %-8s", "Version", "Parent")
		for _, k := range archetype.Keys {
			fmt.Fprintf(w, "  %8s", k)
		}
		fmt.Fprintf(w, "  %-9s  %s\n", "Primary", "Time")
		for _, r := range d.Versions {
			fmt.Fprintf(w, "%-8s  %-8s", shortID(r.VersionID), shortID(r.ParentID))
			for _, k := range archetype.Keys {
				fmt.Fprintf(w, "  %8.4f", r.Vector.Get(k))
			}
			primary := "-"
			if r.Classification != nil && r.Classification.Archetype != nil {
				primary = string(*r.Classification.Archetype)
			}
			fmt.Fprintf(w, "  %-9s  %s\n", primary, r.CreatedAt.Format(time.RFC3339))
		}
	}

	if len(d.Turns) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-8s  %-14s  %-18s  %-8s  %s\n", "Turn", "Retrieve", "Evidence", "Winner", "Reasons")
	for _, t := range d.Turns {
		fmt.Fprintf(w, "%-8s  %-14s  %-18s  %-8s  %v\n",
			shortID(t.TurnID), t.RetrieveReason, t.EvidenceMode, t.Winner, t.Reasons)
	}
}

// #endregion inspect
