package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"callprof/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <snapshot> [snapshot ...]",
	Short: "Render reports from saved snapshots",
	Long:  `Render the fixed-width results table from snapshot files previously written by run --snapshot`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  reportExecution,
}

func reportExecution(cmd *cobra.Command, args []string) error {
	log, err := setupLogging(cmd)
	if err != nil {
		return err
	}

	p, _, err := loadRunProfile(cmd)
	if err != nil {
		return err
	}
	opts := report.Options{EntryNamespace: p.Trace.EntryNamespace, Width: p.Report.Width}

	out := cmd.OutOrStdout()
	for i, path := range args {
		snap, payload, err := report.ReadSnapshot(path)
		if err != nil {
			return err
		}
		log.Debug().
			Str("path", path).
			Str("session", payload.Session).
			Int("entries", len(payload.Entries)).
			Msg("loaded snapshot")

		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (session %s, saved %s)\n", path, payload.Session, payload.SavedAt.Format(time.RFC3339))
		fmt.Fprintln(out, strings.TrimSuffix(report.Format(snap, opts), "\n"))
	}
	return nil
}
