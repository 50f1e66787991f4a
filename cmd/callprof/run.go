package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"callprof/internal/report"
	"callprof/internal/tracer"
)

var runCmd = &cobra.Command{
	Use:   "run [flags]",
	Short: "Trace the demo workload and print the report",
	Long:  `Run the demo workload with tracing enabled for the functions the profile selects, then print the fixed-width results table`,
	Args:  cobra.NoArgs,
	RunE:  runExecution,
}

func init() {
	runCmd.Flags().String("snapshot", "", "write the collected results to this snapshot file")
	runCmd.Flags().Bool("observer", false, "install an external observer hook first, to exercise chaining")
}

func runExecution(cmd *cobra.Command, args []string) error {
	log, err := setupLogging(cmd)
	if err != nil {
		return err
	}

	p, profilePath, err := loadRunProfile(cmd)
	if err != nil {
		return err
	}
	if profilePath != "" {
		log.Debug().Str("path", profilePath).Msg("loaded profile")
	}

	snapshotPath, err := cmd.Flags().GetString("snapshot")
	if err != nil {
		return fmt.Errorf("failed to get snapshot flag: %w", err)
	}
	if snapshotPath == "" {
		snapshotPath = p.Report.Snapshot
	}
	withObserver, err := cmd.Flags().GetBool("observer")
	if err != nil {
		return fmt.Errorf("failed to get observer flag: %w", err)
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	rt := demoRuntime(p)
	fns, err := resolveTraced(rt, p)
	if err != nil {
		return err
	}

	var observer *chattyObserver
	if withObserver {
		observer = &chattyObserver{}
		rt.SetHook(observer)
	}

	ctrl := tracer.New(rt, rt, tracer.WithLogger(log))
	ctrl.Enable(fns...)

	workErr := runWorkload(cmd.Context(), rt, p)
	snap := ctrl.Disable()

	if observer != nil {
		restored := rt.Hook() == observer
		log.Info().
			Uint64("events", observer.events.Load()).
			Bool("restored", restored).
			Msg("external observer stayed chained")
	}
	if workErr != nil {
		return fmt.Errorf("workload failed: %w", workErr)
	}

	opts := report.Options{EntryNamespace: p.Trace.EntryNamespace, Width: p.Report.Width}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSuffix(report.Format(snap, opts), "\n"))

	if snapshotPath != "" {
		session := report.NewSession()
		if err := report.WriteSnapshot(snapshotPath, session, snap); err != nil {
			return err
		}
		log.Info().Str("path", snapshotPath).Str("session", session).Msg("snapshot written")
	}
	return nil
}
