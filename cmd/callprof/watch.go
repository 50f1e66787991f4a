package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"callprof/internal/report"
	"callprof/internal/tracer"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags]",
	Short: "Trace the demo workload with a live results view",
	Long:  `Run the demo workload with tracing enabled and a live table of the accumulating results; quit early with q`,
	Args:  cobra.NoArgs,
	RunE:  watchExecution,
}

func init() {
	watchCmd.Flags().String("ui", "auto", "live view (auto|on|off)")
	watchCmd.Flags().Bool("report", true, "print the final report after the live view closes")
}

func watchExecution(cmd *cobra.Command, args []string) error {
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

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	useTUI, err := watchUIEnabled(uiValue)
	if err != nil {
		return err
	}
	printReport, err := cmd.Flags().GetBool("report")
	if err != nil {
		return fmt.Errorf("failed to get report flag: %w", err)
	}

	rt := demoRuntime(p)
	fns, err := resolveTraced(rt, p)
	if err != nil {
		return err
	}

	ctrl := tracer.New(rt, rt, tracer.WithLogger(log))
	ctrl.Enable(fns...)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	done := make(chan struct{})
	outcomeCh := make(chan error, 1)
	go func() {
		outcomeCh <- runWorkload(ctx, rt, p)
		close(done)
	}()

	opts := report.Options{EntryNamespace: p.Trace.EntryNamespace, Width: p.Report.Width}
	if useTUI {
		uiErr := runWatchUI("callprof watch", ctrl.Results, opts, p.Watch.Refresh(), done)
		// Останавливаем воркеров, если пользователь вышел раньше времени.
		cancel()
		if uiErr != nil {
			<-outcomeCh
			ctrl.Disable()
			return uiErr
		}
	}

	workErr := <-outcomeCh
	snap := ctrl.Disable()

	if workErr != nil && !errors.Is(workErr, context.Canceled) {
		return fmt.Errorf("workload failed: %w", workErr)
	}
	if printReport {
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSuffix(report.Format(snap, opts), "\n"))
	}
	return nil
}

// watchUIEnabled interprets the --ui flag: auto follows the terminal.
func watchUIEnabled(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stdout), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}
