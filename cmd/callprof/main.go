// Package main implements the callprof CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"callprof/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "callprof",
	Short: "Runtime function-call tracer",
	Long:  `callprof instruments selected functions of a hosted runtime and reports per-function call counts and wall times, chaining into whatever trace hook is already installed`,
}

// main initializes the CLI by setting the command version, registering
// subcommands and persistent flags, and then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("profile", "", "path to callprof.toml (default: walk up from the working directory)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().String("log-level", "warn", "log verbosity (trace|debug|info|warn|error|off)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile of callprof itself to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile of callprof itself to file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go execution trace of callprof itself to file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
