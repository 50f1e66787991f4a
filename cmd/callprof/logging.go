package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// setupLogging builds the CLI logger from the persistent flags. --quiet and
// --log-level off both silence it completely.
func setupLogging(cmd *cobra.Command) (zerolog.Logger, error) {
	root := cmd.Root()

	levelStr, err := root.PersistentFlags().GetString("log-level")
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("failed to get log-level flag: %w", err)
	}
	quiet, err := root.PersistentFlags().GetBool("quiet")
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colorValue, err := root.PersistentFlags().GetString("color")
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("failed to get color flag: %w", err)
	}

	levelStr = strings.TrimSpace(strings.ToLower(levelStr))
	if quiet || levelStr == "off" {
		return zerolog.Nop(), nil
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", levelStr, err)
	}

	useColor, err := readColorMode(colorValue)
	if err != nil {
		return zerolog.Nop(), err
	}

	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !useColor,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}

// readColorMode interprets the --color flag; auto follows the terminal.
func readColorMode(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stderr), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}
