package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"callprof/internal/profile"
)

// loadRunProfile resolves the active profile: the --profile flag wins, then a
// callprof.toml discovered by walking up from the working directory, then the
// built-in defaults. The returned path is empty when defaults are in effect.
func loadRunProfile(cmd *cobra.Command) (*profile.Profile, string, error) {
	root := cmd.Root()

	flagPath, err := root.PersistentFlags().GetString("profile")
	if err != nil {
		return nil, "", fmt.Errorf("failed to get profile flag: %w", err)
	}
	if flagPath != "" {
		p, err := profile.Load(flagPath)
		if err != nil {
			return nil, "", err
		}
		return p, flagPath, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	path, ok, err := profile.Find(wd)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return profile.Default(), "", nil
	}
	p, err := profile.Load(path)
	if err != nil {
		return nil, "", err
	}
	return p, path, nil
}
