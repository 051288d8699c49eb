package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/ijcnam/internal/config"
)

// configTemplate documents every config file key with its default.
//
//go:embed templates/ijcnam.yaml
var configTemplate []byte

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented configuration file",
		Long: `Write a .ijcnam configuration file listing every setting with its default.

The file is looked up by the other commands in the current directory, then
in the XDG config directory, then in the home directory.

Examples:
  ijcnam init
  ijcnam init -o ~/.config/ijcnam/config.yaml
  ijcnam init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile, "Where to write the configuration file")
	cmd.Flags().BoolP("force", "f", false, "Replace an existing file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, configTemplate, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Set root to choose where data/ij_cnam is created, then run: ijcnam run\n")
	return nil
}
