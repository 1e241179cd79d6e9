package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cabincast/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print or create an example configuration file",
	Long: "Without arguments, prints a commented example configuration to stdout.\n" +
		"With --write, creates the file at the given path unless it already exists.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := cmd.Flags().GetString("write")
		if err != nil {
			return err
		}
		if path == "" {
			fmt.Print(config.Example())
			return nil
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(config.Example()), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("Wrote example configuration to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.Flags().String("write", "", "write the example configuration to this path")
}
