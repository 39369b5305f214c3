package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/linkorg/internal/config"
	"github.com/dgallion1/linkorg/internal/store"
)

func newInitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file, notes directory and index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The config file itself is written by load when missing.
			path := c.configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := os.MkdirAll(c.cfg.NotesDir, 0o755); err != nil {
				return fmt.Errorf("create notes dir: %w", err)
			}
			idx, err := c.openStore()
			if err != nil {
				return err
			}
			if err := idx.Close(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "linkorg initialized")
			fmt.Fprintln(out, "  config:", path)
			fmt.Fprintln(out, "  notes: ", c.cfg.NotesDir)
			fmt.Fprintln(out, "  index: ", filepath.Join(c.cfg.DataDir, store.DBName))
			return nil
		},
	}
}
