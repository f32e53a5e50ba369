package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chazu/bugsworld/manifest"
)

func (a *app) initCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a " + manifest.FileName + " with default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.dir
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			m := manifest.Default(abs)
			if name != "" {
				m.Project.Name = name
			}
			if err := manifest.Save(abs, m); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", filepath.Join(abs, manifest.FileName))
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name (defaults to the directory name)")
	return cmd
}
