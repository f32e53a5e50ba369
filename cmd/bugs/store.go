package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/bugsworld/compiler"
	"github.com/chazu/bugsworld/compiler/hash"
	"github.com/chazu/bugsworld/pkg/bytecode"
)

func (a *app) storeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the library of compiled programs",
	}
	cmd.AddCommand(a.storePutCmd(), a.storeGetCmd(), a.storeListCmd(), a.storeRmCmd())
	return cmd
}

func (a *app) storePutCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "put <name> <program>",
		Short: "Validate a compiled program and store it under name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := bytecode.LoadProgramFile(args[1])
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}

			var sourceHash string
			if source != "" {
				src, err := os.ReadFile(source)
				if err != nil {
					return err
				}
				d := a.manifest.BLDialect()
				prog, err := compiler.ParseProgram(string(src), d)
				if err != nil {
					return fmt.Errorf("%s: %w", source, err)
				}
				sourceHash = hash.Hex(hash.HashProgram(prog, d))
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			h, err := s.PutWithSource(args[0], p, sourceHash)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], h)
			return err
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "BL source the program was compiled from")
	return cmd
}

func (a *app) storeGetCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print a stored program in text form, or write it to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.Get(args[0])
			if err != nil {
				return err
			}
			if output != "" {
				return bytecode.SaveProgramFile(output, p)
			}
			return p.WriteText(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file (.bwc for CBOR)")
	return cmd
}

func (a *app) storeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "name\twords\thash\tsource\tupdated")
			for _, e := range entries {
				src := "-"
				if e.SourceHash != "" {
					src = short(e.SourceHash)
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					e.Name, e.Words, short(e.Hash), src, e.Updated.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func (a *app) storeRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>...",
		Short: "Remove stored programs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			for _, name := range args {
				if err := s.Delete(name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// short abbreviates a hex hash for listings.
func short(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
