package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/bugsworld/compiler"
	"github.com/chazu/bugsworld/compiler/hash"
)

func (a *app) tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file.bl>",
		Short: "Print the token stream of a BL source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tok := range a.manifest.BLDialect().Tokenize(src) {
				if tok.Kind == compiler.TokenEOF {
					break
				}
				fmt.Fprintf(out, "%s\t%-10s %s\n", tok.Pos, tok.Kind, tok.Literal)
			}
			return nil
		},
	}
}

func (a *app) parseCmd() *cobra.Command {
	var stats bool

	cmd := &cobra.Command{
		Use:   "parse <file.bl>",
		Short: "Check that a BL source file is a valid program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			d := a.manifest.BLDialect()
			prog, err := compiler.ParseProgram(src, d)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "program %s: %d instructions\n", prog.Name, len(prog.Context))
			if !stats {
				return nil
			}

			fmt.Fprintf(out, "main body: %d primitive calls\n", compiler.CountPrimitiveCalls(prog.Body, d))
			for _, name := range prog.InstructionNames() {
				fmt.Fprintf(out, "instruction %s: %d primitive calls\n", name, compiler.CountPrimitiveCalls(prog.Context[name], d))
			}
			fmt.Fprintf(out, "content hash: %s\n", hash.Hex(hash.HashProgram(prog, d)))
			for _, diag := range compiler.Analyze(prog, d) {
				fmt.Fprintln(out, diag)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "print primitive call counts, content hash and warnings")
	return cmd
}

func (a *app) fmtCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt <file.bl>",
		Short: "Print a BL program in canonical layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			d := a.manifest.BLDialect()
			prog, err := compiler.ParseProgram(src, d)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			formatted := d.FormatProgram(prog)

			if write && args[0] != "-" {
				if formatted == src {
					return nil
				}
				log.Infof("formatting %s", args[0])
				return os.WriteFile(args[0], []byte(formatted), 0644)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), formatted)
			return err
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file")
	return cmd
}
