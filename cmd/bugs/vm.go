package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/bugsworld/pkg/bytecode"
)

func (a *app) disasmCmd() *cobra.Command {
	var (
		pc        int
		fromStore bool
	)

	cmd := &cobra.Command{
		Use:   "disasm <program>",
		Short: "Disassemble a compiled BugsWorld program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProgram(args[0], fromStore)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), bytecode.Disassemble(p, pc))
			return err
		},
	}
	cmd.Flags().IntVar(&pc, "pc", -1, "mark the instruction at this address")
	cmd.Flags().BoolVar(&fromStore, "stored", false, "load the program from the store by name")
	return cmd
}

func (a *app) resolveCmd() *cobra.Command {
	var (
		pc        int
		sees      string
		fromStore bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <program>",
		Short: "Find the next primitive instruction the bug executes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProgram(args[0], fromStore)
			if err != nil {
				return err
			}
			state, err := bytecode.ParseCellState(sees)
			if err != nil {
				return err
			}
			next, err := a.manifest.Resolver().NextPrimitive(p, pc, state)
			if err != nil {
				return err
			}
			log.Debugf("resolved pc %d seeing %s to %d", pc, state, next)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s at address %d\n", p.Opcode(next), next)
			return err
		},
	}
	cmd.Flags().IntVar(&pc, "pc", 0, "program counter to resolve from")
	cmd.Flags().StringVar(&sees, "sees", "EMPTY", "what the bug sees: EMPTY, WALL, FRIEND, ENEMY or 0-3")
	cmd.Flags().BoolVar(&fromStore, "stored", false, "load the program from the store by name")
	return cmd
}

func (a *app) exploreCmd() *cobra.Command {
	var fromStore bool

	cmd := &cobra.Command{
		Use:   "explore <program>",
		Short: "Step through a compiled program interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProgram(args[0], fromStore)
			if err != nil {
				return err
			}
			s := newSession(p, a.manifest.Resolver(), cmd.InOrStdin(), cmd.OutOrStdout())
			return s.Run()
		},
	}
	cmd.Flags().BoolVar(&fromStore, "stored", false, "load the program from the store by name")
	return cmd
}
