package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/chazu/bugsworld/manifest"
	"github.com/chazu/bugsworld/pkg/bytecode"
	"github.com/chazu/bugsworld/store"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("bugsworld.cli")

// app holds the global flags and the project configuration shared by every
// subcommand.
type app struct {
	dir     string
	verbose int
	logFile string

	manifest *manifest.Manifest
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "bugs",
		Short:        "BugsWorld language toolchain",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVarP(&a.dir, "dir", "C", ".", "project directory (searched upwards for "+manifest.FileName+")")
	root.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		a.tokensCmd(),
		a.parseCmd(),
		a.fmtCmd(),
		a.disasmCmd(),
		a.resolveCmd(),
		a.exploreCmd(),
		a.storeCmd(),
		a.lspCmd(),
		a.initCmd(),
	)
	return root
}

// setup loads the project manifest and configures logging.
func (a *app) setup() error {
	m, err := manifest.LoadOrDefault(a.dir)
	if err != nil {
		return err
	}
	a.manifest = m

	verbosity := m.Log.Verbosity + a.verbose
	path := a.logFile
	if path == "" {
		path = m.LogFilePath()
	}
	if path == "" {
		commonlog.Configure(verbosity, nil)
	} else {
		commonlog.Configure(verbosity, &path)
	}
	log.Debugf("project %s in %s", m.Project.Name, m.Dir)
	return nil
}

// readSource returns the contents of path, or standard input for "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// loadProgram loads a compiled program from a file, or from the program
// store when fromStore is set.
func (a *app) loadProgram(arg string, fromStore bool) (*bytecode.Program, error) {
	if !fromStore {
		return bytecode.LoadProgramFile(arg)
	}
	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Get(arg)
}

func (a *app) openStore() (*store.Store, error) {
	return store.Open(a.manifest.StorePath())
}
