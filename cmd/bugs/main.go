// Command bugs is the BugsWorld toolchain: it checks BL source, inspects
// compiled programs, resolves the next primitive instruction, manages the
// program store and serves the language server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
