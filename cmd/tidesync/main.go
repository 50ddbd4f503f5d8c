// Command tidesync synchronizes a file tree to a destination tree using the
// block-signature delta protocol of pkg/rsync and pkg/protocol, grounded on
// the teacher's cobra-based CLI convention (_examples/mutagen-io-mutagen/cmd/mutagen/main.go).
package main

import (
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tidesync/tidesync/pkg/filesystem"
)

// defaultConfigPath is used when the caller doesn't pass --config.
var defaultConfigPath = filesystem.ConfigurationPath

// terminationSignals are the signals tidesync treats as a request to
// interrupt an in-progress session, matching the teacher's
// cmd/signals.go / cmd/signals_posix.go list.
var terminationSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func rootMain(command *cobra.Command, arguments []string) {
	command.Help()
}

var rootCommand = &cobra.Command{
	Use:   "tidesync",
	Short: "tidesync synchronizes file trees using a block-signature delta protocol",
	Run:   rootMain,
}

func init() {
	cobra.EnableCommandSorting = false
	rootCommand.AddCommand(syncCommand, serveCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
