package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidesync/tidesync/pkg/logging"
	"github.com/tidesync/tidesync/pkg/must"
	"github.com/tidesync/tidesync/pkg/protocol"
	"github.com/tidesync/tidesync/pkg/transport"
)

// serveMain runs the receiving role over standard input/output, the shape a
// sync command spawns as a subprocess (mirroring the teacher's
// cmd/mutagen-agent/main.go, which performs a version handshake and then
// serves an endpoint over the same pair of streams).
func serveMain(command *cobra.Command, arguments []string) error {
	root := arguments[0]

	cfg, err := serveFlags.resolve()
	if err != nil {
		return fmt.Errorf("unable to resolve configuration: %w", err)
	}

	logger := logging.NewLogger(serveLogLevel(), os.Stderr)

	t, err := transport.NewPipe(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("unable to construct transport: %w", err)
	}
	defer must.Close(t, logger)

	receiver := protocol.NewReceiver(t, cfg.ToOptions(root), logger)
	if err := receiver.Run(); err != nil {
		return fmt.Errorf("receiver session failed: %w", err)
	}

	logger.Printf("session complete: received %d bytes, sent %d bytes", t.BytesReceived(), t.BytesSent())
	return nil
}

var serveCommand = &cobra.Command{
	Use:    "serve <root>",
	Short:  "Run the receiving role over standard input/output (internal use)",
	Args:   cobra.ExactArgs(1),
	Hidden: true,
	RunE:   serveMain,
}

var serveFlags sessionFlags

var serveLogLevelName string

func init() {
	flags := serveCommand.Flags()
	serveFlags.bind(flags)
	flags.StringVar(&serveLogLevelName, "log-level", "warn", "Log level: disabled, error, warn, info, debug, or trace")
}

func serveLogLevel() logging.Level {
	if level, ok := logging.NameToLevel(serveLogLevelName); ok {
		return level
	}
	return logging.LevelWarn
}
