package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tidesync/tidesync/pkg/config"
	"github.com/tidesync/tidesync/pkg/contextutil"
	"github.com/tidesync/tidesync/pkg/identifier"
	"github.com/tidesync/tidesync/pkg/logging"
	"github.com/tidesync/tidesync/pkg/must"
	"github.com/tidesync/tidesync/pkg/protocol"
	"github.com/tidesync/tidesync/pkg/transport"
)

// buildServeArgs translates a resolved configuration into the flags a
// spawned "serve" subprocess needs to apply the same configuration on the
// destination side.
func buildServeArgs(cfg *config.Config, destination string) []string {
	args := []string{"serve", destination}
	if cfg.Recursive {
		args = append(args, "--recursive")
	} else {
		args = append(args, "--no-recursive")
	}
	if cfg.ChecksumMode {
		args = append(args, "--checksum")
	}
	if cfg.Delete {
		args = append(args, "--delete")
	}
	if cfg.Compress {
		args = append(args, "--compress")
	} else {
		args = append(args, "--no-compress")
	}
	for _, exclude := range cfg.Excludes {
		args = append(args, "--exclude", exclude)
	}
	if cfg.BlockSize != 0 {
		args = append(args, "--block-size", strconv.FormatUint(uint64(cfg.BlockSize), 10))
	}
	if text, err := cfg.HashAlgorithm.MarshalText(); err == nil {
		args = append(args, "--hash-algorithm", string(text))
	}
	return args
}

// syncMain spawns a "serve" subprocess for the destination tree and runs the
// sending role locally against it, matching spec.md §5's spawned-process
// transport realization.
func syncMain(command *cobra.Command, arguments []string) error {
	source, destination := arguments[0], arguments[1]

	cfg, err := syncFlags.resolve()
	if err != nil {
		return fmt.Errorf("unable to resolve configuration: %w", err)
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("unable to locate tidesync executable: %w", err)
	}

	child := exec.Command(executable, buildServeArgs(cfg, destination)...)
	child.Stderr = os.Stderr

	t, err := transport.NewSubprocess(child)
	if err != nil {
		return fmt.Errorf("unable to spawn destination subprocess: %w", err)
	}
	defer must.Close(t, nil)

	tag, err := identifier.New()
	if err != nil {
		return fmt.Errorf("unable to generate session identifier: %w", err)
	}
	logger := logging.NewLogger(syncLogLevel(), os.Stderr).Sublogger(tag)
	logger.Printf("starting sync of %s to %s", source, destination)

	sender := protocol.NewSender(t, cfg.ToOptions(source), logger)

	ctx, cancel := signal.NotifyContext(context.Background(), terminationSignals...)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- sender.Run()
	}()

	select {
	case err := <-result:
		if err != nil {
			return fmt.Errorf("sender session failed: %w", err)
		}
	case <-ctx.Done():
		if contextutil.IsCancelled(ctx) {
			return fmt.Errorf("sync interrupted")
		}
	}

	logger.Printf("session complete: sent %d bytes, received %d bytes", t.BytesSent(), t.BytesReceived())
	return nil
}

var syncCommand = &cobra.Command{
	Use:   "sync <source> <destination>",
	Short: "Synchronize a destination tree to match a source tree",
	Args:  cobra.ExactArgs(2),
	RunE:  syncMain,
}

var syncFlags sessionFlags

var syncLogLevelName string

func init() {
	flags := syncCommand.Flags()
	syncFlags.bind(flags)
	flags.StringVar(&syncLogLevelName, "log-level", "info", "Log level: disabled, error, warn, info, debug, or trace")
}

func syncLogLevel() logging.Level {
	if level, ok := logging.NameToLevel(syncLogLevelName); ok {
		return level
	}
	return logging.LevelInfo
}
