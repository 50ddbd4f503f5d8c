package transport

import (
	"os/exec"
	"time"

	"github.com/pkg/errors"

	"github.com/tidesync/tidesync/pkg/process"
)

// defaultKillDelay is the duration a subprocess transport, when closed,
// waits for its child to exit on its own before sending SIGTERM, matching
// the teacher's pkg/process.Stream
// shutdown discipline.
const defaultKillDelay = 1 * time.Second

// NewSubprocess starts command and wraps its standard input/output as a
// Transport (spec.md §5's spawned-process transport realization, used when
// one side of a session is launched as a local child process rather than
// addressed over an existing pipe). The command must not already have its
// Stdin/Stdout redirected.
func NewSubprocess(command *exec.Cmd) (*Transport, error) {
	stream, err := process.NewStream(command, defaultKillDelay)
	if err != nil {
		return nil, errors.Wrap(err, "unable to redirect subprocess streams")
	}

	if err := command.Start(); err != nil {
		return nil, errors.Wrap(err, "unable to start subprocess")
	}

	return New(stream, stream, stream)
}
