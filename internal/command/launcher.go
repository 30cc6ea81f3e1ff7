package command

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/rafaelqm/telewire/internal/events"
)

// Launcher starts a named external application.
type Launcher interface {
	Launch(name string) error
}

// ExecLauncher spawns the application detached via os/exec. Start, not
// Run: the process is never awaited, so intake cannot stall on it.
type ExecLauncher struct {
	log *events.EventLogger
}

func NewExecLauncher(log *events.EventLogger) *ExecLauncher {
	if log == nil {
		log = events.NoopEventLogger()
	}
	return &ExecLauncher{log: log}
}

func (l *ExecLauncher) Launch(name string) error {
	cmd := launchCmd(name)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %s: %w", name, err)
	}

	// Reap the child in the background so it does not linger as a
	// zombie; the outcome is logged, never waited on inline.
	go func() {
		if err := cmd.Wait(); err != nil {
			l.log.LogLaunchError(name, err)
		}
	}()

	return nil
}

func launchCmd(name string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("cmd", "/C", "start", name)
	case "darwin":
		return exec.Command("open", "-a", name)
	default:
		return exec.Command(name)
	}
}
