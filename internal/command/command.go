// Package command implements operator command intake: a line-oriented
// loop running concurrently with the telemetry path, sharing nothing
// with it except process termination.
package command

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rafaelqm/telewire/internal/events"
)

// Command is one recognized operator action.
type Command int

const (
	CommandOpen Command = iota
	CommandHelp
	CommandQuit
)

func (c Command) String() string {
	switch c {
	case CommandOpen:
		return "open"
	case CommandHelp:
		return "help"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Parse maps one input line to a command. Matching is case-insensitive
// against a small fixed token set; anything else is not a command.
func Parse(input string) (Command, bool) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "O", "OPEN":
		return CommandOpen, true
	case "H", "HELP":
		return CommandHelp, true
	case "Q", "QUIT", "EXIT":
		return CommandQuit, true
	default:
		return 0, false
	}
}

// Intake reads operator lines and executes mapped actions. Long-running
// actions are fire-and-forget so intake never stalls, and quit
// terminates the process without waiting for an in-flight session.
type Intake struct {
	in       io.Reader
	out      io.Writer
	launcher Launcher
	helper   string
	log      *events.EventLogger
	exit     func(int)
}

// NewIntake builds an intake loop. helper names the external
// application the open command launches. A nil exit uses os.Exit.
func NewIntake(in io.Reader, out io.Writer, launcher Launcher, helper string, log *events.EventLogger) *Intake {
	if log == nil {
		log = events.NoopEventLogger()
	}
	if launcher == nil {
		launcher = NewExecLauncher(log)
	}
	return &Intake{
		in:       in,
		out:      out,
		launcher: launcher,
		helper:   helper,
		log:      log,
		exit:     os.Exit,
	}
}

// SetExit overrides process termination, for tests.
func (i *Intake) SetExit(exit func(int)) {
	i.exit = exit
}

// Run consumes input lines until the reader is exhausted. Unrecognized
// input produces no action and no error; this silent-ignore policy is
// intentional.
func (i *Intake) Run() {
	scanner := bufio.NewScanner(i.in)
	for scanner.Scan() {
		line := scanner.Text()
		cmd, ok := Parse(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				i.log.LogCommandIgnored(line)
			}
			continue
		}
		i.execute(cmd)
	}
}

func (i *Intake) execute(cmd Command) {
	i.log.LogCommand(cmd.String())

	switch cmd {
	case CommandOpen:
		// Fire-and-forget: the helper is started, never awaited.
		if err := i.launcher.Launch(i.helper); err != nil {
			i.log.LogLaunchError(i.helper, err)
		}
	case CommandHelp:
		i.printHelp()
	case CommandQuit:
		fmt.Fprintln(i.out, "shutting down")
		i.exit(0)
	}
}

func (i *Intake) printHelp() {
	fmt.Fprintf(i.out, `
commands:
  o, open       launch %s
  h, help       show this help
  q, quit, exit stop the server
`, i.helper)
}
