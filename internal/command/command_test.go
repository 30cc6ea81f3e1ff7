package command

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rafaelqm/telewire/internal/events"
)

type fakeLauncher struct {
	mu    sync.Mutex
	names []string
}

func (f *fakeLauncher) Launch(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, name)
	return nil
}

func (f *fakeLauncher) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  Command
		ok    bool
	}{
		{"o", CommandOpen, true},
		{"OPEN", CommandOpen, true},
		{"  open  ", CommandOpen, true},
		{"h", CommandHelp, true},
		{"Help", CommandHelp, true},
		{"q", CommandQuit, true},
		{"QUIT", CommandQuit, true},
		{"exit", CommandQuit, true},
		{"", 0, false},
		{"unknown", 0, false},
		{"openx", 0, false},
	}

	for _, tc := range cases {
		got, ok := Parse(tc.input)
		if ok != tc.ok {
			t.Errorf("Parse(%q): ok = %v, want %v", tc.input, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("Parse(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIntakeLaunchesHelperFireAndForget(t *testing.T) {
	launcher := &fakeLauncher{}
	var out bytes.Buffer
	in := strings.NewReader("open\no\n")

	intake := NewIntake(in, &out, launcher, "microsoft-edge", events.NoopEventLogger())
	intake.SetExit(func(int) { t.Fatal("unexpected exit") })
	intake.Run()

	if got := launcher.Names(); len(got) != 2 || got[0] != "microsoft-edge" {
		t.Errorf("expected two launches of microsoft-edge, got %v", got)
	}
}

func TestIntakeSilentlyIgnoresUnrecognizedInput(t *testing.T) {
	launcher := &fakeLauncher{}
	var out bytes.Buffer
	in := strings.NewReader("bogus\n\n   \nwhat\n")

	intake := NewIntake(in, &out, launcher, "helper", events.NoopEventLogger())
	intake.SetExit(func(int) { t.Fatal("unexpected exit") })
	intake.Run()

	if len(launcher.Names()) != 0 {
		t.Errorf("unrecognized input must not launch anything, got %v", launcher.Names())
	}
	if out.Len() != 0 {
		t.Errorf("unrecognized input must produce no output, got %q", out.String())
	}
}

func TestIntakeQuitExitsZeroImmediately(t *testing.T) {
	launcher := &fakeLauncher{}
	var out bytes.Buffer
	in := strings.NewReader("q\nopen\n")

	exited := make(chan int, 1)
	intake := NewIntake(in, &out, launcher, "helper", events.NoopEventLogger())
	intake.SetExit(func(code int) {
		exited <- code
		// Mirror os.Exit by not returning control to the loop body in
		// a real process; the test loop simply continues.
	})
	intake.Run()

	select {
	case code := <-exited:
		if code != 0 {
			t.Errorf("expected exit code 0, got %d", code)
		}
	default:
		t.Fatal("quit did not terminate the process")
	}
}

func TestIntakeHelpListsCommands(t *testing.T) {
	var out bytes.Buffer
	intake := NewIntake(strings.NewReader("help\n"), &out, &fakeLauncher{}, "microsoft-edge", events.NoopEventLogger())
	intake.Run()

	for _, want := range []string{"open", "help", "quit", "microsoft-edge"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("help output missing %q:\n%s", want, out.String())
		}
	}
}

// Intake must keep responding while a session handler is blocked: the
// loops share no thread. Simulated here with a blocking reader that
// yields a command while another goroutine is parked.
func TestIntakeRespondsWhileAnotherLoopBlocks(t *testing.T) {
	blocked := make(chan struct{})
	go func() {
		// Stand-in for a session handler parked on a read.
		<-blocked
	}()
	defer close(blocked)

	launcher := &fakeLauncher{}
	pr, pw := newBlockingPipe()
	intake := NewIntake(pr, &bytes.Buffer{}, launcher, "helper", events.NoopEventLogger())
	intake.SetExit(func(int) {})

	go intake.Run()

	pw <- "open\n"

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(launcher.Names()) == 1 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("command was not executed within a bounded time")
}

// newBlockingPipe returns a reader fed line-by-line from a channel,
// blocking between lines like interactive stdin.
func newBlockingPipe() (*chanReader, chan string) {
	ch := make(chan string)
	return &chanReader{ch: ch}, ch
}

type chanReader struct {
	ch  chan string
	buf []byte
}

func (r *chanReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		line, ok := <-r.ch
		if !ok {
			return 0, io.EOF
		}
		r.buf = []byte(line)
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
