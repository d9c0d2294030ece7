package ufolaunch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/specialistvlad/tomoflow/internal/ctxlog"
	"github.com/specialistvlad/tomoflow/internal/engine"
)

// ErrWatchUnsupported is returned for graphs that watch task notifications.
var ErrWatchUnsupported = errors.New("ufo-launch does not report task notifications")

// Options configures a Scheduler.
type Options struct {
	// Launcher is the executable, "ufo-launch" by default.
	Launcher string
	// Args precede the pipeline on the command line.
	Args []string
	// DryRun writes the command line to Out instead of running it.
	DryRun bool
	Out    io.Writer
}

// Scheduler runs graphs as ufo-launch processes. It implements
// engine.Scheduler.
type Scheduler struct {
	opts Options
}

// NewScheduler returns a Scheduler.
func NewScheduler(opts Options) *Scheduler {
	if opts.Launcher == "" {
		opts.Launcher = "ufo-launch"
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Scheduler{opts: opts}
}

// Command returns the full argument vector for g, launcher first.
func (s *Scheduler) Command(g *engine.Graph) ([]string, error) {
	tokens, err := Render(g)
	if err != nil {
		return nil, err
	}
	argv := append([]string{s.opts.Launcher}, s.opts.Args...)
	return append(argv, tokens...), nil
}

// Run implements engine.Scheduler. In dry-run mode watches are accepted and
// never fire.
func (s *Scheduler) Run(ctx context.Context, g *engine.Graph, _ engine.Emit) error {
	logger := ctxlog.FromContext(ctx)

	argv, err := s.Command(g)
	if err != nil {
		return err
	}

	if s.opts.DryRun {
		_, err := fmt.Fprintln(s.opts.Out, Quote(argv))
		return err
	}
	if len(g.Watches()) > 0 {
		return ErrWatchUnsupported
	}

	logger.Debug("Starting launcher.", "command", Quote(argv))
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", argv[0], err)
	}

	var (
		wg   sync.WaitGroup
		tail lastLines
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		forward(stdout, func(line string) { logger.Info(line, "stream", "stdout") })
	}()
	go func() {
		defer wg.Done()
		forward(stderr, func(line string) {
			tail.add(line)
			logger.Warn(line, "stream", "stderr")
		})
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if msg := tail.String(); msg != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

func forward(r io.Reader, fn func(string)) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			fn(line)
		}
	}
}

// lastLines keeps the most recent stderr lines for error messages.
type lastLines struct {
	mu    sync.Mutex
	lines []string
}

const keepLines = 5

func (l *lastLines) add(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if len(l.lines) > keepLines {
		l.lines = l.lines[len(l.lines)-keepLines:]
	}
}

func (l *lastLines) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "; ")
}

// Quote joins argv into a line a POSIX shell reads back as the same words.
func Quote(argv []string) string {
	out := make([]string, len(argv))
	for i, a := range argv {
		if a != "" && strings.IndexFunc(a, needsQuote) < 0 {
			out[i] = a
			continue
		}
		out[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(out, " ")
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./=:,+%@[]!", r)
}
