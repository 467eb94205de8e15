// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// levelRouter is a slog.Handler that routes records below ERROR to one
// handler and ERROR+ to another.
type levelRouter struct {
	level slog.Leveler
	out   slog.Handler
	err   slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level.Level()
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.err.Handle(ctx, r)
	}
	return lr.out.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{level: lr.level, out: lr.out.WithAttrs(attrs), err: lr.err.WithAttrs(attrs)}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{level: lr.level, out: lr.out.WithGroup(name), err: lr.err.WithGroup(name)}
}

// Options selects the logger's output.
type Options struct {
	Level  slog.Level
	Path   string // also append every record to this file
	Pretty bool   // colored tint output on stderr, for development
}

// Setup installs the default logger. In pretty mode all records go to
// stderr through tint. Otherwise records below ERROR go to stdout and
// ERROR goes to stderr as text. The returned func closes the log file.
func Setup(opts Options) (func(), error) {
	cleanup := func() {}
	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if opts.Path != "" {
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	slog.SetDefault(slog.New(NewHandler(stdoutW, stderrW, opts)))
	return cleanup, nil
}

// NewHandler builds the handler Setup installs, writing to the given streams.
func NewHandler(stdout, stderr io.Writer, opts Options) slog.Handler {
	if opts.Pretty {
		return tint.NewHandler(stderr, &tint.Options{
			Level:      opts.Level,
			TimeFormat: time.Kitchen,
		})
	}

	ho := &slog.HandlerOptions{Level: opts.Level}
	return &levelRouter{
		level: opts.Level,
		out:   slog.NewTextHandler(stdout, ho),
		err:   slog.NewTextHandler(stderr, ho),
	}
}
