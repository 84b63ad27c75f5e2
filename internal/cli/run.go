package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	SessionID string
	Fresh     bool
	JSON      bool
	Headless  bool
	Width     int // word-wrap column, 80 when unset

	Input  io.Reader // defaults to os.Stdin
	Output io.Writer // defaults to os.Stdout
}

// Run drives one interactive login flow. With a session ID the flow is
// resumed from, and saved to, the configured store.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	in, out := opts.Input, opts.Output
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	quiet := opts.JSON || opts.Headless

	if !quiet {
		tui.PrintBanner(out, stepwise.Version)
	}

	data := domain.Empty()
	if opts.SessionID != "" {
		if opts.Fresh {
			if err := a.Sessions.Delete(ctx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("reset session: %w", err)
			}
		}
		loaded, resumed, err := a.Sessions.LoadOrStart(ctx, opts.SessionID)
		if err != nil {
			return fmt.Errorf("failed to init session: %w", err)
		}
		data = loaded
		logSessionStatus(out, a.Logger, opts.SessionID, data, resumed, quiet)
	}

	eng, err := a.engineFactory()(opts.SessionID, data)
	if err != nil {
		return fmt.Errorf("error initializing engine: %w", err)
	}
	defer eng.Close()

	runnerOpts := []runner.Option{
		runner.WithEngine(eng),
		runner.WithLogger(a.Logger),
		runner.WithHeadless(opts.Headless),
		runner.WithInputHandler(a.ioHandler(opts, in, out)),
	}
	if opts.SessionID != "" {
		runnerOpts = append(runnerOpts,
			runner.WithSessions(a.Sessions),
			runner.WithSessionID(opts.SessionID),
		)
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	runErr := runner.NewRunner(runnerOpts...).Run(sigCtx)

	var nav domain.NavID
	if step := eng.Current().Step(); step != nil {
		nav = step.NavID()
	}
	logCompletion(out, nav, runErr, quiet, sigCtx.Signal())
	return runErr
}

func (a *App) ioHandler(opts RunOptions, in io.Reader, out io.Writer) runner.IOHandler {
	if opts.JSON {
		return runner.NewJSONHandler(in, out)
	}
	var thOpts []runner.TextHandlerOption
	if !opts.Headless {
		width := opts.Width
		if width <= 0 {
			width = 80
		}
		render, err := tui.NewRenderer(a.Config.Style, width)
		if err != nil {
			a.Logger.Warn("markdown rendering disabled", "err", err)
		} else {
			thOpts = append(thOpts, runner.WithTextHandlerRenderer(render))
		}
	}
	return runner.NewTextHandler(in, out, thOpts...)
}
