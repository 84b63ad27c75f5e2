package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/navigation"
	"github.com/aretw0/stepwise/pkg/session"
)

const interruptGrace = 100 * time.Millisecond

// ErrNoEngine is returned by Run when the runner was built without WithEngine.
var ErrNoEngine = errors.New("runner: no engine configured")

// Runner drives one engine from a user-facing IOHandler: it renders each UI
// state, turns answers into engine input and keeps a navigation stack so the
// user can type "back".
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Input and
	// Output is created.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// Sessions persists the filled data under SessionID while the runner
	// is active. If nil, the session is ephemeral.
	Sessions  *session.Manager
	SessionID string

	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	engine *stepwise.Engine
	nav    *navigation.Navigator
}

// NewRunner creates a Runner on Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Navigator exposes the runner's back-stack. It is nil before Run.
func (r *Runner) Navigator() *navigation.Navigator {
	return r.nav
}

// Run executes the loop until the flow reaches its terminal step, the user
// exits, input ends or ctx is cancelled. The last three are not errors.
func (r *Runner) Run(ctx context.Context) error {
	if r.engine == nil {
		return ErrNoEngine
	}
	handler := r.resolveHandler()

	if r.Sessions != nil && r.SessionID != "" {
		saveCtx, stopSave := context.WithCancel(ctx)
		saved := r.Sessions.AutoSave(saveCtx, r.SessionID, r.engine)
		defer func() {
			stopSave()
			<-saved
			r.saveFinal(context.WithoutCancel(ctx))
		}()
	}

	r.nav = navigation.NewNavigator(r.engine)
	updates := r.engine.Subscribe(ctx)

	var rendered uint64
	for {
		state := r.engine.Current()
		r.nav.Follow(state)

		if state.Seq != rendered {
			rendered = state.Seq
			if err := handler.Render(ctx, NewView(state)); err != nil {
				return fmt.Errorf("render error: %w", err)
			}
		}
		if domain.IsTerminal(state.Step()) {
			r.Logger.Debug("flow finished", "session_id", r.SessionID)
			return nil
		}

		if state.IsLoading() {
			if err := r.await(ctx, updates, state.Seq); err != nil {
				return r.interrupted(ctx, err)
			}
			continue
		}

		text, err := handler.Input(ctx, r.inputRequest(state.Step()))
		if err != nil {
			return r.interrupted(ctx, err)
		}

		switch strings.ToLower(text) {
		case "exit", "quit":
			return nil
		case "back":
			if err := r.back(ctx, handler); err != nil {
				return err
			}
			continue
		}

		if err := r.dispatch(ctx, handler, state.Step(), text); err != nil {
			return err
		}
	}
}

// await blocks until the engine emits something newer than seq.
func (r *Runner) await(ctx context.Context, updates <-chan domain.UIState, seq uint64) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-updates:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				return domain.ErrEngineClosed
			}
			if s.Seq > seq {
				return nil
			}
		}
	}
}

func (r *Runner) back(ctx context.Context, handler IOHandler) error {
	nav, ok, err := r.nav.Back(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return handler.SystemOutput(ctx, "Nothing to go back to.")
	}
	r.Logger.Debug("navigated back", "nav_id", nav)
	return nil
}

func (r *Runner) inputRequest(step domain.Step) InputRequest {
	req := InputRequest{NavID: step.NavID()}
	switch st := step.(type) {
	case domain.EnterEmail:
		if st.Prefill != nil {
			req.Default = *st.Prefill
		}
	case domain.EnterPassword:
		req.Secret = true
	}
	return req
}

// dispatch turns an answer into engine input. Answers the engine would
// treat as a contract violation are caught here and reported as hints.
func (r *Runner) dispatch(ctx context.Context, handler IOHandler, step domain.Step, text string) error {
	switch st := step.(type) {
	case domain.ChooseFlow:
		option, ok := pickOption(st.Options, text)
		if !ok {
			return handler.SystemOutput(ctx, fmt.Sprintf("Unknown option %q. Choose 1-%d or type its name.", text, len(st.Options)))
		}
		return r.engine.SelectOption(ctx, option)
	case domain.EnterEmail:
		return r.engine.SubmitEmail(ctx, text)
	case domain.EnterPassword:
		return r.engine.SubmitPassword(ctx, text)
	case domain.VerifyMinAge:
		age, err := strconv.Atoi(text)
		if err != nil || age < 0 {
			return handler.SystemOutput(ctx, "Please enter your age as a number.")
		}
		return r.engine.VerifyAge(ctx, age)
	case domain.ConfirmTerms:
		switch strings.ToLower(text) {
		case "y", "yes", "accept":
			return r.engine.ConfirmTerms(ctx, true)
		case "n", "no", "decline":
			return r.engine.ConfirmTerms(ctx, false)
		}
		return handler.SystemOutput(ctx, "Please answer yes or no.")
	}
	return nil
}

// pickOption accepts a 1-based index or a case-insensitive label.
func pickOption(options []string, text string) (string, bool) {
	if i, err := strconv.Atoi(text); err == nil {
		if i < 1 || i > len(options) {
			return "", false
		}
		text = options[i-1]
	}
	for _, opt := range options {
		if strings.EqualFold(opt, text) {
			if _, err := domain.ParseOption(opt); err != nil {
				return "", false
			}
			return opt, true
		}
	}
	return "", false
}

// interrupted maps the end of input and a cancelled ctx to a clean exit.
// Callers cancel ctx on SIGINT/SIGTERM.
func (r *Runner) interrupted(ctx context.Context, err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	// Ctrl+C can surface as a read error just before the signal lands.
	select {
	case <-ctx.Done():
	case <-time.After(interruptGrace):
	}
	if ctx.Err() != nil {
		r.Logger.Debug("runner interrupted", "err", err)
		return nil
	}
	return err
}

func (r *Runner) saveFinal(ctx context.Context) {
	data, err := r.engine.Serialize(ctx)
	if err != nil {
		return
	}
	if err := r.Sessions.Save(ctx, r.SessionID, data); err != nil {
		r.Logger.Error("final save failed", "session_id", r.SessionID, "err", err)
	}
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(r.Input, r.Output, WithTextHandlerRenderer(r.Renderer))
	if !r.Headless && r.Output != nil {
		fmt.Fprintln(r.Output, "--- Stepwise (Runner) ---")
	}
	// Memoized so repeated Run calls share one input pump.
	r.Handler = th
	return th
}
