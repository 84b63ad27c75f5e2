package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// SecretReader reads one line without echoing it.
type SecretReader func() (string, error)

// TerminalSecretReader returns a SecretReader for f when f is a terminal,
// and nil otherwise.
func TerminalSecretReader(f *os.File) SecretReader {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() (string, error) {
		b, err := term.ReadPassword(fd)
		return string(b), err
	}
}

// TextHandler implements the interactive text interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	secret  SecretReader
	out     *termenv.Output
	lastNav domain.NavID

	// Reads happen on a pump goroutine, one per request, so that Input can
	// honour ctx and a secret read never races a plain one.
	reqs    chan bool
	results chan inputResult
	pending bool
	started bool
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithSecretReader configures hidden input for passwords.
func WithSecretReader(sr SecretReader) TextHandlerOption {
	return func(h *TextHandler) {
		h.secret = sr
	}
}

// WithColorProfile overrides terminal colour detection.
func WithColorProfile(p termenv.Profile) TextHandlerOption {
	return func(h *TextHandler) {
		h.out = termenv.NewOutput(h.Writer, termenv.WithProfile(p))
	}
}

// NewTextHandler creates a handler for standard text IO. When r is a
// terminal, passwords are read without echo.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		out:    termenv.NewOutput(w),
	}
	if f, ok := r.(*os.File); ok {
		h.secret = TerminalSecretReader(f)
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Render prints the step prompt when the screen changes and the status line
// whenever there is one.
func (h *TextHandler) Render(ctx context.Context, v View) error {
	if v.NavID != h.lastNav && v.Prompt != "" {
		output := v.Prompt
		if h.Renderer != nil {
			if rendered, err := h.Renderer(v.Prompt); err == nil {
				output = rendered
			}
		}
		fmt.Fprintln(h.Writer, strings.TrimSpace(output))
	}
	h.lastNav = v.NavID

	switch line := StatusLine(v); v.Status {
	case domain.StatusLoading:
		fmt.Fprintln(h.Writer, h.out.String(line).Foreground(h.out.Color("#818cf8")).Italic())
	case domain.StatusError:
		fmt.Fprintln(h.Writer, h.out.String(line).Foreground(h.out.Color("#f87171")).Bold())
	}
	return nil
}

// Input prompts and reads one sanitized line. Invalid input is reported
// and asked for again.
func (h *TextHandler) Input(ctx context.Context, req InputRequest) (string, error) {
	hidden := req.Secret && h.secret != nil
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if req.Default != "" {
			fmt.Fprintf(h.Writer, "[%s] > ", req.Default)
		} else {
			fmt.Fprint(h.Writer, "> ")
		}

		text, err := h.read(ctx, hidden)
		if hidden {
			fmt.Fprintln(h.Writer)
		}
		if err != nil {
			return "", err
		}

		clean, err := SanitizeInput(strings.TrimSpace(text))
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		if clean == "" && req.Default != "" {
			return req.Default, nil
		}
		return clean, nil
	}
}

// SystemOutput prints a dimmed hint.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	fmt.Fprintln(h.Writer, h.out.String(msg).Faint())
	return nil
}

func (h *TextHandler) read(ctx context.Context, secret bool) (string, error) {
	if !h.started {
		h.started = true
		h.reqs = make(chan bool, 1)
		h.results = make(chan inputResult, 1)
		go h.pump()
	}
	// A read abandoned by a cancelled ctx is still answered by the next call.
	if !h.pending {
		h.reqs <- secret
		h.pending = true
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-h.results:
		h.pending = false
		return res.text, res.err
	}
}

func (h *TextHandler) pump() {
	for secret := range h.reqs {
		var res inputResult
		if secret {
			res.text, res.err = h.secret()
		} else {
			res.text, res.err = h.Reader.ReadString('\n')
			if res.err == io.EOF && res.text != "" {
				res.err = nil
			}
		}
		h.results <- res
	}
}
