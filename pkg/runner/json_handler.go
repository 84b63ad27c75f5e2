package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// JSONHandler implements IOHandler for structured JSON-Lines communication:
// one View per line out, one answer per line in.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

// Render emits v as one JSON line.
func (h *JSONHandler) Render(ctx context.Context, v View) error {
	return h.Encoder.Encode(v)
}

// Input reads a line holding either a JSON string or raw text.
func (h *JSONHandler) Input(ctx context.Context, req InputRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := h.Encoder.Encode(struct {
		Input InputRequest `json:"input"`
	}{req}); err != nil {
		return "", err
	}

	text, err := h.Reader.ReadString('\n')
	if err != nil && !(err == io.EOF && text != "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	clean, err := SanitizeInput(text)
	if err != nil {
		return "", err
	}
	if clean == "" && req.Default != "" {
		return req.Default, nil
	}
	return clean, nil
}

// SystemOutput emits {"system": msg}.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"system": msg})
}
