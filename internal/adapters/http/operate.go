package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/go-chi/chi/v5"
)

type operation struct {
	ctx    context.Context
	engine *stepwise.Engine
}

// operate decodes body, applies fn to the session's engine and answers with
// the state right after it. A contract violation that gets past fn's checks
// aborts the session and is answered with 409; the next request resumes the
// session from the store.
func (s *Server) operate(w http.ResponseWriter, r *http.Request, body any, fn func(operation) error) {
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	eng, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}

	if err := s.apply(operation{ctx: r.Context(), engine: eng}, fn); err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{ID: id, State: runner.NewView(eng.Current())})
}

func (s *Server) apply(op operation, fn func(operation) error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			if !domain.IsContractViolation(v) {
				panic(v)
			}
			s.Logger.Warn("session aborted", "err", v)
			err = conflict(fmt.Sprint(v))
		}
	}()
	return fn(op)
}

// events streams the session's UI states as server-sent events, starting
// with the current one.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	eng, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for state := range eng.Subscribe(r.Context()) {
		payload, err := json.Marshal(runner.NewView(state))
		if err != nil {
			s.Logger.Error("event encode failed", "err", err)
			return
		}
		fmt.Fprintf(w, "id: %d\nevent: state\ndata: %s\n\n", state.Seq, payload)
		flusher.Flush()
	}
}
