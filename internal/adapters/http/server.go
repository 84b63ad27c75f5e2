package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// APIVersion is reported by GET /info.
const APIVersion = "1.0.0"

// Server exposes hosted sessions over HTTP.
type Server struct {
	Sessions *Registry
	Logger   *slog.Logger
	Metrics  http.Handler
}

// ServerOption configures the handler.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) ServerOption {
	return func(s *Server) {
		s.Metrics = h
	}
}

// NewHandler creates the HTTP API for reg.
func NewHandler(reg *Registry, opts ...ServerOption) http.Handler {
	s := &Server{Sessions: reg, Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.health)
	r.Get("/info", s.info)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Get("/events", s.events)
			r.Post("/option", s.selectOption)
			r.Post("/email", s.submitEmail)
			r.Post("/password", s.submitPassword)
			r.Post("/age", s.verifyAge)
			r.Post("/terms", s.confirmTerms)
			r.Post("/navigate", s.navigate)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	ID    string      `json:"id"`
	State runner.View `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "stepwise-http",
		"version":     stepwise.Version,
		"api_version": APIVersion,
	})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.badRequest(w, "invalid request body")
			return
		}
	}

	id, eng, err := s.Sessions.Create(r.Context(), body.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, SessionResponse{ID: id, State: runner.NewView(eng.Current())})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	eng, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{ID: id, State: runner.NewView(eng.Current())})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) selectOption(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Option string `json:"option"`
	}
	s.operate(w, r, &body, func(op operation) error {
		if _, err := domain.ParseOption(body.Option); err != nil {
			return badInput(err)
		}
		return op.engine.SelectOption(op.ctx, body.Option)
	})
}

func (s *Server) submitEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	s.operate(w, r, &body, func(op operation) error {
		return op.engine.SubmitEmail(op.ctx, body.Email)
	})
}

func (s *Server) submitPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	s.operate(w, r, &body, func(op operation) error {
		data, err := op.engine.Serialize(op.ctx)
		if err != nil {
			return err
		}
		if !data.HasEmail() {
			return conflict("submit an email first")
		}
		return op.engine.SubmitPassword(op.ctx, body.Password)
	})
}

func (s *Server) verifyAge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Age int `json:"age"`
	}
	s.operate(w, r, &body, func(op operation) error {
		if body.Age < 0 {
			return badInput(errors.New("age must not be negative"))
		}
		// Only answerable on the age screen: the engine aborts when no age
		// check is configured.
		if _, ok := op.engine.Current().Step().(domain.VerifyMinAge); !ok {
			return conflict("no age check is pending")
		}
		return op.engine.VerifyAge(op.ctx, body.Age)
	})
}

func (s *Server) confirmTerms(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Accepted bool `json:"accepted"`
	}
	s.operate(w, r, &body, func(op operation) error {
		data, err := op.engine.Serialize(op.ctx)
		if err != nil {
			return err
		}
		if !data.HasUserID() {
			return conflict("log in first")
		}
		return op.engine.ConfirmTerms(op.ctx, body.Accepted)
	})
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NavID string `json:"nav_id"`
	}
	s.operate(w, r, &body, func(op operation) error {
		nav, err := domain.ParseNavID(body.NavID)
		if err != nil {
			return badInput(err)
		}
		return op.engine.OnExternalNavigation(op.ctx, nav)
	})
}

// --- errors ---

type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func badInput(err error) error { return &statusError{code: http.StatusBadRequest, err: err} }
func conflict(msg string) error {
	return &statusError{code: http.StatusConflict, err: errors.New(msg)}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	var se *statusError
	switch {
	case errors.As(err, &se):
		s.writeJSON(w, se.code, errorResponse{Error: se.Error()})
	case errors.Is(err, domain.ErrSessionNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEngineClosed):
		s.writeJSON(w, http.StatusGone, errorResponse{Error: err.Error()})
	default:
		s.Logger.Error("request failed", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
