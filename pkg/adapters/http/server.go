package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/pkg/adapters/memory"
	"github.com/aretw0/automata/pkg/definition"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/observability"
	"github.com/aretw0/automata/pkg/ports"
)

//go:embed openapi.yaml
var openapiSpec []byte

// MaxBodyBytes caps the size of a request body.
const MaxBodyBytes = 1 << 20

// CodeInvalidRequest marks a body that is not JSON or does not match its schema.
const CodeInvalidRequest = "invalid_request"

// Engine is the part of the automata facade the server drives.
type Engine interface {
	Compile(def domain.Definition) (*domain.Automaton, error)
	Run(ctx context.Context, a *domain.Automaton, input string, opts ...automata.RunOption) (*domain.Trace, error)
}

// Server exposes validation, diagrams and simulation over HTTP.
type Server struct {
	engine    Engine
	store     ports.TraceStore
	metrics   *observability.Metrics
	logger    *slog.Logger
	rateLimit int
	maxSteps  int
	doc       *openapi3.T
}

// Option configures the server.
type Option func(*Server)

// WithStore sets where simulated runs are kept. Defaults to memory, keeping
// the newest memory.DefaultMaxRuns runs.
func WithStore(store ports.TraceStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMetrics records validation failures and mounts /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithRateLimit allows n requests per minute per client IP. Zero disables it.
func WithRateLimit(n int) Option {
	return func(s *Server) {
		s.rateLimit = n
	}
}

// WithMaxSteps caps the max_steps a client may request. Values below 1 keep
// automata.DefaultStepLimit.
func WithMaxSteps(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer loads the embedded API document and prepares the server.
func NewServer(engine Engine, opts ...Option) (*Server, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	s := &Server{
		engine: engine,
		store:  memory.NewStore(memory.WithMaxRuns(memory.DefaultMaxRuns)),
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		maxSteps: automata.DefaultStepLimit,
		doc:      doc,
	}
	for _, opt := range opts {
		opt(s)
	}

	if req, ok := doc.Components.Schemas["SimulateRequest"]; ok && req.Value != nil {
		if prop, ok := req.Value.Properties["max_steps"]; ok && prop.Value != nil {
			limit := float64(s.maxSteps)
			prop.Value.Max = &limit
		}
	}
	return s, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openapiSpec)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(httprate.Limit(
				s.rateLimit,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Retry-After", "60")
					writeError(w, http.StatusTooManyRequests, apiError{
						Code:    "rate_limit_exceeded",
						Message: "too many requests, try again later",
					})
				}),
			))
		}
		r.Post("/validate", s.validate)
		r.Post("/diagram", s.diagram)
		r.Post("/simulate", s.simulate)
		r.Get("/runs", s.listRuns)
		r.Get("/runs/{id}", s.getRun)
		r.Delete("/runs/{id}", s.deleteRun)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"version":     automata.Version,
		"api_version": s.doc.Info.Version,
	})
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	def, ok := s.readDefinition(w, r)
	if !ok {
		return
	}
	a, err := s.compile(def)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, automata.Summarize(a))
}

func (s *Server) diagram(w http.ResponseWriter, r *http.Request) {
	format, err := automata.ParseDiagramFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, apiError{Code: CodeInvalidRequest, Message: err.Error()})
		return
	}
	def, ok := s.readDefinition(w, r)
	if !ok {
		return
	}
	a, err := s.compile(def)
	if err != nil {
		s.fail(w, err)
		return
	}

	d := automata.DiagramOf(a)
	if format == automata.FormatJSON {
		writeJSON(w, http.StatusOK, d)
		return
	}
	out, err := automata.RenderDiagram(d, format, nil)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, out)
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readBody(w, r, "SimulateRequest")
	if !ok {
		return
	}
	defRaw, _ := raw["definition"].(map[string]any)
	doc, err := definition.Decode(defRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, apiError{Code: CodeInvalidRequest, Message: err.Error()})
		return
	}
	input, _ := raw["input"].(string)

	var opts []automata.RunOption
	if m, ok := raw["mode"].(string); ok {
		mode, err := domain.ParseRunMode(m)
		if err != nil {
			writeError(w, http.StatusBadRequest, apiError{Code: CodeInvalidRequest, Message: err.Error()})
			return
		}
		if mode == domain.ModeExplore {
			opts = append(opts, automata.Explore())
		} else {
			opts = append(opts, automata.FirstChoice())
		}
	}
	if n, ok := raw["max_steps"].(float64); ok {
		if n < 1 || n > float64(s.maxSteps) {
			writeError(w, http.StatusBadRequest, apiError{
				Code:    CodeInvalidRequest,
				Message: fmt.Sprintf("max_steps must be between 1 and %d", s.maxSteps),
			})
			return
		}
		opts = append(opts, automata.MaxSteps(int(n)))
	}

	a, err := s.compile(doc.Definition)
	if err != nil {
		s.fail(w, err)
		return
	}
	trace, err := s.engine.Run(r.Context(), a, input, opts...)
	if err != nil {
		s.fail(w, err)
		return
	}

	run := &domain.Run{
		ID:        uuid.NewString(),
		Input:     input,
		Trace:     trace,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Save(r.Context(), run); err != nil {
		s.fail(w, fmt.Errorf("failed to save run: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"runs": ids})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// compile records validation failures before handing them back.
func (s *Server) compile(def domain.Definition) (*domain.Automaton, error) {
	a, err := s.engine.Compile(def)
	if err != nil && s.metrics != nil {
		s.metrics.ObserveValidation(err)
	}
	return a, err
}

func (s *Server) readDefinition(w http.ResponseWriter, r *http.Request) (domain.Definition, bool) {
	raw, ok := s.readBody(w, r, "Definition")
	if !ok {
		return domain.Definition{}, false
	}
	doc, err := definition.Decode(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, apiError{Code: CodeInvalidRequest, Message: err.Error()})
		return domain.Definition{}, false
	}
	return doc.Definition, true
}

// readBody decodes a JSON object and checks it against the named component
// schema of the API document.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, schema string) (map[string]any, bool) {
	var raw map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, apiError{Code: CodeInvalidRequest, Message: "invalid JSON body: " + err.Error()})
		return nil, false
	}
	if raw == nil {
		writeError(w, http.StatusBadRequest, apiError{Code: CodeInvalidRequest, Message: "body must be a JSON object"})
		return nil, false
	}

	ref, ok := s.doc.Components.Schemas[schema]
	if !ok {
		s.fail(w, fmt.Errorf("schema %q not found", schema))
		return nil, false
	}
	if err := ref.Value.VisitJSON(raw); err != nil {
		s.logger.Debug("request body rejected", "schema", schema, "err", err)
		writeError(w, http.StatusBadRequest, apiError{Code: CodeInvalidRequest, Message: err.Error()})
		return nil, false
	}
	return raw, true
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// fail maps err to a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, err error) {
	code := domain.Code(err)
	field, line := domain.Locate(err)

	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		status = http.StatusNotFound
	case code == "":
		status = http.StatusInternalServerError
		code = "internal"
		s.logger.Error("request failed", "err", err)
	}

	writeError(w, status, apiError{Code: code, Message: err.Error(), Field: field, Line: line})
}

func writeError(w http.ResponseWriter, status int, e apiError) {
	writeJSON(w, status, map[string]apiError{"error": e})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve runs the server on addr until ctx is done, then shuts it down.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		<-errCh
		return nil
	}
}
