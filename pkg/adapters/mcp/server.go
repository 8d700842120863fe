package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/presentation/tui"
	"github.com/aretw0/automata/pkg/adapters/memory"
	"github.com/aretw0/automata/pkg/definition"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/ports"
)

// RunsURI lists the IDs of stored runs.
const RunsURI = "automata://runs"

// Engine is the part of the automata facade exposed as tools.
type Engine interface {
	Compile(def domain.Definition) (*domain.Automaton, error)
	Run(ctx context.Context, a *domain.Automaton, input string, opts ...automata.RunOption) (*domain.Trace, error)
}

// ToolError describes a rejected definition or run to the model.
type ToolError struct {
	Code    string `json:"code" jsonschema_description:"Machine-readable error code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty" jsonschema_description:"Offending input field"`
	Line    int    `json:"line,omitempty" jsonschema_description:"1-based transitions line"`
}

// ValidateResult is the output of validate_automaton.
type ValidateResult struct {
	Valid   bool              `json:"valid"`
	Summary *automata.Summary `json:"summary,omitempty"`
	Error   *ToolError        `json:"error,omitempty"`
}

// DiagramResult is the output of diagram_automaton.
type DiagramResult struct {
	Format  string     `json:"format"`
	Diagram string     `json:"diagram,omitempty" jsonschema_description:"Mermaid, DOT or JSON text"`
	Error   *ToolError `json:"error,omitempty"`
}

// SimulateResult is the output of simulate_pda.
type SimulateResult struct {
	RunID   string         `json:"run_id,omitempty"`
	Verdict domain.Verdict `json:"verdict,omitempty"`
	Log     string         `json:"log,omitempty" jsonschema_description:"Human readable transition log"`
	Trace   *domain.Trace  `json:"trace,omitempty"`
	Error   *ToolError     `json:"error,omitempty"`
}

// Server exposes the toolkit as an MCP server.
type Server struct {
	engine    Engine
	store     ports.TraceStore
	logger    *slog.Logger
	maxSteps  int
	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithStore keeps simulated runs. Defaults to memory, keeping the newest
// memory.DefaultMaxRuns runs.
func WithStore(store ports.TraceStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMaxSteps caps the max_steps argument of simulate_pda. Values below 1
// keep automata.DefaultStepLimit.
func WithMaxSteps(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

// WithLogger sets the logger. Never log to stdout when serving stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		store:     memory.NewStore(memory.WithMaxRuns(memory.DefaultMaxRuns)),
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
		maxSteps:  automata.DefaultStepLimit,
		mcpServer: server.NewMCPServer("automata-mcp", automata.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on the given port using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (SSE)", "address", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func definitionOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("kind", mcp.Description("pda (default), fsa, dfa or nfa")),
		mcp.WithString("states", mcp.Required(), mcp.Description("Comma separated state names")),
		mcp.WithString("alphabet", mcp.Required(), mcp.Description("Comma separated input symbols")),
		mcp.WithString("stack_alphabet", mcp.Description("Comma separated stack symbols (PDA only). Z is always included")),
		mcp.WithString("transitions", mcp.Required(), mcp.Description("One rule per line: 'q,a->p' (FSA) or 'q,a,X->p,YX' (PDA). Use ε or eps for the empty symbol")),
		mcp.WithString("initial_state", mcp.Required(), mcp.Description("The single initial state")),
		mcp.WithString("final_states", mcp.Required(), mcp.Description("Comma separated accepting states")),
	}
}

func (s *Server) registerTools() {
	validate := mcp.NewTool("validate_automaton",
		append([]mcp.ToolOption{
			mcp.WithDescription("Check an automaton definition and report the first problem, naming the field or transitions line."),
			mcp.WithOutputSchema[ValidateResult](),
		}, definitionOptions()...)...,
	)
	s.mcpServer.AddTool(validate, mcp.NewStructuredToolHandler(s.handleValidate))

	diagram := mcp.NewTool("diagram_automaton",
		append([]mcp.ToolOption{
			mcp.WithDescription("Render the state diagram of an automaton as Mermaid, Graphviz DOT or JSON."),
			mcp.WithString("format", mcp.Enum("mermaid", "dot", "json"), mcp.Description("Diagram encoding (default mermaid)")),
			mcp.WithOutputSchema[DiagramResult](),
		}, definitionOptions()...)...,
	)
	s.mcpServer.AddTool(diagram, mcp.NewStructuredToolHandler(s.handleDiagram))

	simulate := mcp.NewTool("simulate_pda",
		append([]mcp.ToolOption{
			mcp.WithDescription("Run a pushdown automaton on an input string and return every transition and the verdict."),
			mcp.WithString("input", mcp.Description("Input string, one symbol per character")),
			mcp.WithString("mode", mcp.Enum(string(domain.ModeFirstChoice), string(domain.ModeExplore)), mcp.Description("first-choice follows the first rule of a key; explore tries them all")),
			mcp.WithNumber("max_steps", mcp.Min(1), mcp.Max(float64(s.maxSteps)), mcp.Description("Step ceiling for this run")),
			mcp.WithOutputSchema[SimulateResult](),
		}, definitionOptions()...)...,
	)
	s.mcpServer.AddTool(simulate, mcp.NewStructuredToolHandler(s.handleSimulate))
}

func toolError(err error) *ToolError {
	field, line := domain.Locate(err)
	code := domain.Code(err)
	if code == "" {
		code = "invalid_request"
	}
	return &ToolError{Code: code, Message: err.Error(), Field: field, Line: line}
}

func (s *Server) compile(args map[string]any) (*domain.Automaton, *ToolError) {
	doc, err := definition.Decode(args)
	if err != nil {
		return nil, toolError(err)
	}
	a, err := s.engine.Compile(doc.Definition)
	if err != nil {
		s.logger.Debug("definition rejected", "err", err)
		return nil, toolError(err)
	}
	return a, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ValidateResult, error) {
	a, terr := s.compile(args)
	if terr != nil {
		return ValidateResult{Error: terr}, nil
	}
	summary := automata.Summarize(a)
	return ValidateResult{Valid: true, Summary: &summary}, nil
}

func (s *Server) handleDiagram(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (DiagramResult, error) {
	name, _ := args["format"].(string)
	format, err := automata.ParseDiagramFormat(name)
	if err != nil {
		return DiagramResult{Format: name, Error: toolError(err)}, nil
	}
	a, terr := s.compile(args)
	if terr != nil {
		return DiagramResult{Format: string(format), Error: terr}, nil
	}
	out, err := automata.RenderDiagram(automata.DiagramOf(a), format, nil)
	if err != nil {
		return DiagramResult{}, err
	}
	return DiagramResult{Format: string(format), Diagram: out}, nil
}

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (SimulateResult, error) {
	input, _ := args["input"].(string)

	var opts []automata.RunOption
	if name, ok := args["mode"].(string); ok {
		mode, err := domain.ParseRunMode(name)
		if err != nil {
			return SimulateResult{Error: toolError(err)}, nil
		}
		if mode == domain.ModeExplore {
			opts = append(opts, automata.Explore())
		}
	}
	if n, ok := args["max_steps"].(float64); ok {
		if n < 1 || n > float64(s.maxSteps) {
			return SimulateResult{Error: &ToolError{
				Code:    "invalid_request",
				Message: fmt.Sprintf("max_steps must be between 1 and %d", s.maxSteps),
				Field:   "max_steps",
			}}, nil
		}
		opts = append(opts, automata.MaxSteps(int(n)))
	}

	a, terr := s.compile(args)
	if terr != nil {
		return SimulateResult{Error: terr}, nil
	}
	trace, err := s.engine.Run(ctx, a, input, opts...)
	if err != nil {
		return SimulateResult{Error: toolError(err)}, nil
	}

	run := &domain.Run{ID: uuid.NewString(), Input: input, Trace: trace, CreatedAt: time.Now().UTC()}
	if err := s.store.Save(ctx, run); err != nil {
		return SimulateResult{}, fmt.Errorf("failed to save run: %w", err)
	}

	return SimulateResult{
		RunID:   run.ID,
		Verdict: trace.Verdict,
		Log:     tui.FormatLog(trace),
		Trace:   trace,
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(RunsURI, "Stored runs",
		mcp.WithResourceDescription("IDs of simulated runs, newest first"),
		mcp.WithMIMEType("application/json"),
	), s.readRuns)
}

func (s *Server) readRuns(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RunsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
