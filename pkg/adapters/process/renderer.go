package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
)

// FormatPlaceholder is replaced by the requested output format in the
// renderer arguments.
const FormatPlaceholder = "{format}"

// ErrUnsupportedFormat is returned for an output format outside the
// renderer's allow-list.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// DefaultFormats lists the output formats accepted by default.
var DefaultFormats = []string{"png", "svg", "pdf", "jpg", "gif", "plain", "json"}

// Renderer turns Graphviz DOT text into an image by piping it into an
// external layout binary. Only formats on the allow-list are passed to the
// command line.
type Renderer struct {
	command string
	args    []string
	formats []string
	baseDir string
}

// RendererOption configures the renderer.
type RendererOption func(*Renderer)

// WithCommand replaces the layout binary and its argument template.
// Arguments may contain FormatPlaceholder.
func WithCommand(command string, args ...string) RendererOption {
	return func(r *Renderer) {
		r.command = command
		r.args = args
	}
}

// WithFormats replaces the allow-list of output formats.
func WithFormats(formats ...string) RendererOption {
	return func(r *Renderer) {
		r.formats = formats
	}
}

// WithBaseDir sets the working directory for the executed process.
func WithBaseDir(dir string) RendererOption {
	return func(r *Renderer) {
		r.baseDir = dir
	}
}

// NewRenderer creates a renderer that runs "dot -T{format}".
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		command: "dot",
		args:    []string{"-T" + FormatPlaceholder},
		formats: DefaultFormats,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Available reports whether the layout binary can be found.
func (r *Renderer) Available() bool {
	_, err := exec.LookPath(r.command)
	return err == nil
}

// Render pipes dot into the layout binary and returns what it writes to
// stdout. The process is killed when ctx is done.
func (r *Renderer) Render(ctx context.Context, dot, format string) ([]byte, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if !slices.Contains(r.formats, format) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	args := make([]string, len(r.args))
	for i, a := range r.args {
		args[i] = strings.ReplaceAll(a, FormatPlaceholder, format)
	}

	cmd := exec.CommandContext(ctx, r.command, args...)
	cmd.Dir = r.baseDir
	cmd.Stdin = strings.NewReader(dot)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w. Stderr: %s", r.command, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// RenderFile renders dot and writes the result to path.
func (r *Renderer) RenderFile(ctx context.Context, dot, format, path string) error {
	out, err := r.Render(ctx, dot, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
