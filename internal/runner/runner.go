// Package runner implements the prompt runner: check the credential, obtain
// the prompt, make one completion request and print the result.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/codex/internal/completion"
	"github.com/mark3labs/codex/internal/config"
	"github.com/mark3labs/codex/internal/prompt"
	"github.com/mark3labs/codex/internal/ui"
)

// Result is the outcome of a successful completion.
type Result struct {
	Model        string `json:"model" yaml:"model"`
	Prompt       string `json:"prompt" yaml:"prompt"`
	Text         string `json:"text" yaml:"text"`
	FinishReason string `json:"finish_reason,omitempty" yaml:"finish_reason,omitempty"`
}

// Runner holds everything needed for one run. Build it with New.
type Runner struct {
	cfg      config.Config
	client   completion.Completer
	reader   prompt.Reader
	renderer *ui.Renderer
	logger   *log.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithReader sets where the prompt is read from when no args are given.
func WithReader(r prompt.Reader) Option {
	return func(rn *Runner) { rn.reader = r }
}

// WithRenderer sets the output renderer.
func WithRenderer(r *ui.Renderer) Option {
	return func(rn *Runner) { rn.renderer = r }
}

// WithOutput is shorthand for a plain renderer on w.
func WithOutput(w io.Writer) Option {
	return func(rn *Runner) {
		rn.renderer = ui.NewRenderer(w, ui.RenderOptions{Plain: true, Markdown: rn.cfg.Markdown})
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(rn *Runner) { rn.logger = l }
}

// New returns a Runner for cfg that sends requests through client. By
// default the prompt is read from stdin and output goes to stdout.
func New(cfg config.Config, client completion.Completer, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		client: client,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.reader == nil {
		r.reader = prompt.NewLineReader(os.Stdin, os.Stderr, prompt.DefaultLabel)
	}
	if r.renderer == nil {
		r.renderer = ui.NewRenderer(os.Stdout, ui.RenderOptions{Plain: true, Markdown: cfg.Markdown})
	}
	return r
}

// Run executes the whole sequence. It returns config.ErrMissingCredential
// before touching the prompt or the network when no credential is set.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if err := r.cfg.RequireCredential(); err != nil {
		return err
	}

	text, err := prompt.Resolve(ctx, args, r.reader)
	if err != nil {
		return err
	}

	res, err := r.Complete(ctx, text)
	if err != nil {
		return err
	}

	return r.Print(res)
}

// Complete sends prompt as a single user message and returns the first
// choice with surrounding whitespace removed, or a *completion.Error.
func (r *Runner) Complete(ctx context.Context, text string) (Result, error) {
	r.logger.Debug("sending completion request",
		"model", r.cfg.Model,
		"prompt_chars", len(text),
		"base_url", r.cfg.BaseURL)

	var choices []completion.Choice
	start := time.Now()
	err := r.renderer.Spin("Thinking...", func() error {
		var err error
		choices, err = r.client.Complete(ctx, r.cfg.Model, completion.UserMessage(text))
		return err
	})
	if err != nil {
		r.logger.Debug("completion failed", "elapsed", time.Since(start), "err", err)
		return Result{}, fmt.Errorf("completion request failed: %w", err)
	}

	first, err := completion.First(choices)
	if err != nil {
		return Result{}, fmt.Errorf("completion request failed: %w", err)
	}

	r.logger.Debug("completion received",
		"elapsed", time.Since(start),
		"choices", len(choices),
		"finish_reason", first.FinishReason)

	return Result{
		Model:        r.cfg.Model,
		Prompt:       text,
		Text:         strings.TrimSpace(first.Content),
		FinishReason: first.FinishReason,
	}, nil
}

// Print writes res in the configured output format.
func (r *Runner) Print(res Result) error {
	switch r.cfg.Output {
	case config.OutputJSON:
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return r.renderer.Raw(string(b) + "\n")
	case config.OutputYAML:
		b, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return r.renderer.Raw(string(b))
	default:
		return r.renderer.Result(r.cfg.Banner, res.Text)
	}
}
