package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// DefaultWidth is used for word wrapping when the terminal size is unknown.
const DefaultWidth = 80

// RenderOptions controls how results are written.
type RenderOptions struct {
	// Plain disables all ANSI styling; set when stdout is not a terminal.
	Plain bool
	// Markdown renders result text through glamour.
	Markdown bool
	// Width is the wrap width for markdown. Zero means DefaultWidth.
	Width int
	// Status receives the progress spinner. Nil disables it.
	Status io.Writer
}

// Renderer writes completion output to the terminal.
type Renderer struct {
	out   io.Writer
	theme Theme
	opts  RenderOptions
}

// NewRenderer returns a Renderer writing to out.
func NewRenderer(out io.Writer, opts RenderOptions) *Renderer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	return &Renderer{
		out:   out,
		theme: DefaultTheme(),
		opts:  opts,
	}
}

// Result prints banner followed by a blank line and text. The text is
// written as given unless markdown rendering is enabled.
func (r *Renderer) Result(banner, text string) error {
	body := text
	if r.opts.Markdown {
		md, err := r.renderMarkdown(text)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		body = md
	}

	_, err := fmt.Fprintf(r.out, "%s\n%s\n", r.styleLines(banner), body)
	return err
}

// Raw writes s unchanged. Used for structured output.
func (r *Renderer) Raw(s string) error {
	_, err := io.WriteString(r.out, s)
	return err
}

// Spin runs action while showing a spinner on the status writer.
func (r *Renderer) Spin(message string, action func() error) error {
	if r.opts.Status == nil {
		return action()
	}

	spinner := NewSpinner(r.opts.Status, message, r.theme)
	spinner.Start()
	err := action()
	spinner.Stop()

	return err
}

// styleLines applies the banner style line by line so blank lines stay
// blank instead of being padded by lipgloss.
func (r *Renderer) styleLines(s string) string {
	if r.opts.Plain {
		return s
	}
	style := StyleBanner(r.theme)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = style.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderMarkdown(text string) (string, error) {
	style := styles.LightStyle
	switch {
	case r.opts.Plain:
		style = styles.NoTTYStyle
	case IsDarkBackground():
		style = styles.DarkStyle
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(r.opts.Width),
	)
	if err != nil {
		return "", err
	}
	out, err := tr.Render(text)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
