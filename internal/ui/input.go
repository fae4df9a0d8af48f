package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mark3labs/codex/internal/prompt"
)

// PromptInput is a single-line prompt editor used when stdin is a terminal.
//
// Key bindings:
//   - enter          → submit
//   - esc / ctrl+c   → cancel
//   - ctrl+d         → cancel when the line is empty
type PromptInput struct {
	textarea  textarea.Model
	label     string
	width     int
	value     string
	submitted bool
	cancelled bool
}

// NewPromptInput creates a focused PromptInput showing label.
func NewPromptInput(label string, width int) *PromptInput {
	ta := textarea.New()
	ta.Placeholder = "Ask anything..."
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.SetWidth(max(width-lipgloss.Width(label)-2, 10))
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	styles := ta.Styles()
	styles.Focused.Base = lipgloss.NewStyle()
	styles.Focused.Placeholder = StyleMuted(DefaultTheme())
	styles.Focused.CursorLine = lipgloss.NewStyle()
	ta.SetStyles(styles)

	return &PromptInput{
		textarea: ta,
		label:    label,
		width:    width,
	}
}

// Init implements tea.Model. Starts the cursor blink animation.
func (p *PromptInput) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (p *PromptInput) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.textarea.SetWidth(max(msg.Width-lipgloss.Width(p.label)-2, 10))
		return p, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			p.value = p.textarea.Value()
			p.submitted = true
			return p, tea.Quit
		case "esc", "ctrl+c":
			p.cancelled = true
			return p, tea.Quit
		case "ctrl+d":
			if p.textarea.Value() == "" {
				p.cancelled = true
				return p, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	p.textarea, cmd = p.textarea.Update(msg)
	return p, cmd
}

// View implements tea.Model.
func (p *PromptInput) View() tea.View {
	return tea.NewView(p.render())
}

// render draws the label and editor. Once finished it leaves the submitted
// line on screen so the transcript reads like a plain prompt.
func (p *PromptInput) render() string {
	labelStyle := StyleBanner(DefaultTheme())

	var view strings.Builder
	view.WriteString(labelStyle.Render(p.label))
	switch {
	case p.submitted:
		view.WriteString(p.value)
		view.WriteString("\n")
	case p.cancelled:
		view.WriteString("\n")
	default:
		view.WriteString(p.textarea.View())
	}
	return view.String()
}

// Value returns the submitted text.
func (p *PromptInput) Value() string { return p.value }

// Cancelled reports whether the user aborted the prompt.
func (p *PromptInput) Cancelled() bool { return p.cancelled }

// TerminalReader implements prompt.Reader with an interactive PromptInput.
type TerminalReader struct {
	in    io.Reader
	out   io.Writer
	label string
	width int
}

// NewTerminalReader returns a reader that runs the prompt on in/out.
func NewTerminalReader(in io.Reader, out io.Writer, label string, width int) *TerminalReader {
	if width <= 0 {
		width = DefaultWidth
	}
	return &TerminalReader{in: in, out: out, label: label, width: width}
}

// ReadLine runs the prompt until the user submits or cancels.
func (t *TerminalReader) ReadLine(ctx context.Context) (string, error) {
	program := tea.NewProgram(
		NewPromptInput(t.label, t.width),
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)

	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("interactive prompt: %w", err)
	}

	input, ok := final.(*PromptInput)
	if !ok || input.Cancelled() {
		return "", prompt.ErrCancelled
	}
	return input.Value(), nil
}

var _ prompt.Reader = (*TerminalReader)(nil)
