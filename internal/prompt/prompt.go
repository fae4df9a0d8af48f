// Package prompt selects where the prompt text comes from: positional
// arguments when there are any, otherwise a single line read from the
// terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultLabel is shown before reading a line interactively.
const DefaultLabel = "Prompt: "

var (
	// ErrNoInput is returned when input ends before any text is read.
	ErrNoInput = errors.New("no prompt provided")

	// ErrCancelled is returned when the user aborts interactive input.
	ErrCancelled = errors.New("prompt cancelled")
)

// Reader obtains one line of prompt text.
type Reader interface {
	ReadLine(ctx context.Context) (string, error)
}

// FromArgs joins args with single spaces. The boolean is false when there
// are no args, in which case the caller should fall back to a Reader.
func FromArgs(args []string) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	return strings.Join(args, " "), true
}

// Resolve returns the prompt from args, or from r when args is empty.
func Resolve(ctx context.Context, args []string, r Reader) (string, error) {
	if p, ok := FromArgs(args); ok {
		return p, nil
	}
	if r == nil {
		return "", ErrNoInput
	}
	return r.ReadLine(ctx)
}

// LineReader reads a single line from an io.Reader after writing a label.
// It is used when stdin is not a terminal (pipes, tests).
type LineReader struct {
	in    *bufio.Reader
	out   io.Writer
	label string
}

// NewLineReader returns a LineReader reading from in. The label is written
// to out before reading; a nil out suppresses it.
func NewLineReader(in io.Reader, out io.Writer, label string) *LineReader {
	return &LineReader{
		in:    bufio.NewReader(in),
		out:   out,
		label: label,
	}
}

// ReadLine returns the next line with its trailing newline (and carriage
// return, if any) removed. The text is otherwise returned verbatim. A last
// line without a terminating newline is accepted; EOF with nothing read
// yields ErrNoInput.
func (l *LineReader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l.out != nil && l.label != "" {
		if _, err := io.WriteString(l.out, l.label); err != nil {
			return "", fmt.Errorf("write prompt label: %w", err)
		}
	}

	line, err := l.in.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF):
		if line == "" {
			return "", ErrNoInput
		}
	case err != nil:
		return "", fmt.Errorf("read prompt: %w", err)
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}
