package prompt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestFromArgs(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		want   string
		wantOK bool
	}{
		{name: "no args", args: nil},
		{name: "empty slice", args: []string{}},
		{name: "single word", args: []string{"Hello"}, want: "Hello", wantOK: true},
		{name: "two words", args: []string{"Hello", "world"}, want: "Hello world", wantOK: true},
		{name: "word with inner spaces kept", args: []string{"a  b", "c"}, want: "a  b c", wantOK: true},
		{name: "empty argument kept", args: []string{"x", "", "y"}, want: "x  y", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromArgs(tt.args)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("prompt = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromArgs_RoundTrip(t *testing.T) {
	prompts := []string{
		"What is the answer to life, the universe and everything?",
		"single",
		"trailing punctuation !",
		"unicode → ünïcødé 🧠",
		"double  space",
	}
	for _, p := range prompts {
		got, ok := FromArgs(strings.Split(p, " "))
		if !ok || got != p {
			t.Errorf("round trip of %q produced %q", p, got)
		}
	}
}

type stubReader struct {
	line  string
	err   error
	calls int
}

func (s *stubReader) ReadLine(context.Context) (string, error) {
	s.calls++
	return s.line, s.err
}

func TestResolve_ArgsWinOverReader(t *testing.T) {
	r := &stubReader{line: "from reader"}
	got, err := Resolve(context.Background(), []string{"Hello", "world"}, r)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "Hello world" {
		t.Errorf("prompt = %q, want %q", got, "Hello world")
	}
	if r.calls != 0 {
		t.Errorf("reader called %d times, want 0", r.calls)
	}
}

func TestResolve_FallsBackToReader(t *testing.T) {
	r := &stubReader{line: "from reader"}
	got, err := Resolve(context.Background(), nil, r)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "from reader" || r.calls != 1 {
		t.Errorf("prompt = %q after %d calls", got, r.calls)
	}
}

func TestResolve_NilReader(t *testing.T) {
	if _, err := Resolve(context.Background(), nil, nil); !errors.Is(err, ErrNoInput) {
		t.Errorf("err = %v, want ErrNoInput", err)
	}
}

func TestLineReader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "newline stripped", input: "tell me a joke\n", want: "tell me a joke"},
		{name: "crlf stripped", input: "tell me a joke\r\n", want: "tell me a joke"},
		{name: "surrounding spaces kept", input: "  padded  \n", want: "  padded  "},
		{name: "only first line", input: "first\nsecond\n", want: "first"},
		{name: "no trailing newline", input: "last line", want: "last line"},
		{name: "empty line", input: "\n", want: ""},
		{name: "eof", input: "", wantErr: ErrNoInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			r := NewLineReader(strings.NewReader(tt.input), &out, DefaultLabel)

			got, err := r.ReadLine(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadLine: %v", err)
			}
			if got != tt.want {
				t.Errorf("line = %q, want %q", got, tt.want)
			}
			if out.String() != DefaultLabel {
				t.Errorf("label = %q, want %q", out.String(), DefaultLabel)
			}
		})
	}
}

func TestLineReader_NilOutput(t *testing.T) {
	r := NewLineReader(strings.NewReader("hi\n"), nil, DefaultLabel)
	got, err := r.ReadLine(context.Background())
	if err != nil || got != "hi" {
		t.Errorf("ReadLine = %q, %v", got, err)
	}
}

func TestLineReader_ReadError(t *testing.T) {
	boom := errors.New("boom")
	r := NewLineReader(iotest.ErrReader(boom), nil, "")
	if _, err := r.ReadLine(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestLineReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	r := NewLineReader(strings.NewReader("hi\n"), &out, DefaultLabel)
	if _, err := r.ReadLine(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("label written despite cancelled context: %q", out.String())
	}
}
