package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/codex/internal/completion"
	"github.com/mark3labs/codex/internal/config"
	"github.com/mark3labs/codex/internal/prompt"
)

type fakeAPI struct {
	server  *httptest.Server
	hits    atomic.Int32
	status  int
	content string
	last    struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
}

// newFakeAPI starts a chat-completions stub and points the environment at
// it. It also isolates the test from any .codex config file.
func newFakeAPI(t *testing.T, content string) *fakeAPI {
	t.Helper()
	api := &fakeAPI{status: http.StatusOK, content: content}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.hits.Add(1)
		if err := json.NewDecoder(r.Body).Decode(&api.last); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(api.status)
		if api.status != http.StatusOK {
			fmt.Fprint(w, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`)
			return
		}
		body, _ := json.Marshal(api.content)
		fmt.Fprintf(w, `{"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": %s}}]}`, body)
	}))
	t.Cleanup(api.server.Close)

	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.APIKeyEnv, "sk-test")
	t.Setenv("OPENAI_BASE_URL", api.server.URL+"/v1")
	for _, k := range []string{"CODEX_MODEL", "CODEX_OUTPUT", "CODEX_PROVIDER_URL", "CODEX_MARKDOWN", "CODEX_DEBUG", "CODEX_TIMEOUT"} {
		t.Setenv(k, "")
	}
	return api
}

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer

	root := GetRootCommand("test")
	root.SetArgs(append([]string{}, args...)) // non-nil: cobra falls back to os.Args on nil
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestRoot_MissingCredential(t *testing.T) {
	api := newFakeAPI(t, "unused")
	t.Setenv(config.APIKeyEnv, "")

	res := execute(t, "", "Hello", "world")
	if !errors.Is(res.err, config.ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", res.err)
	}
	if !strings.Contains(res.err.Error(), "OPENAI_API_KEY") {
		t.Errorf("error %q does not name OPENAI_API_KEY", res.err)
	}
	if n := api.hits.Load(); n != 0 {
		t.Errorf("made %d network calls, want 0", n)
	}
	if res.stdout != "" {
		t.Errorf("unexpected stdout %q", res.stdout)
	}
}

func TestRoot_PromptFromArgs(t *testing.T) {
	api := newFakeAPI(t, "  42  ")

	res := execute(t, "", "Hello", "world")
	if res.err != nil {
		t.Fatalf("execute: %v", res.err)
	}

	if api.last.Model != config.DefaultModel {
		t.Errorf("model = %q, want %q", api.last.Model, config.DefaultModel)
	}
	if len(api.last.Messages) != 1 || api.last.Messages[0].Role != "user" || api.last.Messages[0].Content != "Hello world" {
		t.Errorf("messages = %+v", api.last.Messages)
	}

	want := config.DefaultBanner + "\n42\n"
	if res.stdout != want {
		t.Errorf("stdout = %q, want %q", res.stdout, want)
	}
}

func TestRoot_PromptFromStdin(t *testing.T) {
	api := newFakeAPI(t, "answer")

	res := execute(t, "what is a goroutine?\n")
	if res.err != nil {
		t.Fatalf("execute: %v", res.err)
	}
	if got := api.last.Messages[0].Content; got != "what is a goroutine?" {
		t.Errorf("prompt = %q", got)
	}
	if !strings.Contains(res.stderr, prompt.DefaultLabel) {
		t.Errorf("stderr %q does not contain the prompt label", res.stderr)
	}
}

func TestRoot_EmptyStdin(t *testing.T) {
	api := newFakeAPI(t, "unused")

	res := execute(t, "")
	if !errors.Is(res.err, prompt.ErrNoInput) {
		t.Fatalf("err = %v, want ErrNoInput", res.err)
	}
	if n := api.hits.Load(); n != 0 {
		t.Errorf("made %d network calls, want 0", n)
	}
}

func TestRoot_FlagsStopAtFirstPromptWord(t *testing.T) {
	api := newFakeAPI(t, "1")

	res := execute(t, "", "-m", "gpt-4", "what", "is", "-1", "+", "2", "--debug")
	if res.err != nil {
		t.Fatalf("execute: %v", res.err)
	}
	if api.last.Model != "gpt-4" {
		t.Errorf("model = %q, want gpt-4", api.last.Model)
	}
	if got := api.last.Messages[0].Content; got != "what is -1 + 2 --debug" {
		t.Errorf("prompt = %q", got)
	}
}

func TestRoot_DashedPromptRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		model string
		want  string
	}{
		{
			name:  "negative number",
			args:  strings.Split("-1 + 2 equals what", " "),
			model: config.DefaultModel,
			want:  "-1 + 2 equals what",
		},
		{
			name:  "unknown long option",
			args:  strings.Split("--no-such-flag is text", " "),
			model: config.DefaultModel,
			want:  "--no-such-flag is text",
		},
		{
			name:  "help shorthand after double dash",
			args:  strings.Split("-- -h is a flag?", " "),
			model: config.DefaultModel,
			want:  "-h is a flag?",
		},
		{
			name:  "version after flags and double dash",
			args:  strings.Split("-m gpt-4 -- --version of go", " "),
			model: "gpt-4",
			want:  "--version of go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, "3")

			res := execute(t, "", tt.args...)
			if res.err != nil {
				t.Fatalf("execute: %v", res.err)
			}
			if n := api.hits.Load(); n != 1 {
				t.Fatalf("made %d network calls, want 1", n)
			}
			if api.last.Model != tt.model {
				t.Errorf("model = %q, want %q", api.last.Model, tt.model)
			}
			if got := api.last.Messages[0].Content; got != tt.want {
				t.Errorf("prompt = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoot_HelpAndVersion(t *testing.T) {
	api := newFakeAPI(t, "unused")

	res := execute(t, "", "--version")
	if res.err != nil {
		t.Fatalf("--version: %v", res.err)
	}
	if res.stdout != "codex version test\n" {
		t.Errorf("--version stdout = %q", res.stdout)
	}

	res = execute(t, "", "--help")
	if res.err != nil {
		t.Fatalf("--help: %v", res.err)
	}
	if !strings.Contains(res.stdout, "--model") {
		t.Errorf("--help output does not list flags: %q", res.stdout)
	}

	if n := api.hits.Load(); n != 0 {
		t.Errorf("made %d network calls, want 0", n)
	}
}

func TestRoot_MissingCredentialBeforeConfigFile(t *testing.T) {
	api := newFakeAPI(t, "unused")
	t.Setenv(config.APIKeyEnv, "")

	// Unresolvable reference in the auto-discovered config file.
	if err := os.WriteFile(".codex.yml", []byte("model: ${env://CODEX_TEST_UNSET_MODEL}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	res := execute(t, "", "hi")
	if !errors.Is(res.err, config.ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", res.err)
	}
	if !strings.Contains(res.err.Error(), config.APIKeyEnv) {
		t.Errorf("error %q does not name %s", res.err, config.APIKeyEnv)
	}
	if n := api.hits.Load(); n != 0 {
		t.Errorf("made %d network calls, want 0", n)
	}
}

func TestRoot_JSONOutput(t *testing.T) {
	newFakeAPI(t, "\n42\n")

	res := execute(t, "", "-o", "json", "question")
	if res.err != nil {
		t.Fatalf("execute: %v", res.err)
	}

	var got map[string]string
	if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
		t.Fatalf("stdout is not json: %q: %v", res.stdout, err)
	}
	if got["text"] != "42" || got["prompt"] != "question" || got["model"] != config.DefaultModel {
		t.Errorf("unexpected json: %v", got)
	}
}

func TestRoot_AuthFailure(t *testing.T) {
	api := newFakeAPI(t, "")
	api.status = http.StatusUnauthorized

	res := execute(t, "", "hi")
	if !errors.Is(res.err, completion.ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", res.err)
	}
	if n := api.hits.Load(); n != 1 {
		t.Errorf("made %d network calls, want exactly 1", n)
	}
	if res.stdout != "" {
		t.Errorf("unexpected stdout %q", res.stdout)
	}
}

func TestRoot_ConfigFile(t *testing.T) {
	api := newFakeAPI(t, "ok")
	t.Setenv("TEST_CODEX_MODEL", "gpt-4o")

	path := filepath.Join(t.TempDir(), "codex.yml")
	content := "model: ${env://TEST_CODEX_MODEL}\nbanner: \"== answer ==\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	res := execute(t, "", "--config", path, "hi")
	if res.err != nil {
		t.Fatalf("execute: %v", res.err)
	}
	if api.last.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", api.last.Model)
	}
	if res.stdout != "== answer ==\nok\n" {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestRoot_InvalidOutputFormat(t *testing.T) {
	api := newFakeAPI(t, "unused")

	res := execute(t, "", "-o", "xml", "hi")
	if res.err == nil {
		t.Fatal("expected error for unknown output format")
	}
	if n := api.hits.Load(); n != 0 {
		t.Errorf("made %d network calls, want 0", n)
	}
}
