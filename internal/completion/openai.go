package completion

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mark3labs/codex/internal/config"
)

// OpenAI implements Completer against the OpenAI chat completions API or
// any OpenAI-compatible endpoint.
type OpenAI struct {
	client *openai.Client
}

// NewOpenAI creates a client from cfg. The credential is taken from
// cfg.APIKey; no request is made until Complete is called.
func NewOpenAI(cfg config.Config) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.OrgID = cfg.Organization
	oc.HTTPClient = newHTTPClient(cfg)

	return &OpenAI{client: openai.NewClientWithConfig(oc)}
}

// Complete sends messages to model and returns the choices in order.
func (o *OpenAI) Complete(ctx context.Context, model string, messages []Message) ([]Choice, error) {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classify(err)
	}

	choices := make([]Choice, 0, len(resp.Choices))
	for _, c := range resp.Choices {
		choices = append(choices, Choice{
			Content:      c.Message.Content,
			FinishReason: string(c.FinishReason),
		})
	}
	return choices, nil
}

// newHTTPClient honours the request timeout and the TLS skip-verify switch.
// A zero timeout means no client-side limit.
func newHTTPClient(cfg config.Config) *http.Client {
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.TLSSkipVerify {
		client.Transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}
	return client
}
