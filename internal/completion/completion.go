// Package completion is the narrow client boundary around the remote
// chat-completion API. Callers see only Completer, Message and Choice;
// failures are reported as *Error with a Kind.
package completion

import (
	"context"
	"errors"
)

// RoleUser is the role of the single message sent per request.
const RoleUser = "user"

// Message is a role-tagged chat message.
type Message struct {
	Role    string
	Content string
}

// Choice is one alternative returned by the remote service.
type Choice struct {
	Content      string
	FinishReason string
}

// Completer issues one chat-completion request and returns the choices.
// Implementations return *Error on failure.
type Completer interface {
	Complete(ctx context.Context, model string, messages []Message) ([]Choice, error)
}

// UserMessage builds the single user message for prompt.
func UserMessage(prompt string) []Message {
	return []Message{{Role: RoleUser, Content: prompt}}
}

// First returns the first choice. An empty response is a malformed-response
// error rather than an index panic.
func First(choices []Choice) (Choice, error) {
	if len(choices) == 0 {
		return Choice{}, &Error{Kind: KindMalformed, Err: errors.New("response contained no choices")}
	}
	return choices[0], nil
}
