package completion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	openai "github.com/sashabaranov/go-openai"
)

// Kind classifies a remote failure.
type Kind int

const (
	// KindTransport covers network failures, timeouts, cancellation and
	// gateway errors without an API error body.
	KindTransport Kind = iota + 1
	// KindAuth means the service rejected the credential (401/403).
	KindAuth
	// KindAPI is any other error reported by the service, e.g. an
	// unknown model or a rate limit.
	KindAPI
	// KindMalformed means a 2xx response that could not be used.
	KindMalformed
)

// Sentinels for errors.Is matching against *Error.
var (
	ErrTransport = errors.New("transport error")
	ErrAuth      = errors.New("authentication error")
	ErrAPI       = errors.New("api error")
	ErrMalformed = errors.New("malformed response")
)

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindAuth:
		return ErrAuth
	case KindAPI:
		return ErrAPI
	case KindMalformed:
		return ErrMalformed
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is returned by Completer implementations.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.String()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (http %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// classify maps an error from the OpenAI client onto the Kind taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var ce *Error
	if errors.As(err, &ce) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := KindAPI
		if isAuthStatus(apiErr.HTTPStatusCode) {
			kind = KindAuth
		}
		return &Error{Kind: kind, StatusCode: apiErr.HTTPStatusCode, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		kind := KindAPI
		switch {
		case isAuthStatus(reqErr.HTTPStatusCode):
			kind = KindAuth
		case reqErr.HTTPStatusCode >= http.StatusInternalServerError:
			kind = KindTransport
		}
		return &Error{Kind: kind, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}

	if errors.Is(err, openai.ErrChatCompletionInvalidModel) {
		return &Error{Kind: KindAPI, Err: err}
	}

	// Connection-level failures, including a server hanging up mid-response.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &Error{Kind: KindTransport, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Error{Kind: KindMalformed, Err: err}
	}

	return &Error{Kind: KindTransport, Err: err}
}

func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
