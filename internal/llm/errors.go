package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Kind classifies why an oracle call failed.
type Kind string

const (
	// KindTransport covers network, auth and request rejections by the oracle.
	KindTransport Kind = "transport"
	// KindMalformedResponse means text came back but it was not the JSON we asked for.
	KindMalformedResponse Kind = "malformed_response"
	// KindEmptyResponse means the oracle answered with no text, e.g. after safety filtering.
	KindEmptyResponse Kind = "empty_response"
)

var ErrEmptyResponse = errors.New("AI model returned an empty response")

// Error is returned by every Gateway call that fails.
type Error struct {
	Kind Kind
	// InvalidArgument is set for transport errors where the oracle rejected the request itself (HTTP 400).
	InvalidArgument bool
	Agent           string
	Err             error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Agent, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err did not come from a Gateway.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsInvalidArgument reports whether the oracle rejected the request as malformed.
func IsInvalidArgument(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.InvalidArgument
}

// classifyTransport is the only place that looks inside oracle errors.
// Typed API errors are checked first; message sniffing is kept for other
// generators (and proxies) that only hand back text.
func classifyTransport(agent string, err error) *Error {
	out := &Error{Kind: KindTransport, Agent: agent, Err: err}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		out.InvalidArgument = apiErr.Code == http.StatusBadRequest || apiErr.Status == "INVALID_ARGUMENT"
		return out
	}

	msg := err.Error()
	out.InvalidArgument = strings.Contains(msg, "400") || strings.Contains(msg, "INVALID_ARGUMENT")
	return out
}
