package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for upstream AI transport failures. Callers distinguish
// these with errors.Is to decide retry behavior and user messaging.
var (
	// ErrRateLimited maps HTTP 429 from the AI transport
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrQuotaExceeded maps HTTP 402 from the AI transport
	ErrQuotaExceeded = errors.New("upstream quota exceeded")

	// ErrTimeout indicates the hard wall-clock bound on the AI round trip elapsed
	ErrTimeout = errors.New("upstream request timed out")

	// ErrMissingToolCall indicates the model did not honor the structured
	// output contract: no tool invocation was present in the completion.
	ErrMissingToolCall = errors.New("completion contains no tool call")
)

// UpstreamError carries the status and body of a non-2xx AI transport
// response that is neither a rate limit nor a quota failure. The body is
// retained for diagnostics only and must not be surfaced to end users.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request failed with status %d: %s", e.StatusCode, e.Body)
}

// WrongToolError indicates the completion invoked a tool other than the one
// the caller required. Hard failure; there is no partial result.
type WrongToolError struct {
	Want string
	Got  string
}

func (e *WrongToolError) Error() string {
	return fmt.Sprintf("completion invoked tool %q, expected %q", e.Got, e.Want)
}

// DecodeError indicates the stream or completion document could not be
// decoded. Distinct from upstream transport failures.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode failed: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MapHTTPStatus translates a non-2xx AI transport status into the typed
// error taxonomy. Must be applied before any byte decoding begins.
func MapHTTPStatus(statusCode int, body string) error {
	switch statusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusPaymentRequired:
		return ErrQuotaExceeded
	default:
		return &UpstreamError{StatusCode: statusCode, Body: body}
	}
}

// wrapTransportErr maps context deadline expiry to ErrTimeout so callers can
// distinguish the wall-clock bound from generic transport failures.
func wrapTransportErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
