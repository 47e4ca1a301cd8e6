package billing

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned by provider stubs (AWS, Huawei) whose
// billing retrieval has not been built yet.
var ErrNotImplemented = errors.New("provider not implemented")

// InvalidArgumentError reports malformed caller input. It is raised before
// any network call is made and is never retried.
type InvalidArgumentError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// UnauthorizedError reports a credential or token failure. The caller must
// resupply credentials; automatic retry is pointless.
type UnauthorizedError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnauthorizedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unauthorized: %v", e.Err)
	}
	return fmt.Sprintf("unauthorized: status %d: %s", e.StatusCode, e.Body)
}

func (e *UnauthorizedError) Unwrap() error { return e.Err }

// InvalidResponseError reports a remote payload that failed schema
// validation. It indicates a provider contract change and is fatal; the raw
// payload is carried for diagnosis.
type InvalidResponseError struct {
	Reason  string
	Payload []byte
	Err     error
}

func (e *InvalidResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid response: %s", e.Reason)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// TransientError reports a network-level failure (timeout, connection
// refused). Callers may retry the whole operation from the beginning.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient error during %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// UpstreamError reports a non-2xx provider response, or a provider envelope
// that signals failure (e.g. Success=false with an error code).
type UpstreamError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("upstream error: status %d: %s", e.StatusCode, e.Body)
}
