// Package fetcher queries AWS CodeBuild for the current state of one build.
//
// Fetchers never print. Every failure is returned as an *Error whose Kind
// classifies it and whose message is fit to show to the user.
package fetcher

import (
	"context"
	"errors"
	"fmt"

	"buildwatchdog/internal/models"
)

// Fetcher retrieves a snapshot of a single build.
type Fetcher interface {
	Fetch(ctx context.Context, buildID string) (models.BuildSnapshot, error)
}

// Kind classifies a failed fetch.
type Kind string

const (
	KindToolMissing       Kind = "tool-missing"
	KindCredentialInvalid Kind = "credential-invalid"
	KindCredentialExpired Kind = "credential-expired"
	KindToolFailure       Kind = "tool-failure"
	KindNotFound          Kind = "not-found"
	KindMalformed         Kind = "malformed-response"
	KindTimeout           Kind = "timeout"
	KindUnexpected        Kind = "unexpected"
)

// Error describes why no snapshot could be produced.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Warning reports whether the failure is worth a warning rather than an error.
func (e *Error) Warning() bool {
	return e.Kind == KindNotFound
}

// KindOf returns the Kind of err, or KindUnexpected if err is not an *Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnexpected
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
