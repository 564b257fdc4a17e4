package queue

import (
	"context"
	"errors"
	"strings"
)

// ErrorKind is the classified cause of a failed attempt.
type ErrorKind string

const (
	ErrorKindRateLimit ErrorKind = "rate_limit"
	ErrorKindNetwork   ErrorKind = "network"
	ErrorKindServer    ErrorKind = "server"
	ErrorKindInvalid   ErrorKind = "invalid"
	ErrorKindUnknown   ErrorKind = "unknown"
)

// Valid reports whether k is one of the known kinds.
func (k ErrorKind) Valid() bool {
	switch k {
	case ErrorKindRateLimit, ErrorKindNetwork, ErrorKindServer, ErrorKindInvalid, ErrorKindUnknown:
		return true
	}
	return false
}

// Retryable is false only for invalid: bad input fails the same way every time.
func (k ErrorKind) Retryable() bool {
	return k != ErrorKindInvalid
}

// Classifier maps an executor failure to an ErrorKind.
type Classifier func(err error) ErrorKind

// KindError attaches an explicit ErrorKind to an error.
type KindError struct {
	Kind ErrorKind
	Err  error
}

func (e *KindError) Error() string { return e.Err.Error() }
func (e *KindError) Unwrap() error { return e.Err }

// WithKind tags err with kind so DefaultClassifier skips message matching.
func WithKind(err error, kind ErrorKind) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Err: err}
}

// Permanent marks err as non-retryable.
func Permanent(err error) error {
	return WithKind(err, ErrorKindInvalid)
}

// messageRules are checked in order against the lower-cased error message.
var messageRules = []struct {
	kind    ErrorKind
	needles []string
}{
	{ErrorKindRateLimit, []string{"rate limit", "too many"}},
	{ErrorKindNetwork, []string{"network", "fetch"}},
	{ErrorKindServer, []string{"500", "server"}},
	{ErrorKindInvalid, []string{"invalid", "bad request"}},
}

// DefaultClassifier honours kinds attached with WithKind, maps execution
// timeouts to network and otherwise matches the error message
// case-insensitively.
func DefaultClassifier(err error) ErrorKind {
	if err == nil {
		return ErrorKindUnknown
	}

	var ke *KindError
	if errors.As(err, &ke) && ke.Kind.Valid() {
		return ke.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindNetwork
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		for _, needle := range rule.needles {
			if strings.Contains(msg, needle) {
				return rule.kind
			}
		}
	}

	return ErrorKindUnknown
}
