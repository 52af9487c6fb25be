package actions

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthorized        = errors.New("caller is not the account owner")
	ErrMalformedState       = errors.New("account state cannot be decoded")
	ErrMalformedPayload     = errors.New("instruction payload cannot be decoded")
	ErrInsufficientCapacity = errors.New("account data too small")
	ErrMissingAccount       = errors.New("no account supplied")
)

// ErrorCode is the discriminant reported to the caller of an invocation.
// Values are part of the wire contract and must not be renumbered.
type ErrorCode uint32

const (
	CodeOK ErrorCode = iota
	CodeNotAuthorized
	CodeMalformedState
	CodeMalformedPayload
	CodeInsufficientCapacity
	CodeMissingAccount
	CodeUnknown
)

var codeErrors = []struct {
	code ErrorCode
	err  error
}{
	{CodeNotAuthorized, ErrNotAuthorized},
	{CodeMalformedState, ErrMalformedState},
	{CodeMalformedPayload, ErrMalformedPayload},
	{CodeInsufficientCapacity, ErrInsufficientCapacity},
	{CodeMissingAccount, ErrMissingAccount},
}

// CodeOf maps err to its ErrorCode. A nil error is CodeOK and an error
// outside the handler taxonomy is CodeUnknown.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	for _, ce := range codeErrors {
		if errors.Is(err, ce.err) {
			return ce.code
		}
	}
	return CodeUnknown
}

// Err returns the sentinel error for c, or nil for CodeOK.
func (c ErrorCode) Err() error {
	if c == CodeOK {
		return nil
	}
	for _, ce := range codeErrors {
		if ce.code == c {
			return ce.err
		}
	}
	return fmt.Errorf("unknown error code %d", uint32(c))
}

func (c ErrorCode) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeNotAuthorized:
		return "NotAuthorized"
	case CodeMalformedState:
		return "MalformedState"
	case CodeMalformedPayload:
		return "MalformedPayload"
	case CodeInsufficientCapacity:
		return "InsufficientCapacity"
	case CodeMissingAccount:
		return "MissingAccount"
	default:
		return "Unknown"
	}
}
