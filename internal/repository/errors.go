package repository

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed ledger access.
type ErrorKind string

const (
	KindRPC      ErrorKind = "rpc"
	KindContract ErrorKind = "contract"
	KindNetwork  ErrorKind = "network"
	KindParse    ErrorKind = "parse"
)

// Error is the only error type returned by Repository implementations.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a repository *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var repoErr *Error
	if errors.As(err, &repoErr) {
		return repoErr, true
	}
	return nil, false
}

func rpcError(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindRPC, Message: fmt.Sprintf(format, args...), Err: err}
}

func contractError(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindContract, Message: fmt.Sprintf(format, args...), Err: err}
}

func parseError(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindParse, Message: fmt.Sprintf(format, args...), Err: err}
}
