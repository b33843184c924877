package service

import (
	"errors"
	"fmt"

	"dexquote/internal/repository"
)

// ErrorKind is the service-level error taxonomy. Repository failures are
// always converted to exactly one of these kinds before crossing the
// engine boundary.
type ErrorKind string

const (
	ErrInvalidWalletAddress  ErrorKind = "InvalidWalletAddress"
	ErrTokenNotFound         ErrorKind = "TokenNotFound"
	ErrInvalidAmount         ErrorKind = "InvalidAmount"
	ErrInsufficientBalance   ErrorKind = "InsufficientBalance"
	ErrPriceImpactTooHigh    ErrorKind = "PriceImpactTooHigh"
	ErrSlippageExceeded      ErrorKind = "SlippageExceeded"
	ErrSwapAmountTooSmall    ErrorKind = "SwapAmountTooSmall"
	ErrLiquidityPoolNotFound ErrorKind = "LiquidityPoolNotFound"
	ErrInsufficientLiquidity ErrorKind = "InsufficientLiquidity"
	ErrSwapSimulationFailed  ErrorKind = "SwapSimulationFailed"
	ErrExternalAPI           ErrorKind = "ExternalApiError"
	ErrBlockchain            ErrorKind = "BlockchainError"
	ErrInternal              ErrorKind = "InternalError"
)

// Error is the structured, typed failure returned by every service
// operation.
type Error struct {
	Kind    ErrorKind `json:"type"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AsError extracts a service *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// fromRepository maps a repository failure to its service-level kind.
// Already-classified service errors pass through unchanged; raw repository
// errors never leak to callers.
func fromRepository(err error) *Error {
	if svcErr, ok := AsError(err); ok {
		return svcErr
	}
	if repoErr, ok := repository.AsError(err); ok {
		switch repoErr.Kind {
		case repository.KindParse:
			return newError(ErrInvalidWalletAddress, "%s", repoErr.Message)
		case repository.KindRPC, repository.KindContract, repository.KindNetwork:
			return newError(ErrBlockchain, "failed to interact with blockchain: %s", repoErr.Error())
		}
	}
	return newError(ErrInternal, "%v", err)
}
