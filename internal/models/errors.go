package models

import "fmt"

type Kind int

const (
	KindInternal Kind = iota
	KindConfiguration
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

const MsgAPIKeyNotConfigured = "API key not configured"

// Error is a classified failure carrying the message shown to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewConfigurationError() *Error {
	return &Error{Kind: KindConfiguration, Message: MsgAPIKeyNotConfigured}
}

func NewNotFoundError(msg string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}

func NewInternalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}
