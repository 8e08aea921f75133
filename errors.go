package rxws

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNoConnection     = errors.New("no open websocket connection")
	ErrConversion       = errors.New("no converter available for payload")
	ErrSendRejected     = errors.New("transport did not accept the payload")
	ErrUnexpectedClose  = errors.New("connection closed unexpectedly")
	ErrTransportFailure = errors.New("transport failure")
	ErrStreamCompleted  = errors.New("event stream completed")
	ErrSubscriptionDone = errors.New("subscription has been closed")
	ErrMissingAddress   = errors.New("websocket address cannot be empty")
	ErrInvalidAddress   = errors.New("invalid websocket address")
	ErrCannotConnect    = errors.New("connection cannot be established")
	ErrConnectionClosed = errors.New("connection has been closed")
	ErrRateLimit        = errors.New("rate limit exceeded")
)

// CloseError terminates the event stream when the peer closes the connection without a preceding
// Disconnect. It matches ErrUnexpectedClose.
type CloseError struct {
	Code   int
	Reason string
}

func (e *CloseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("connection closed with code %d", e.Code)
	}
	return e.Reason
}

func (e *CloseError) Is(target error) bool {
	return target == ErrUnexpectedClose
}

func (e *CloseError) String() string {
	return fmt.Sprintf("CloseError{code=%d,reason=%s}", e.Code, e.Reason)
}

// TransportError wraps a failure reported by the transport. errors.Is matches both
// ErrTransportFailure and the wrapped cause.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %s", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == ErrTransportFailure
}
