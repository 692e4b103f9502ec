package domain

import (
	"errors"
	"fmt"
)

// NetworkError means the request could not be sent or its response could not
// be read or decoded.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError means the endpoint answered but did not report success.
type ProtocolError struct {
	Status  string
	Message string
}

func (e *ProtocolError) Error() string {
	return e.Message
}

// NewProtocolError synthesizes the failure from the endpoint message, falling
// back to DefaultFailureReason when the server supplied none.
func NewProtocolError(resp *EndpointResponse) *ProtocolError {
	if resp == nil {
		return &ProtocolError{Message: DefaultFailureReason}
	}
	msg := resp.Message
	if msg == "" {
		msg = DefaultFailureReason
	}
	return &ProtocolError{Status: resp.Status, Message: msg}
}

// IsNetworkError reports whether err wraps a *NetworkError.
func IsNetworkError(err error) (*NetworkError, bool) {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// IsProtocolError reports whether err wraps a *ProtocolError.
func IsProtocolError(err error) (*ProtocolError, bool) {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
