package qdrant

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Predefined errors
var (
	// ErrInvalidConfig indicates that the configuration is invalid
	ErrInvalidConfig = errors.New("qdrant: invalid config")

	// ErrClientClosed indicates that the client is closed
	ErrClientClosed = errors.New("qdrant: client is closed")
)

// Error wraps a failed Qdrant operation
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("qdrant %s [%s]: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("qdrant %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError wraps err with the operation and collection, nil stays nil
func WrapError(op string, err error, collection string) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Collection: collection, Err: err}
}

// Code returns the gRPC status code carried by err
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if s, ok := status.FromError(e); ok {
			return s.Code()
		}
	}
	return codes.Unknown
}

// IsNotFound checks whether the collection or point does not exist
func IsNotFound(err error) bool {
	return Code(err) == codes.NotFound
}

// IsRetryable reports errors worth retrying: unavailable server or timeouts
func IsRetryable(err error) bool {
	switch Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}
