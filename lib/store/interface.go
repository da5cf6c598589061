package store

import (
	"fmt"

	"github.com/lodisdb/lodis/lib/db"
)

// --------------------------------------------------------------------------
// Factory Definition
// --------------------------------------------------------------------------

// KeyspaceFactory is a function type that creates one keyspace used by the
// store. This abstracts the engine choice away from the store itself; the
// factory is invoked once per database index at construction time.
type KeyspaceFactory func() db.Keyspace

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the store's error type. It wraps a return code (of type
// RetCode) and a message, so that callers can react to the error kind
// without string matching.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KVStoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new store Error with the given code and message.
func NewError(code RetCode, format string, args ...interface{}) *Error {
	return &Error{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the return code from an error. Errors that are not store
// errors map to RetCInternalError.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return RetCInternalError
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess         RetCode = iota // 0: Command executed successfully.
	RetCInternalError                  // 1: Command failed due to an internal error.
	RetCNotFound                       // 2: A command that requires presence hit a missing key.
	RetCTypeMismatch                   // 3: Payload has the wrong type for the operation (e.g. INCR on text).
	RetCOutOfRange                     // 4: Numeric argument outside the valid range (e.g. SELECT index).
	RetCInvalidArgument                // 5: Malformed argument (bad pattern, non-numeric ttl, ...).
	RetCUnknownCommand                 // 6: Command name is not registered.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCNotFound:
		return "NotFound"
	case RetCTypeMismatch:
		return "TypeMismatch"
	case RetCOutOfRange:
		return "OutOfRange"
	case RetCInvalidArgument:
		return "InvalidArgument"
	case RetCUnknownCommand:
		return "UnknownCommand"
	default:
		return "Unknown"
	}
}
