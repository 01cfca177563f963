package wecom

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed token exchange or delivery.
type ErrorKind string

const (
	// KindTransport is a network-level failure: refused connection,
	// timeout, DNS.
	KindTransport ErrorKind = "transport"
	// KindProtocol means a response arrived but was not the expected JSON
	// or lacked a required field.
	KindProtocol ErrorKind = "protocol"
	// KindRemoteRejection means WeCom answered with a non-zero errcode.
	KindRemoteRejection ErrorKind = "rejected"
)

// Error is a classified WeCom API failure.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Op is the API call that failed: "gettoken" or "send".
	Op string
	// Code is the errcode reported by WeCom, 0 when none was reported.
	Code int
	// Message is the errmsg reported by WeCom or a local description.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != 0 {
		return fmt.Sprintf("wecom %s: %s: errcode %d: %s", e.Op, e.Kind, e.Code, msg)
	}
	return fmt.Sprintf("wecom %s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransport reports whether err is a network-level WeCom failure.
func IsTransport(err error) bool { return kindOf(err) == KindTransport }

// IsProtocol reports whether err is a malformed or incomplete WeCom response.
func IsProtocol(err error) bool { return kindOf(err) == KindProtocol }

// IsRejection reports whether WeCom rejected the request with a non-zero errcode.
func IsRejection(err error) bool { return kindOf(err) == KindRemoteRejection }

func kindOf(err error) ErrorKind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

// asError converts any error into an *Error, treating unclassified errors
// as transport failures of op.
func asError(op string, err error) *Error {
	var we *Error
	if errors.As(err, &we) {
		return we
	}
	return &Error{Kind: KindTransport, Op: op, Message: err.Error(), Err: err}
}
