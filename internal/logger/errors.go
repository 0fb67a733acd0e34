package logger

import "fmt"

// Code is a stable error kind.
type Code string

const (
	CodeShortBuffer      Code = "SHORT_BUFFER"
	CodeDecryptFailed    Code = "DECRYPT_FAILED"
	CodeBadSignature     Code = "BAD_SIGNATURE"
	CodeVersionStale     Code = "VERSION_STALE"
	CodeRoleInsufficient Code = "ROLE_INSUFFICIENT"
	CodeDuplicateNick    Code = "DUPLICATE_NICK"
	CodeGroupFull        Code = "GROUP_FULL"
	CodeInvalidPassword  Code = "INVALID_PASSWORD"
	CodePeerUnknown      Code = "PEER_UNKNOWN"
	CodePeerDuplicate    Code = "PEER_DUPLICATE"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeTransportFailure Code = "TRANSPORT_FAILURE"
	CodeMalformed        Code = "MALFORMED"
)

// GCError is a structured error carrying a stable code plus optional
// context fields.
type GCError struct {
	Code    Code
	Message string
	Fields  map[string]interface{}
	Cause   error
}

func (e *GCError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *GCError) Unwrap() error { return e.Cause }

// WithField attaches a context field and returns the receiver for chaining.
func (e *GCError) WithField(key string, value interface{}) *GCError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New builds a GCError with the given code and message.
func New(code Code, message string) *GCError {
	return &GCError{Code: code, Message: message}
}

// Wrap builds a GCError that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *GCError {
	return &GCError{Code: code, Message: message, Cause: cause}
}

// Is reports whether err is a GCError with the given code.
func Is(err error, code Code) bool {
	var ge *GCError
	for err != nil {
		if g, ok := err.(*GCError); ok {
			ge = g
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ge != nil && ge.Code == code
}
