package ods

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired   = errors.New("config is required")
	ErrParamsRequired   = errors.New("operation parameters are required")
	ErrInvalidBaseURL   = errors.New("invalid base URL")
	ErrEmptyPathSegment = errors.New("empty path segment")
	ErrEmptyErrorCode   = errors.New("error envelope has no code")
	ErrNoMoreEntries    = errors.New("no more entries")
	ErrIteratorStopped  = errors.New("iterator stopped after an error")
)

// Error codes reported by the service in an ErrorEnvelope.
const (
	ErrorCodeNotFound          = "NOT_FOUND"
	ErrorCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrorCodeInvalidArgument   = "INVALID_ARGUMENT"
	ErrorCodePermissionDenied  = "PERMISSION_DENIED"
	ErrorCodeUnauthenticated   = "UNAUTHENTICATED"
	ErrorCodeResourceExhausted = "RESOURCE_EXHAUSTED"
	ErrorCodeInternal          = "INTERNAL"
)

// ErrorKind distinguishes the three ways an operation can fail.
type ErrorKind int

const (
	// ErrorKindUnknown is reported for errors produced outside the taxonomy.
	ErrorKindUnknown ErrorKind = iota
	// ErrorKindTransport means no response was received from the service.
	ErrorKindTransport
	// ErrorKindService means the service rejected the request with an envelope.
	ErrorKindService
	// ErrorKindUndecodable means a response body could not be decoded.
	ErrorKindUndecodable
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindTransport:
		return "transport"
	case ErrorKindService:
		return "service"
	case ErrorKindUndecodable:
		return "undecodable"
	default:
		return "unknown"
	}
}

// ErrorEnvelope is the structured error body returned on non-2xx responses.
type ErrorEnvelope struct {
	Code    string                   `json:"code"              yaml:"code"`
	Message string                   `json:"message"           yaml:"message"`
	Details []map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// ParseErrorEnvelope decodes an error envelope. A body without a code is
// rejected so that an envelope is never partially filled.
func ParseErrorEnvelope(data []byte) (*ErrorEnvelope, error) {
	var envelope ErrorEnvelope

	err := json.Unmarshal(data, &envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal error envelope: %w", err)
	}

	if envelope.Code == "" {
		return nil, ErrEmptyErrorCode
	}

	return &envelope, nil
}

// TransportError reports that the request never reached the service or that
// no response came back (DNS, TLS, connection reset, timeout, cancellation).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport failure: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError reports a non-2xx response carrying a decodable envelope.
type ServiceError struct {
	StatusCode int
	Envelope   ErrorEnvelope
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s (status: %d)", e.Envelope.Code, e.Envelope.Message, e.StatusCode)
}

// DecodeTarget names what the client was trying to decode.
type DecodeTarget string

const (
	// DecodeTargetPayload is the success payload of a 2xx response.
	DecodeTargetPayload DecodeTarget = "response payload"
	// DecodeTargetEnvelope is the error envelope of a non-2xx response.
	DecodeTargetEnvelope DecodeTarget = "error envelope"
)

// DecodeError reports a response body that did not match the expected shape.
// The raw body is kept so no information from the service is lost.
type DecodeError struct {
	StatusCode int
	Target     DecodeTarget
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("undecodable %s (status: %d): %v", e.Target, e.StatusCode, e.Err)
}

// Unwrap returns the underlying decode failure.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// KindOf classifies err into the error taxonomy.
func KindOf(err error) ErrorKind {
	var (
		transportErr *TransportError
		serviceErr   *ServiceError
		decodeErr    *DecodeError
	)

	switch {
	case errors.As(err, &serviceErr):
		return ErrorKindService
	case errors.As(err, &decodeErr):
		return ErrorKindUndecodable
	case errors.As(err, &transportErr):
		return ErrorKindTransport
	default:
		return ErrorKindUnknown
	}
}

// AsServiceError returns the ServiceError in err's chain, if any.
func AsServiceError(err error) (*ServiceError, bool) {
	serviceErr := &ServiceError{}
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}

	return nil, false
}

func hasErrorCode(err error, code string) bool {
	serviceErr, ok := AsServiceError(err)

	return ok && serviceErr.Envelope.Code == code
}

// IsNotFound checks if the service reported that the entry does not exist.
func IsNotFound(err error) bool {
	return hasErrorCode(err, ErrorCodeNotFound)
}

// IsAlreadyExists checks if the service reported an id conflict.
func IsAlreadyExists(err error) bool {
	return hasErrorCode(err, ErrorCodeAlreadyExists)
}

// IsInvalidArgument checks if the service rejected a parameter.
func IsInvalidArgument(err error) bool {
	return hasErrorCode(err, ErrorCodeInvalidArgument)
}

// IsPermissionDenied checks if the API key lacks access to the resource.
func IsPermissionDenied(err error) bool {
	return hasErrorCode(err, ErrorCodePermissionDenied)
}

// IsUnauthenticated checks if the API key was missing or invalid.
func IsUnauthenticated(err error) bool {
	return hasErrorCode(err, ErrorCodeUnauthenticated)
}

// IsResourceExhausted checks if the service throttled the request.
func IsResourceExhausted(err error) bool {
	return hasErrorCode(err, ErrorCodeResourceExhausted)
}
