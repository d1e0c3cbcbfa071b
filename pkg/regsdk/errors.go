package regsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// ErrMissingExpiry marks a resend reply that carried no expires_at.
var ErrMissingExpiry = errors.New("regsdk: response missing expires_at")

// FailureKind is the broad category of a failed call.
type FailureKind int

const (
	KindNone FailureKind = iota
	KindValidation
	KindAuthorization
	KindNetwork
	KindServer
)

func (k FailureKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNetwork:
		return "network"
	default:
		return "server"
	}
}

// Classify maps err onto a FailureKind. Errors not produced by this package
// count as server failures.
func Classify(err error) FailureKind {
	var (
		valErr  *ValidationError
		authErr *AuthorizationError
		netErr  *NetworkError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &authErr):
		return KindAuthorization
	case errors.As(err, &netErr):
		return KindNetwork
	default:
		return KindServer
	}
}

// ValidationError is a 422 (or field-shaped 400) rejection.
type ValidationError struct {
	StatusCode int
	Message    string

	// Fields maps request field name to the first message for it
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := lo.Keys(e.Fields)
	slices.Sort(keys)
	return fmt.Sprintf("validation failed (%d): %s [%s]", e.StatusCode, e.Message, strings.Join(keys, ", "))
}

// AuthorizationError means the code was wrong, expired or used up, or the
// caller is not allowed to do this.
type AuthorizationError struct {
	StatusCode int
	Message    string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization failed (%d): %s", e.StatusCode, e.Message)
}

// NetworkError covers transport failures and bodies that could not be read
// or decoded. The operation is safe to retry.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is any other non-2xx response. Message is the server text
// verbatim when one was sent.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// parseErrorResponse turns a non-2xx response into one of the typed errors.
func parseErrorResponse(status int, body []byte) error {
	var env ErrorResponse
	if err := json.Unmarshal(body, &env); err != nil {
		env = ErrorResponse{}
	}

	fields := make(map[string]string, len(env.Errors))
	for k, v := range env.Errors {
		if msg := v.First(); msg != "" {
			fields[k] = msg
		}
	}

	msg := env.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusGone:
		if otp, ok := fields["otp"]; ok && env.Message == "" {
			msg = otp
		}
		return &AuthorizationError{StatusCode: status, Message: msg}

	case status == http.StatusBadRequest && fields["otp"] != "":
		// Wrong code: the API reports it as a field error on otp
		return &AuthorizationError{StatusCode: status, Message: fields["otp"]}

	case status == http.StatusUnprocessableEntity,
		status == http.StatusBadRequest && len(fields) > 0:
		return &ValidationError{StatusCode: status, Message: msg, Fields: fields}

	default:
		return &ServerError{StatusCode: status, Message: msg}
	}
}
