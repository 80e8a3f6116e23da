// Package apperr defines the closed set of error codes the API can return
// and the single mapping from code to HTTP status.
package apperr

import (
	"errors"
	"net/http"
)

// Code identifies one entry of the error taxonomy.
type Code string

const (
	CodeMissingAuthorization Code = "MISSING_AUTHORIZATION"
	CodeMissingToken         Code = "MISSING_TOKEN"
	CodeAuthenticationFailed Code = "AUTHENTICATION_FAILED"
	CodeTokenVerification    Code = "TOKEN_VERIFICATION_FAILED"
	CodeInvalidToken         Code = "INVALID_TOKEN"
	CodeTokenExpired         Code = "TOKEN_EXPIRED"

	CodeValidation          Code = "VALIDATION_ERROR"
	CodeInvalidScheduleTime Code = "INVALID_SCHEDULE_TIME"

	CodeOAuthError         Code = "OAUTH_ERROR"
	CodeMissingCode        Code = "MISSING_CODE"
	CodeOAuthCallback      Code = "OAUTH_CALLBACK_FAILED"
	CodeOAuthURLGeneration Code = "OAUTH_URL_GENERATION_FAILED"

	CodeSlackAPI Code = "SLACK_API_ERROR"
	CodeNetwork  Code = "NETWORK_ERROR"
	CodeTimeout  Code = "TIMEOUT_ERROR"

	CodeSendMessage      Code = "SEND_MESSAGE_FAILED"
	CodeScheduleMessage  Code = "SCHEDULE_MESSAGE_FAILED"
	CodeRetrieveMessages Code = "RETRIEVE_MESSAGES_FAILED"
	CodeRetrieveMessage  Code = "RETRIEVE_MESSAGE_FAILED"
	CodeEditMessage      Code = "EDIT_MESSAGE_FAILED"
	CodeDeleteMessage    Code = "DELETE_MESSAGE_FAILED"
	CodeGetChannels      Code = "GET_CHANNELS_FAILED"
	CodeGetPermalink     Code = "GET_PERMALINK_FAILED"
	CodeGetUserInfo      Code = "GET_USER_INFO_FAILED"

	CodeNotFound        Code = "NOT_FOUND"
	CodeMessageNotFound Code = "MESSAGE_NOT_FOUND"
	CodeRateLimited     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal        Code = "INTERNAL_SERVER_ERROR"
)

// Error is a taxonomy-tagged error. Message is safe to return to clients;
// Err, when set, holds the underlying cause and is only exposed in debug
// responses.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a tagged error with a client-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap tags an underlying error, reusing its message as the client-facing
// one.
func Wrap(code Code, err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return &Error{Code: code, Message: ae.Message, Err: ae.Err}
	}
	return &Error{Code: code, Message: err.Error(), Err: err}
}

// From extracts the tagged error, or falls back to INTERNAL_SERVER_ERROR
// for anything untagged.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Code: CodeInternal, Message: "An unexpected error occurred", Err: err}
}

// transportCodes keep their own status when an operation re-tags a failure.
var transportCodes = map[Code]bool{
	CodeNetwork:     true,
	CodeTimeout:     true,
	CodeRateLimited: true,
}

// Retag rewraps err under the given operation code. Transport-class
// failures (network, timeout, rate limit) keep their original tag so they
// map to 503/408/429 rather than the operation's 400.
func Retag(err error, code Code) *Error {
	ae := From(err)
	if transportCodes[ae.Code] {
		return ae
	}
	return &Error{Code: code, Message: ae.Message, Err: ae.Err}
}

// Status returns the HTTP status for a code. Unknown codes map to 500.
func Status(code Code) int {
	switch code {
	case CodeMissingAuthorization, CodeMissingToken, CodeAuthenticationFailed,
		CodeTokenVerification, CodeInvalidToken, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeValidation, CodeInvalidScheduleTime,
		CodeOAuthError, CodeMissingCode, CodeOAuthCallback,
		CodeSlackAPI,
		CodeSendMessage, CodeScheduleMessage, CodeRetrieveMessages,
		CodeRetrieveMessage, CodeEditMessage, CodeDeleteMessage,
		CodeGetChannels, CodeGetPermalink, CodeGetUserInfo:
		return http.StatusBadRequest
	case CodeNotFound, CodeMessageNotFound:
		return http.StatusNotFound
	case CodeTimeout:
		return http.StatusRequestTimeout
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeNetwork:
		return http.StatusServiceUnavailable
	case CodeOAuthURLGeneration, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
