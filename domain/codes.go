package domain

import (
	"errors"
	"net/http"
)

// Code is the stable symbolic error code clients key their handling on.
// Messages attached to a code may change; the code itself may not.
type Code string

const (
	CodeOTPAlreadySent      Code = "OTP_ALREADY_SENT"
	CodeOTPExpired          Code = "OTP_EXPIRED"
	CodeOTPInvalid          Code = "OTP_INVALID"
	CodeOTPFormat           Code = "INVALID_OTP_FORMAT"
	CodeMaxOTPAttempts      Code = "MAX_OTP_ATTEMPTS_EXCEEDED"
	CodeUserAlreadyExists   Code = "USER_ALREADY_EXISTS"
	CodeAccountNotFound     Code = "ACCOUNT_NOT_FOUND"
	CodeRegistrationExpired Code = "REGISTRATION_EXPIRED"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeEmailSendError      Code = "EMAIL_SEND_ERROR"
	CodeAuthProviderError   Code = "AUTH_PROVIDER_ERROR"
	CodeGoogleAuthError     Code = "GOOGLE_AUTH_ERROR"
	CodeAppleAuthError      Code = "APPLE_AUTH_ERROR"
	CodeInvalidEmail        Code = "INVALID_EMAIL_FORMAT"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeUpstreamTimeout     Code = "UPSTREAM_TIMEOUT"
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	CodeInternal            Code = "INTERNAL_ERROR"
)

// CodeInfo is the transport status and default user message for a code
type CodeInfo struct {
	Status  int
	Message string
}

var codeTable = map[Code]CodeInfo{
	CodeOTPAlreadySent:      {http.StatusTooManyRequests, "OTP already sent. Please wait before requesting a new one."},
	CodeOTPExpired:          {http.StatusUnauthorized, "Verification code has expired. Please request a new one."},
	CodeOTPInvalid:          {http.StatusUnauthorized, "Invalid verification code. Please check and try again."},
	CodeOTPFormat:           {http.StatusBadRequest, "Verification code must be numeric and of the expected length."},
	CodeMaxOTPAttempts:      {http.StatusTooManyRequests, "Maximum verification attempts exceeded. Please request a new code."},
	CodeUserAlreadyExists:   {http.StatusConflict, "User already exists with this email address."},
	CodeAccountNotFound:     {http.StatusNotFound, "Account not found. Please check your email or register a new account."},
	CodeRegistrationExpired: {http.StatusBadRequest, "Registration data expired. Please register again."},
	CodeUnauthorized:        {http.StatusUnauthorized, "Authentication required. Please login again."},
	CodeEmailSendError:      {http.StatusInternalServerError, "Failed to send email. Please try again later."},
	CodeAuthProviderError:   {http.StatusUnauthorized, "Authentication with the identity provider failed."},
	CodeGoogleAuthError:     {http.StatusUnauthorized, "Error in Google authentication."},
	CodeAppleAuthError:      {http.StatusUnauthorized, "Error in Apple authentication."},
	CodeInvalidEmail:        {http.StatusBadRequest, "Invalid email format."},
	CodeValidation:          {http.StatusBadRequest, "Validation failed. Please check your input."},
	CodeUpstreamTimeout:     {http.StatusGatewayTimeout, "Service timeout. The request took too long to process."},
	CodeUpstreamUnavailable: {http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again later."},
	CodeInternal:            {http.StatusInternalServerError, "Internal server error occurred while processing request."},
}

// order matters: more specific sentinels first
var errorCodes = []struct {
	err  error
	code Code
}{
	{ErrOTPAlreadyPending, CodeOTPAlreadySent},
	{ErrOTPNotFound, CodeOTPExpired},
	{ErrOTPExpired, CodeOTPExpired},
	{ErrOTPInvalid, CodeOTPInvalid},
	{ErrInvalidOTPFormat, CodeOTPFormat},
	{ErrOTPMaxAttempts, CodeMaxOTPAttempts},
	{ErrUserAlreadyExists, CodeUserAlreadyExists},
	{ErrUserNotFound, CodeAccountNotFound},
	{ErrRegistrationExpired, CodeRegistrationExpired},
	{ErrNoSession, CodeUnauthorized},
	{ErrSessionNotFound, CodeUnauthorized},
	{ErrEmailSendFailed, CodeEmailSendError},
	{ErrAuthProvider, CodeAuthProviderError},
	{ErrUnknownProvider, CodeValidation},
	{ErrInvalidEmail, CodeInvalidEmail},
	{ErrValidation, CodeValidation},
	{ErrUpstreamTimeout, CodeUpstreamTimeout},
	{ErrUpstreamUnavailable, CodeUpstreamUnavailable},
}

// Lookup returns the table entry for code and whether the code is known
func Lookup(code Code) (CodeInfo, bool) {
	info, ok := codeTable[code]
	return info, ok
}

// InfoOf returns the table entry for code, falling back to INTERNAL_ERROR
func InfoOf(code Code) CodeInfo {
	if info, ok := codeTable[code]; ok {
		return info
	}
	return codeTable[CodeInternal]
}

// CodeOf maps an error chain to its symbolic code. Unrecognised errors are INTERNAL_ERROR.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}

// IsBusiness reports whether err is a deterministic business outcome rather than a
// transport or internal failure
func IsBusiness(err error) bool {
	switch CodeOf(err) {
	case "", CodeInternal, CodeUpstreamTimeout, CodeUpstreamUnavailable:
		return false
	}
	return true
}

// CodedError pins an explicit code and user message on top of a sentinel,
// e.g. a provider-specific auth failure
type CodedError struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

// NewCodedError builds a CodedError wrapping err
func NewCodedError(code Code, message string, err error) *CodedError {
	return &CodedError{Code: code, Message: message, Err: err}
}

// Error implements the error interface
func (e *CodedError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap exposes the wrapped sentinel
func (e *CodedError) Unwrap() error {
	return e.Err
}

// WithDetails attaches client-safe details
func (e *CodedError) WithDetails(details map[string]any) *CodedError {
	e.Details = details
	return e
}
