package models

import "errors"

type AuthCode string

const (
	AuthNetworkFailure     AuthCode = "network_failure"
	AuthInvalidCredentials AuthCode = "invalid_credentials"
	AuthUnknownAccount     AuthCode = "unknown_account"
	AuthAccountDisabled    AuthCode = "account_disabled"
	AuthRateLimited        AuthCode = "rate_limited"
	AuthEmailInUse         AuthCode = "email_in_use"
	AuthWeakPassword       AuthCode = "weak_password"
	AuthInvalidEmail       AuthCode = "invalid_email"
	AuthProviderDisabled   AuthCode = "provider_disabled"
	AuthUnknown            AuthCode = "unknown"
)

var authMessages = map[AuthCode]string{
	AuthNetworkFailure:     "Network error. Please check your internet connection and try again.",
	AuthInvalidCredentials: "Invalid password. Please try again.",
	AuthUnknownAccount:     "No account found with this email. Please sign up first.",
	AuthAccountDisabled:    "This account has been disabled. Please contact support.",
	AuthRateLimited:        "Too many failed attempts. Please try again later.",
	AuthEmailInUse:         "This email is already registered. Please try logging in instead.",
	AuthWeakPassword:       "Password should be at least 6 characters long.",
	AuthInvalidEmail:       "Please enter a valid email address.",
	AuthProviderDisabled:   "Email/password accounts are not enabled. Please contact support.",
	AuthUnknown:            "An error occurred. Please try again.",
}

type AuthError struct {
	Code    AuthCode
	Message string
	Err     error
}

func NewAuthError(code AuthCode, cause error) *AuthError {
	msg, ok := authMessages[code]
	if !ok {
		code, msg = AuthUnknown, authMessages[AuthUnknown]
	}
	return &AuthError{Code: code, Message: msg, Err: cause}
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

type FetchCode string

const (
	FetchNetworkFailure    FetchCode = "network_failure"
	FetchMalformedResponse FetchCode = "malformed_response"
)

var fetchMessages = map[FetchCode]string{
	FetchNetworkFailure:    "Failed to load questions. Please check your connection and try again.",
	FetchMalformedResponse: "Failed to load questions. The question list could not be read.",
}

type FetchError struct {
	Code    FetchCode
	Message string
	Err     error
}

func NewFetchError(code FetchCode, cause error) *FetchError {
	return &FetchError{Code: code, Message: fetchMessages[code], Err: cause}
}

func (e *FetchError) Error() string { return e.Message }
func (e *FetchError) Unwrap() error { return e.Err }

type SaveCode string

const (
	SaveUnauthenticated  SaveCode = "unauthenticated"
	SaveIncomplete       SaveCode = "incomplete"
	SaveNetworkFailure   SaveCode = "network_failure"
	SavePermissionDenied SaveCode = "permission_denied"
	SaveUnknown          SaveCode = "unknown"
)

var saveMessages = map[SaveCode]string{
	SaveUnauthenticated:  "Please log in before saving your answers.",
	SaveIncomplete:       "Please answer all questions before saving.",
	SaveNetworkFailure:   "Failed to save answers. Please check your connection and try again.",
	SavePermissionDenied: "You do not have permission to save these answers.",
	SaveUnknown:          "Failed to save answers. Please try again.",
}

type SaveError struct {
	Code    SaveCode
	Message string
	Err     error
}

func NewSaveError(code SaveCode, cause error) *SaveError {
	msg, ok := saveMessages[code]
	if !ok {
		code, msg = SaveUnknown, saveMessages[SaveUnknown]
	}
	return &SaveError{Code: code, Message: msg, Err: cause}
}

func (e *SaveError) Error() string { return e.Message }
func (e *SaveError) Unwrap() error { return e.Err }

// Lỗi chuẩn hóa mà các kho tài liệu trả về; Saver đổi chúng sang SaveCode.
var (
	ErrPermissionDenied = errors.New("store: permission denied")
	ErrUnauthenticated  = errors.New("store: unauthenticated")
	ErrUnavailable      = errors.New("store: unavailable")
)
