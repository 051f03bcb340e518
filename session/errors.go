package session

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/vnkhanh/daily-pulse/models"
)

// IdentityError là lỗi thô của dịch vụ định danh, Code có dạng "auth/user-not-found".
type IdentityError struct {
	Code    string
	Message string
}

func (e *IdentityError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// providerCodes là bảng ánh xạ duy nhất từ mã của nhà cung cấp sang AuthCode.
// Sign-in, sign-up và kiểm tra trạng thái đều đi qua bảng này.
var providerCodes = map[string]models.AuthCode{
	"network-request-failed": models.AuthNetworkFailure,
	"user-not-found":         models.AuthUnknownAccount,
	"wrong-password":         models.AuthInvalidCredentials,
	"invalid-credential":     models.AuthInvalidCredentials,
	"invalid-email":          models.AuthInvalidEmail,
	"user-disabled":          models.AuthAccountDisabled,
	"too-many-requests":      models.AuthRateLimited,
	"email-already-in-use":   models.AuthEmailInUse,
	"weak-password":          models.AuthWeakPassword,
	"operation-not-allowed":  models.AuthProviderDisabled,
}

// CodeFor trả về AuthCode của một mã nhà cung cấp, có hoặc không có tiền tố "auth/".
func CodeFor(providerCode string) models.AuthCode {
	if code, ok := providerCodes[strings.TrimPrefix(providerCode, "auth/")]; ok {
		return code
	}
	return models.AuthUnknown
}

// MapError chuyển mọi lỗi từ dịch vụ định danh sang *models.AuthError.
func MapError(err error) *models.AuthError {
	if err == nil {
		return nil
	}
	var authErr *models.AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	var idErr *IdentityError
	if errors.As(err, &idErr) {
		return models.NewAuthError(CodeFor(idErr.Code), err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return models.NewAuthError(models.AuthNetworkFailure, err)
	}
	return models.NewAuthError(models.AuthUnknown, err)
}
