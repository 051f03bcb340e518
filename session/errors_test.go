package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vnkhanh/daily-pulse/models"
)

func TestMapError_ProviderCodes(t *testing.T) {
	tests := []struct {
		code string
		want models.AuthCode
	}{
		{"auth/network-request-failed", models.AuthNetworkFailure},
		{"auth/user-not-found", models.AuthUnknownAccount},
		{"auth/wrong-password", models.AuthInvalidCredentials},
		{"auth/invalid-credential", models.AuthInvalidCredentials},
		{"auth/invalid-email", models.AuthInvalidEmail},
		{"auth/user-disabled", models.AuthAccountDisabled},
		{"auth/too-many-requests", models.AuthRateLimited},
		{"auth/email-already-in-use", models.AuthEmailInUse},
		{"auth/weak-password", models.AuthWeakPassword},
		{"auth/operation-not-allowed", models.AuthProviderDisabled},
		{"auth/internal-error", models.AuthUnknown},
		{"something-else", models.AuthUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := MapError(&IdentityError{Code: tt.code})
			assert.Equal(t, tt.want, err.Code)
			assert.Equal(t, models.NewAuthError(tt.want, nil).Message, err.Message)
		})
	}
}

func TestCodeFor_AcceptsBareCode(t *testing.T) {
	assert.Equal(t, models.AuthEmailInUse, CodeFor("email-already-in-use"))
	assert.Equal(t, models.AuthEmailInUse, CodeFor("auth/email-already-in-use"))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestMapError_Other(t *testing.T) {
	assert.Nil(t, MapError(nil))

	existing := models.NewAuthError(models.AuthWeakPassword, nil)
	assert.Same(t, existing, MapError(fmt.Errorf("wrap: %w", existing)))

	assert.Equal(t, models.AuthNetworkFailure, MapError(timeoutErr{}).Code)
	assert.Equal(t, models.AuthNetworkFailure, MapError(context.DeadlineExceeded).Code)

	wrapped := MapError(fmt.Errorf("call: %w", &IdentityError{Code: "auth/user-disabled"}))
	assert.Equal(t, models.AuthAccountDisabled, wrapped.Code)

	unknown := MapError(errors.New("boom"))
	assert.Equal(t, models.AuthUnknown, unknown.Code)
	assert.Equal(t, "An error occurred. Please try again.", unknown.Error())
}
