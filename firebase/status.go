package firebase

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/vnkhanh/daily-pulse/models"
	"github.com/vnkhanh/daily-pulse/session"
)

type Prober interface {
	Probe(ctx context.Context) error
}

type Status struct {
	IsConnected      bool   `json:"is_connected"`
	AuthEnabled      bool   `json:"auth_enabled"`
	FirestoreEnabled bool   `json:"firestore_enabled"`
	Error            string `json:"error,omitempty"`
}

// CheckStatus thăm dò Firebase Auth và Firestore. docs có thể nil khi kho tài liệu
// không phải Firestore. Thông điệp lỗi lấy từ cùng bảng ánh xạ với đăng nhập.
func CheckStatus(ctx context.Context, auth, docs Prober) Status {
	var status Status

	if auth == nil {
		status.Error = "Authentication not properly configured"
	} else if err := auth.Probe(ctx); err != nil {
		log.Warn().Err(err).Msg("auth probe failed")
		authErr := session.MapError(err)
		status.IsConnected = authErr.Code != models.AuthNetworkFailure
		status.Error = authErr.Message
	} else {
		status.IsConnected = true
		status.AuthEnabled = true
	}

	if docs == nil {
		if status.Error == "" {
			status.Error = "Firestore not properly configured"
		}
		return status
	}
	if err := docs.Probe(ctx); err != nil {
		log.Warn().Err(err).Msg("firestore probe failed")
		if status.Error == "" {
			status.Error = "Firestore not properly configured"
		}
		return status
	}
	status.IsConnected = true
	status.FirestoreEnabled = true
	return status
}
