package models

import "time"

// Session là phiên đăng nhập do dịch vụ định danh trả về.
type Session struct {
	OwnerID      string    `json:"owner_id"`
	Email        string    `json:"email"`
	IDToken      string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
