package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/daily-pulse/models"
)

const (
	CtxSession = "session" // *models.Session của người dùng hiện tại
)

type SessionSource interface {
	Current() *models.Session
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    models.SaveUnauthenticated,
		"message": message,
	})
}

// RequireSession kiểm tra Authorization: Bearer <idToken> khớp với phiên hiện tại
// (chưa hết hạn) rồi inject phiên vào context.
func RequireSession(sessions SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			unauthorized(c, "Missing or invalid Authorization header")
			return
		}
		rawToken := strings.TrimSpace(authHeader[7:])

		s := sessions.Current()
		if s == nil || s.IDToken == "" || s.Expired(time.Now()) {
			unauthorized(c, "Please log in to continue.")
			return
		}
		if subtle.ConstantTimeCompare([]byte(rawToken), []byte(s.IDToken)) != 1 {
			unauthorized(c, "Invalid token")
			return
		}
		c.Set(CtxSession, s)
		c.Next()
	}
}

// SessionFrom lấy phiên đã được RequireSession inject.
func SessionFrom(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(CtxSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*models.Session)
	return s, ok && s != nil
}
