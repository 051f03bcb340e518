package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/daily-pulse/middleware"
	"github.com/vnkhanh/daily-pulse/models"
)

// Authenticator là phần của session.Provider mà controller cần.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
}

type AuthController struct {
	auth Authenticator
}

func NewAuthController(auth Authenticator) *AuthController {
	return &AuthController{auth: auth}
}

type credentialsReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func viewSession(s *models.Session) sessionView {
	v := sessionView{ID: s.OwnerID, Email: s.Email}
	if !s.ExpiresAt.IsZero() {
		exp := s.ExpiresAt
		v.ExpiresAt = &exp
	}
	return v
}

var authStatuses = map[models.AuthCode]int{
	models.AuthNetworkFailure:     http.StatusBadGateway,
	models.AuthInvalidCredentials: http.StatusUnauthorized,
	models.AuthUnknownAccount:     http.StatusNotFound,
	models.AuthAccountDisabled:    http.StatusForbidden,
	models.AuthRateLimited:        http.StatusTooManyRequests,
	models.AuthEmailInUse:         http.StatusConflict,
	models.AuthWeakPassword:       http.StatusUnprocessableEntity,
	models.AuthInvalidEmail:       http.StatusUnprocessableEntity,
	models.AuthProviderDisabled:   http.StatusForbidden,
}

func authStatus(code models.AuthCode) int {
	if status, ok := authStatuses[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondAuthError(c *gin.Context, err error) {
	var authErr *models.AuthError
	if !errors.As(err, &authErr) {
		authErr = models.NewAuthError(models.AuthUnknown, err)
	}
	c.JSON(authStatus(authErr.Code), gin.H{"code": authErr.Code, "message": authErr.Message})
}

func bindCredentials(c *gin.Context) (credentialsReq, bool) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please fill in all fields"})
		return req, false
	}
	return req, true
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}
	s, err := ac.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": s.IDToken, "user": viewSession(s)})
}

// POST /api/auth/signup
func (ac *AuthController) Signup(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}
	s, err := ac.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": s.IDToken, "user": viewSession(s)})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.auth.SignOut(c.Request.Context()); err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// GET /api/me
func (ac *AuthController) Me(c *gin.Context) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": viewSession(s)})
}
