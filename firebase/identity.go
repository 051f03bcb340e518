package firebase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vnkhanh/daily-pulse/models"
	"github.com/vnkhanh/daily-pulse/session"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// restCodes đổi mã lỗi REST của Identity Toolkit sang mã dạng SDK ("auth/...").
var restCodes = map[string]string{
	"EMAIL_NOT_FOUND":             "user-not-found",
	"INVALID_PASSWORD":            "wrong-password",
	"INVALID_LOGIN_CREDENTIALS":   "invalid-credential",
	"USER_DISABLED":               "user-disabled",
	"INVALID_EMAIL":               "invalid-email",
	"MISSING_EMAIL":               "invalid-email",
	"EMAIL_EXISTS":                "email-already-in-use",
	"WEAK_PASSWORD":               "weak-password",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "too-many-requests",
	"OPERATION_NOT_ALLOWED":       "operation-not-allowed",
	"PASSWORD_LOGIN_DISABLED":     "operation-not-allowed",
}

// Identity hiện thực session.IdentityService trên Firebase Auth (Identity Toolkit v3).
type Identity struct {
	svc *identitytoolkit.Service
	now func() time.Time

	mu        sync.Mutex
	current   *models.Session
	listeners map[int]func(*models.Session)
	nextID    int
	expiry    *time.Timer

	emitMu sync.Mutex
}

func NewIdentity(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Identity, error) {
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, all...)
	if err != nil {
		return nil, err
	}
	return &Identity{
		svc:       svc,
		now:       time.Now,
		listeners: make(map[int]func(*models.Session)),
	}, nil
}

func (i *Identity) SignInWithEmailAndPassword(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := i.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translate(err)
	}
	s := i.newSession(resp.LocalId, resp.Email, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
	i.setCurrent(s)
	return s, nil
}

func (i *Identity) CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := i.svc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translate(err)
	}
	if resp.Email == "" {
		resp.Email = email
	}
	s := i.newSession(resp.LocalId, resp.Email, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
	i.setCurrent(s)
	return s, nil
}

// SignOut chỉ xóa phiên cục bộ, giống SDK phía client.
func (i *Identity) SignOut(ctx context.Context) error {
	i.setCurrent(nil)
	return nil
}

// OnAuthStateChanged gửi ngay trạng thái hiện tại cho listener mới, sau đó mọi thay đổi.
func (i *Identity) OnAuthStateChanged(listener func(*models.Session)) func() {
	i.emitMu.Lock()
	i.mu.Lock()
	id := i.nextID
	i.nextID++
	i.listeners[id] = listener
	current := i.current
	i.mu.Unlock()
	listener(current)
	i.emitMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			i.mu.Lock()
			delete(i.listeners, id)
			i.mu.Unlock()
		})
	}
}

// Probe kiểm tra Identity Toolkit có phản hồi với API key hiện tại hay không.
func (i *Identity) Probe(ctx context.Context) error {
	_, err := i.svc.Relyingparty.GetProjectConfig().Context(ctx).Do()
	if err != nil {
		return translate(err)
	}
	return nil
}

func (i *Identity) newSession(localID, email, idToken, refreshToken string, expiresIn int64) *models.Session {
	s := &models.Session{
		OwnerID:      localID,
		Email:        email,
		IDToken:      idToken,
		RefreshToken: refreshToken,
	}
	if exp, err := tokenExpiry(idToken); err == nil {
		s.ExpiresAt = exp
	} else if expiresIn > 0 {
		s.ExpiresAt = i.now().Add(time.Duration(expiresIn) * time.Second)
	}
	return s
}

func (i *Identity) setCurrent(s *models.Session) {
	i.emitMu.Lock()
	defer i.emitMu.Unlock()

	i.mu.Lock()
	if i.expiry != nil {
		i.expiry.Stop()
		i.expiry = nil
	}
	i.current = s
	if s != nil && !s.ExpiresAt.IsZero() {
		i.expiry = time.AfterFunc(s.ExpiresAt.Sub(i.now()), func() { i.expire(s) })
	}
	ids := make([]int, 0, len(i.listeners))
	for id := range i.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(*models.Session), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, i.listeners[id])
	}
	i.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// expire kết thúc phiên khi ID token hết hạn, nếu phiên đó vẫn còn hiện hành.
func (i *Identity) expire(s *models.Session) {
	i.mu.Lock()
	stillCurrent := i.current == s
	i.mu.Unlock()
	if !stillCurrent {
		return
	}
	log.Info().Str("owner_id", s.OwnerID).Msg("id token expired, signing out")
	i.setCurrent(nil)
}

func translate(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		reason := apiErr.Message
		if idx := strings.Index(reason, ":"); idx >= 0 {
			reason = reason[:idx]
		}
		reason = strings.TrimSpace(reason)
		code, ok := restCodes[reason]
		if !ok {
			code = "internal-error"
			if apiErr.Code == 429 {
				code = "too-many-requests"
			}
		}
		return &session.IdentityError{Code: "auth/" + code, Message: apiErr.Message}
	}
	return &session.IdentityError{Code: "auth/network-request-failed", Message: err.Error()}
}
