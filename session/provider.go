package session

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/vnkhanh/daily-pulse/models"
)

var ErrAlreadyStarted = errors.New("session provider already started")

// IdentityService là hợp đồng tối thiểu với dịch vụ định danh bên ngoài.
type IdentityService interface {
	SignInWithEmailAndPassword(ctx context.Context, email, password string) (*models.Session, error)
	CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	// OnAuthStateChanged đăng ký nhận trạng thái; trả về hàm hủy đăng ký.
	OnAuthStateChanged(listener func(*models.Session)) (unsubscribe func())
}

// Provider giữ phiên hiện tại và phát lại mọi thay đổi từ dịch vụ định danh
// cho các subscriber, đúng thứ tự nhận được.
type Provider struct {
	identity IdentityService

	mu          sync.RWMutex
	current     *models.Session
	ready       bool
	started     bool
	unsubscribe func()

	subMu  sync.Mutex
	subs   map[int]func(*models.Session)
	nextID int

	// dispatch giữ thứ tự phát khi nhiều goroutine cùng đẩy trạng thái.
	dispatch sync.Mutex
}

func NewProvider(identity IdentityService) *Provider {
	return &Provider{
		identity: identity,
		subs:     make(map[int]func(*models.Session)),
	}
}

// Start đăng ký với dịch vụ định danh. Chỉ gọi một lần trong vòng đời ứng dụng.
func (p *Provider) Start() error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	p.mu.Unlock()

	unsubscribe := p.identity.OnAuthStateChanged(p.receive)

	p.mu.Lock()
	p.unsubscribe = unsubscribe
	p.mu.Unlock()
	log.Info().Msg("session provider subscribed to identity state")
	return nil
}

// Stop hủy đăng ký; gọi nhiều lần cũng an toàn.
func (p *Provider) Stop() {
	p.mu.Lock()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
		log.Info().Msg("session provider unsubscribed from identity state")
	}
}

// Current trả về phiên hiện tại hoặc nil.
func (p *Provider) Current() *models.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Ready = đã nhận thông báo trạng thái đầu tiên từ dịch vụ định danh.
func (p *Provider) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ready
}

// Subscribe nhận mọi thay đổi phiên. Hàm trả về dùng để hủy.
func (p *Provider) Subscribe(fn func(*models.Session)) (cancel func()) {
	p.subMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.subs, id)
			p.subMu.Unlock()
		})
	}
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	s, err := p.identity.SignInWithEmailAndPassword(ctx, email, password)
	if err != nil {
		authErr := MapError(err)
		log.Warn().Err(err).Str("code", string(authErr.Code)).Msg("sign in failed")
		return nil, authErr
	}
	return s, nil
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	s, err := p.identity.CreateUserWithEmailAndPassword(ctx, email, password)
	if err != nil {
		authErr := MapError(err)
		log.Warn().Err(err).Str("code", string(authErr.Code)).Msg("sign up failed")
		return nil, authErr
	}
	return s, nil
}

// SignOut ủy quyền cho dịch vụ định danh rồi xóa phiên cục bộ.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.identity.SignOut(ctx); err != nil {
		authErr := MapError(err)
		log.Warn().Err(err).Str("code", string(authErr.Code)).Msg("sign out failed")
		return authErr
	}
	p.dispatch.Lock()
	defer p.dispatch.Unlock()
	if p.Current() != nil {
		p.apply(nil)
	}
	return nil
}

func (p *Provider) receive(s *models.Session) {
	p.dispatch.Lock()
	defer p.dispatch.Unlock()
	p.apply(s)
}

// apply phải được gọi khi đang giữ dispatch.
func (p *Provider) apply(s *models.Session) {
	p.mu.Lock()
	p.current = s
	p.ready = true
	p.mu.Unlock()

	p.subMu.Lock()
	ids := make([]int, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	fns := make([]func(*models.Session), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, p.subs[id])
	}
	p.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
