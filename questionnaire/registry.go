package questionnaire

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vnkhanh/daily-pulse/models"
)

// Registry giữ các bảng hỏi đang mở. Bảng hỏi bị bỏ khi người dùng rời màn hình
// hoặc khi phiên đăng nhập đổi chủ.
type Registry struct {
	fetcher  QuestionFetcher
	store    DocumentStore
	sessions SessionSource
	opts     []SaverOption

	mu    sync.Mutex
	items map[string]*Questionnaire
	owner string
}

func NewRegistry(fetcher QuestionFetcher, store DocumentStore, sessions SessionSource, opts ...SaverOption) *Registry {
	return &Registry{
		fetcher:  fetcher,
		store:    store,
		sessions: sessions,
		opts:     opts,
		items:    make(map[string]*Questionnaire),
	}
}

// Open tạo bảng hỏi mới chưa tải câu hỏi, thuộc về ownerID.
func (r *Registry) Open(ownerID string) *Questionnaire {
	q := New(uuid.NewString(), r.fetcher, NewSaver(r.store, r.sessions, r.opts...))
	q.OwnerID = ownerID
	r.mu.Lock()
	r.items[q.ID] = q
	r.mu.Unlock()
	return q
}

func (r *Registry) Get(id string) (*Questionnaire, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.items[id]
	return q, ok
}

func (r *Registry) Discard(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// OnSessionChanged bỏ toàn bộ bảng hỏi khi đăng xuất hoặc đổi người dùng.
func (r *Registry) OnSessionChanged(s *models.Session) {
	owner := ""
	if s != nil {
		owner = s.OwnerID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if owner == r.owner {
		return
	}
	r.owner = owner
	if n := len(r.items); n > 0 {
		r.items = make(map[string]*Questionnaire)
		log.Info().Int("discarded", n).Msg("session changed, open questionnaires discarded")
	}
}
