package store

import (
	"context"
	"sync"
	"time"

	"github.com/vnkhanh/daily-pulse/models"
)

// Memory là kho tài liệu trong bộ nhớ, dùng cho chạy cục bộ và test.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]models.AnswerSet
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]models.AnswerSet), now: time.Now}
}

func (m *Memory) WriteAnswerSet(ctx context.Context, _ *models.Session, set models.AnswerSet) (models.AnswerSet, error) {
	if err := ctx.Err(); err != nil {
		return models.AnswerSet{}, err
	}
	set.Answers = append([]models.Answer(nil), set.Answers...)
	set.SavedAt = m.now()

	m.mu.Lock()
	m.docs[set.DocumentPath()] = set
	m.mu.Unlock()
	return set, nil
}

// Get đọc tài liệu theo (ownerId, dateKey).
func (m *Memory) Get(ownerID, dateKey string) (models.AnswerSet, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, ok := m.docs[models.AnswerSet{OwnerID: ownerID, DateKey: dateKey}.DocumentPath()]
	return set, ok
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func (m *Memory) Check(ctx context.Context) error {
	return ctx.Err()
}
