package questionnaire

import (
	"context"
	"sync"

	"github.com/vnkhanh/daily-pulse/models"
)

var testQuestions = []models.Question{
	{ID: "mood", Prompt: "How do you feel?", Kind: models.KindSingleChoice, Options: []string{"good", "ok", "bad"}},
	{ID: "done", Prompt: "What did you do?", Kind: models.KindMultiChoice, Options: []string{"run", "read", "cook"}},
	{ID: "note", Prompt: "Anything else?", Kind: models.KindText},
}

type staticSessions struct {
	mu sync.Mutex
	s  *models.Session
}

func (f *staticSessions) Current() *models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

func (f *staticSessions) set(s *models.Session) {
	f.mu.Lock()
	f.s = s
	f.mu.Unlock()
}

// recordingStore ghi lại mọi lần gọi; block (nếu có) giữ lời gọi cho tới khi được giải phóng.
type recordingStore struct {
	mu      sync.Mutex
	calls   []models.AnswerSet
	tokens  []string
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *recordingStore) WriteAnswerSet(ctx context.Context, sess *models.Session, set models.AnswerSet) (models.AnswerSet, error) {
	f.mu.Lock()
	f.calls = append(f.calls, set)
	if sess != nil {
		f.tokens = append(f.tokens, sess.IDToken)
	}
	block, started, err := f.block, f.started, f.err
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return models.AnswerSet{}, ctx.Err()
		}
	}
	if err != nil {
		return models.AnswerSet{}, err
	}
	return set, nil
}

func (f *recordingStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, call int) ([]models.Question, error)
}

func (f *fakeFetcher) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	if f.fn == nil {
		return testQuestions, nil
	}
	return f.fn(ctx, call)
}

// answerAll điền câu trả lời hợp lệ cho mọi câu trong testQuestions.
func answerAll(s *State) error {
	if err := s.SetSingleChoice("mood", "good"); err != nil {
		return err
	}
	if err := s.ToggleMultiChoice("done", "read"); err != nil {
		return err
	}
	return s.SetText("note", "quiet day")
}
