package questionnaire

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vnkhanh/daily-pulse/models"
)

var (
	ErrNotLoaded       = errors.New("questionnaire not loaded")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownOption   = errors.New("option not offered by question")
	ErrDuplicateID     = errors.New("duplicate question id")
)

// State giữ một câu trả lời cho mỗi câu hỏi đã tải, theo thứ tự tải.
// Không thêm/xóa câu trả lời sau Initialize.
type State struct {
	mu        sync.RWMutex
	questions []models.Question
	answers   []models.Answer
	index     map[string]int
	loaded    bool
}

func NewState() *State {
	return &State{}
}

// Initialize thay toàn bộ câu hỏi và đặt mọi câu trả lời về giá trị rỗng.
func (s *State) Initialize(questions []models.Question) error {
	index := make(map[string]int, len(questions))
	answers := make([]models.Answer, len(questions))
	qs := make([]models.Question, len(questions))
	for i, q := range questions {
		if _, dup := index[q.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, q.ID)
		}
		index[q.ID] = i
		qs[i] = q
		answers[i] = models.EmptyAnswer(q)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = qs
	s.answers = answers
	s.index = index
	s.loaded = true
	return nil
}

func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *State) SetText(questionID, text string) error {
	return s.mutate(questionID, func(q models.Question, a models.Answer) (models.Answer, error) {
		return a.WithText(text)
	})
}

func (s *State) SetSingleChoice(questionID, option string) error {
	return s.mutate(questionID, func(q models.Question, a models.Answer) (models.Answer, error) {
		next, err := a.WithChoice(option)
		if err != nil {
			return a, err
		}
		if !q.HasOption(option) {
			return a, fmt.Errorf("%w: %q on question %q", ErrUnknownOption, option, q.ID)
		}
		return next, nil
	})
}

func (s *State) ToggleMultiChoice(questionID, option string) error {
	return s.mutate(questionID, func(q models.Question, a models.Answer) (models.Answer, error) {
		next, err := a.Toggled(option)
		if err != nil {
			return a, err
		}
		if !q.HasOption(option) {
			return a, fmt.Errorf("%w: %q on question %q", ErrUnknownOption, option, q.ID)
		}
		return next, nil
	})
}

func (s *State) Answer(questionID string) (models.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return models.Answer{}, ErrNotLoaded
	}
	i, ok := s.index[questionID]
	if !ok {
		return models.Answer{}, fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	return s.answers[i], nil
}

// Answers trả về bản sao các câu trả lời theo thứ tự câu hỏi.
func (s *State) Answers() []models.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

func (s *State) Questions() []models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

func (s *State) mutate(questionID string, fn func(models.Question, models.Answer) (models.Answer, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	i, ok := s.index[questionID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	next, err := fn(s.questions[i], s.answers[i])
	if err != nil {
		return err
	}
	s.answers[i] = next
	return nil
}
