package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog/log"
	"github.com/vnkhanh/daily-pulse/models"
)

type SaveState string

const (
	StateIdle   SaveState = "idle"
	StateSaving SaveState = "saving"
	StateSaved  SaveState = "saved"
	StateFailed SaveState = "failed"
)

const (
	eventSave   = "save"
	eventAck    = "ack"
	eventFail   = "fail"
	eventCancel = "cancel"
)

var ErrSaveInProgress = errors.New("save already in progress")

// DocumentStore ghi đè toàn bộ AnswerSet vào tài liệu users/{ownerId}/answers/{dateKey}
// và trả về bản đã lưu với SavedAt do phía lưu trữ gán.
type DocumentStore interface {
	WriteAnswerSet(ctx context.Context, sess *models.Session, set models.AnswerSet) (models.AnswerSet, error)
}

type SessionSource interface {
	Current() *models.Session
}

// Saver: Idle -> Saving -> Saved | Failed. Saved/Failed có thể lưu lại.
type Saver struct {
	store    DocumentStore
	sessions SessionSource
	now      func() time.Time

	mu      sync.Mutex
	machine *fsm.FSM
	lastErr *models.SaveError
}

type SaverOption func(*Saver)

// WithClock đặt đồng hồ dùng để tính dateKey (mặc định time.Now, giờ địa phương).
func WithClock(now func() time.Time) SaverOption {
	return func(s *Saver) { s.now = now }
}

func NewSaver(store DocumentStore, sessions SessionSource, opts ...SaverOption) *Saver {
	s := &Saver{
		store:    store,
		sessions: sessions,
		now:      time.Now,
		machine: fsm.NewFSM(
			string(StateIdle),
			fsm.Events{
				{Name: eventSave, Src: []string{string(StateIdle), string(StateSaved), string(StateFailed)}, Dst: string(StateSaving)},
				{Name: eventAck, Src: []string{string(StateSaving)}, Dst: string(StateSaved)},
				{Name: eventFail, Src: []string{string(StateSaving)}, Dst: string(StateFailed)},
				{Name: eventCancel, Src: []string{string(StateSaving)}, Dst: string(StateIdle)},
			},
			fsm.Callbacks{},
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Saver) State() SaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SaveState(s.machine.Current())
}

// LastError là lỗi của lần lưu thất bại gần nhất; nil khi không ở Failed.
func (s *Saver) LastError() *models.SaveError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Save kiểm tra phiên và độ đầy đủ trước khi đổi trạng thái, rồi ghi đúng một lần.
// Nếu ctx bị hủy trong lúc ghi, trạng thái quay về Idle và trả về ctx.Err().
func (s *Saver) Save(ctx context.Context, answers []models.Answer) (models.AnswerSet, error) {
	sess := s.sessions.Current()
	if sess == nil {
		return models.AnswerSet{}, models.NewSaveError(models.SaveUnauthenticated, nil)
	}
	if !IsComplete(answers) {
		missing := UnansweredQuestionIDs(answers)
		return models.AnswerSet{}, models.NewSaveError(models.SaveIncomplete, fmt.Errorf("unanswered questions: %v", missing))
	}

	s.mu.Lock()
	if err := s.machine.Event(context.Background(), eventSave); err != nil {
		s.mu.Unlock()
		return models.AnswerSet{}, ErrSaveInProgress
	}
	s.lastErr = nil
	s.mu.Unlock()

	set := models.AnswerSet{
		OwnerID: sess.OwnerID,
		DateKey: models.DateKey(s.now()),
		Answers: append([]models.Answer(nil), answers...),
	}

	saved, err := s.store.WriteAnswerSet(ctx, sess, set)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err == nil:
		s.transition(eventAck)
		log.Info().Str("owner_id", set.OwnerID).Str("date_key", set.DateKey).Msg("answers saved")
		return saved, nil
	case errors.Is(err, context.Canceled):
		s.transition(eventCancel)
		log.Info().Str("owner_id", set.OwnerID).Str("date_key", set.DateKey).Msg("save cancelled")
		return models.AnswerSet{}, err
	default:
		saveErr := models.NewSaveError(classify(err), err)
		s.lastErr = saveErr
		s.transition(eventFail)
		log.Error().Err(err).Str("owner_id", set.OwnerID).Str("date_key", set.DateKey).
			Str("code", string(saveErr.Code)).Msg("save answers failed")
		return models.AnswerSet{}, saveErr
	}
}

func (s *Saver) transition(event string) {
	if err := s.machine.Event(context.Background(), event); err != nil {
		log.Error().Err(err).Str("event", event).Msg("save state transition rejected")
	}
}

func classify(err error) models.SaveCode {
	var netErr net.Error
	switch {
	case errors.Is(err, models.ErrPermissionDenied):
		return models.SavePermissionDenied
	case errors.Is(err, models.ErrUnauthenticated):
		return models.SaveUnauthenticated
	case errors.Is(err, models.ErrUnavailable), errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		return models.SaveNetworkFailure
	default:
		return models.SaveUnknown
	}
}
