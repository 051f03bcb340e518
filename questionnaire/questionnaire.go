package questionnaire

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vnkhanh/daily-pulse/models"
)

// ErrStaleLoad: kết quả tải bị bỏ vì đã có lần tải mới hơn.
var ErrStaleLoad = errors.New("stale question load discarded")

type QuestionFetcher interface {
	FetchQuestions(ctx context.Context) ([]models.Question, error)
}

// Questionnaire là một lần trả lời bảng hỏi (tương ứng một màn hình đang mở).
type Questionnaire struct {
	ID        string
	OwnerID   string // người mở bảng hỏi
	CreatedAt time.Time

	fetcher QuestionFetcher
	state   *State
	saver   *Saver

	loadMu sync.Mutex
	gen    uint64
}

func New(id string, fetcher QuestionFetcher, saver *Saver) *Questionnaire {
	return &Questionnaire{
		ID:        id,
		CreatedAt: time.Now(),
		fetcher:   fetcher,
		state:     NewState(),
		saver:     saver,
	}
}

// Load tải câu hỏi và khởi tạo câu trả lời. Nếu có lần Load khác bắt đầu sau,
// kết quả lần này bị bỏ (ErrStaleLoad) thay vì ghi đè trạng thái mới hơn.
func (q *Questionnaire) Load(ctx context.Context) error {
	q.loadMu.Lock()
	q.gen++
	gen := q.gen
	q.loadMu.Unlock()

	questions, err := q.fetcher.FetchQuestions(ctx)

	q.loadMu.Lock()
	defer q.loadMu.Unlock()
	if gen != q.gen {
		return ErrStaleLoad
	}
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return q.state.Initialize(questions)
}

func (q *Questionnaire) State() *State { return q.state }

func (q *Questionnaire) Saver() *Saver { return q.saver }

// Save lưu toàn bộ câu trả lời hiện tại. Trạng thái câu trả lời không đổi khi lỗi.
func (q *Questionnaire) Save(ctx context.Context) (models.AnswerSet, error) {
	if !q.state.Loaded() {
		return models.AnswerSet{}, ErrNotLoaded
	}
	return q.saver.Save(ctx, q.state.Answers())
}

type Snapshot struct {
	ID         string            `json:"id"`
	Questions  []models.Question `json:"questions"`
	Answers    []models.Answer   `json:"answers"`
	Complete   bool              `json:"complete"`
	Unanswered []string          `json:"unanswered"`
	SaveState  SaveState         `json:"save_state"`
	SaveError  *SaveErrorView    `json:"save_error,omitempty"`
}

type SaveErrorView struct {
	Code    models.SaveCode `json:"code"`
	Message string          `json:"message"`
}

func (q *Questionnaire) Snapshot() Snapshot {
	answers := q.state.Answers()
	snap := Snapshot{
		ID:         q.ID,
		Questions:  q.state.Questions(),
		Answers:    answers,
		Complete:   q.state.Loaded() && IsComplete(answers),
		Unanswered: UnansweredQuestionIDs(answers),
		SaveState:  q.saver.State(),
	}
	if e := q.saver.LastError(); e != nil {
		snap.SaveError = &SaveErrorView{Code: e.Code, Message: e.Message}
	}
	return snap
}
