package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrKindMismatch: thao tác không khớp loại câu hỏi (vd. SetText trên câu multi_choice).
var ErrKindMismatch = errors.New("answer kind mismatch")

// Answer là giá trị trả lời có gắn loại. Text/SingleChoice giữ một chuỗi,
// MultiChoice giữ tập lựa chọn theo thứ tự chọn. Chỉ tạo qua EmptyAnswer.
type Answer struct {
	questionID string
	kind       QuestionKind
	text       string
	choices    []string
}

// EmptyAnswer tạo câu trả lời rỗng đúng loại cho câu hỏi.
func EmptyAnswer(q Question) Answer {
	a := Answer{questionID: q.ID, kind: q.Kind}
	if q.Kind == KindMultiChoice {
		a.choices = []string{}
	}
	return a
}

func (a Answer) QuestionID() string { return a.questionID }

func (a Answer) Kind() QuestionKind { return a.kind }

// Text trả về giá trị chuỗi; rỗng với MultiChoice.
func (a Answer) Text() string { return a.text }

// Choices trả về bản sao tập lựa chọn; nil với các loại một giá trị.
func (a Answer) Choices() []string {
	if a.kind != KindMultiChoice {
		return nil
	}
	out := make([]string, len(a.choices))
	copy(out, a.choices)
	return out
}

func (a Answer) Selected(option string) bool {
	if a.kind == KindMultiChoice {
		for _, c := range a.choices {
			if c == option {
				return true
			}
		}
		return false
	}
	return a.kind == KindSingleChoice && a.text == option
}

// IsEmpty: chuỗi rỗng sau TrimSpace, hoặc tập lựa chọn rỗng.
func (a Answer) IsEmpty() bool {
	if a.kind == KindMultiChoice {
		return len(a.choices) == 0
	}
	return strings.TrimSpace(a.text) == ""
}

// Value trả về string hoặc []string tùy loại.
func (a Answer) Value() any {
	if a.kind == KindMultiChoice {
		return a.Choices()
	}
	return a.text
}

func (a Answer) WithText(text string) (Answer, error) {
	if a.kind != KindText {
		return a, a.mismatch("text")
	}
	a.text = text
	return a, nil
}

func (a Answer) WithChoice(option string) (Answer, error) {
	if a.kind != KindSingleChoice {
		return a, a.mismatch("single choice")
	}
	a.text = option
	return a, nil
}

// Toggled bỏ option nếu đã chọn, ngược lại thêm vào cuối.
func (a Answer) Toggled(option string) (Answer, error) {
	if a.kind != KindMultiChoice {
		return a, a.mismatch("multi choice")
	}
	next := make([]string, 0, len(a.choices)+1)
	found := false
	for _, c := range a.choices {
		if c == option {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found {
		next = append(next, option)
	}
	a.choices = next
	return a, nil
}

func (a Answer) mismatch(op string) error {
	return fmt.Errorf("%w: %s operation on %s question %q", ErrKindMismatch, op, a.kind, a.questionID)
}

// MarshalJSON giữ đúng hình dạng tài liệu: {"questionId": ..., "answer": string | []string}.
func (a Answer) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		QuestionID string `json:"questionId"`
		Answer     any    `json:"answer"`
	}{a.questionID, a.Value()})
}
