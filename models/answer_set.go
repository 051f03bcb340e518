package models

import "time"

const DateKeyLayout = "2006-01-02"

// DateKey là ngày lịch (YYYY-MM-DD) theo múi giờ của t, dùng làm khóa tài liệu.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// AnswerSet là đơn vị ghi: toàn bộ câu trả lời của một ngày cho một người dùng.
type AnswerSet struct {
	OwnerID string    `json:"ownerId"`
	DateKey string    `json:"dateKey"`
	Answers []Answer  `json:"answers"`
	SavedAt time.Time `json:"timestamp"`
}

// DocumentPath: users/{ownerId}/answers/{dateKey}.
func (s AnswerSet) DocumentPath() string {
	return "users/" + s.OwnerID + "/answers/" + s.DateKey
}
