package questionnaire

import "github.com/vnkhanh/daily-pulse/models"

// IsComplete = mọi câu hỏi đều có câu trả lời không rỗng.
func IsComplete(answers []models.Answer) bool {
	for _, a := range answers {
		if a.IsEmpty() {
			return false
		}
	}
	return true
}

// UnansweredQuestionIDs trả về đúng các câu chưa trả lời, theo thứ tự câu hỏi.
func UnansweredQuestionIDs(answers []models.Answer) []string {
	out := []string{}
	for _, a := range answers {
		if a.IsEmpty() {
			out = append(out, a.QuestionID())
		}
	}
	return out
}
