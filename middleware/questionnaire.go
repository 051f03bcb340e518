package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/daily-pulse/questionnaire"
)

const (
	CtxQuestionnaire = "questionnaireObj" // bảng hỏi đã nạp sẵn
)

// LoadQuestionnaire nạp bảng hỏi theo :id vào context & xác thực sở hữu.
// Chạy sau RequireSession.
func LoadQuestionnaire(registry *questionnaire.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := SessionFrom(c)
		if !ok {
			unauthorized(c, "Please log in to continue.")
			return
		}

		q, ok := registry.Get(c.Param("id"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Questionnaire not found"})
			return
		}

		// Chỉ người mở bảng hỏi được thao tác
		if q.OwnerID != s.OwnerID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You do not have access to this questionnaire"})
			return
		}

		c.Set(CtxQuestionnaire, q)
		c.Next()
	}
}

func QuestionnaireFrom(c *gin.Context) *questionnaire.Questionnaire {
	return c.MustGet(CtxQuestionnaire).(*questionnaire.Questionnaire)
}
