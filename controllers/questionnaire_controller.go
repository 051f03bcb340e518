package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/daily-pulse/middleware"
	"github.com/vnkhanh/daily-pulse/models"
	"github.com/vnkhanh/daily-pulse/questionnaire"
)

type QuestionnaireController struct {
	registry *questionnaire.Registry
}

func NewQuestionnaireController(registry *questionnaire.Registry) *QuestionnaireController {
	return &QuestionnaireController{registry: registry}
}

var saveStatuses = map[models.SaveCode]int{
	models.SaveIncomplete:       http.StatusUnprocessableEntity,
	models.SaveUnauthenticated:  http.StatusUnauthorized,
	models.SavePermissionDenied: http.StatusForbidden,
	models.SaveNetworkFailure:   http.StatusBadGateway,
}

func saveStatus(code models.SaveCode) int {
	if status, ok := saveStatuses[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// POST /api/questionnaires
func (qc *QuestionnaireController) Start(c *gin.Context) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	q := qc.registry.Open(s.OwnerID)
	if err := q.Load(c.Request.Context()); err != nil {
		qc.registry.Discard(q.ID)

		var fetchErr *models.FetchError
		if errors.As(err, &fetchErr) {
			c.JSON(http.StatusBadGateway, gin.H{"code": fetchErr.Code, "message": fetchErr.Message})
			return
		}
		log.Error().Err(err).Msg("start questionnaire failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load questions. Please try again."})
		return
	}
	// phiên đổi trong lúc tải thì bảng hỏi đã bị bỏ
	if _, ok := qc.registry.Get(q.ID); !ok {
		c.JSON(http.StatusConflict, gin.H{"message": "Session changed while loading questions. Please try again."})
		return
	}
	c.JSON(http.StatusCreated, q.Snapshot())
}

// GET /api/questionnaires/:id
func (qc *QuestionnaireController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.QuestionnaireFrom(c).Snapshot())
}

type textReq struct {
	Text *string `json:"text" binding:"required"`
}

type optionReq struct {
	Option string `json:"option" binding:"required"`
}

// PUT /api/questionnaires/:id/answers/:questionId/text
func (qc *QuestionnaireController) SetText(c *gin.Context) {
	var req textReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing text"})
		return
	}
	q := middleware.QuestionnaireFrom(c)
	qc.mutate(c, q, q.State().SetText(c.Param("questionId"), *req.Text))
}

// PUT /api/questionnaires/:id/answers/:questionId/choice
func (qc *QuestionnaireController) SetChoice(c *gin.Context) {
	var req optionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing option"})
		return
	}
	q := middleware.QuestionnaireFrom(c)
	qc.mutate(c, q, q.State().SetSingleChoice(c.Param("questionId"), req.Option))
}

// POST /api/questionnaires/:id/answers/:questionId/toggle
func (qc *QuestionnaireController) Toggle(c *gin.Context) {
	var req optionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing option"})
		return
	}
	q := middleware.QuestionnaireFrom(c)
	qc.mutate(c, q, q.State().ToggleMultiChoice(c.Param("questionId"), req.Option))
}

func (qc *QuestionnaireController) mutate(c *gin.Context, q *questionnaire.Questionnaire, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, q.Snapshot())
	case errors.Is(err, questionnaire.ErrUnknownQuestion):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, models.ErrKindMismatch), errors.Is(err, questionnaire.ErrNotLoaded):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, questionnaire.ErrUnknownOption):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

// POST /api/questionnaires/:id/save
func (qc *QuestionnaireController) Save(c *gin.Context) {
	q := middleware.QuestionnaireFrom(c)
	saved, err := q.Save(c.Request.Context())
	if err != nil {
		var saveErr *models.SaveError
		switch {
		case errors.As(err, &saveErr):
			c.JSON(saveStatus(saveErr.Code), gin.H{"code": saveErr.Code, "message": saveErr.Message})
		case errors.Is(err, questionnaire.ErrSaveInProgress), errors.Is(err, questionnaire.ErrNotLoaded):
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		case errors.Is(err, context.Canceled):
			c.JSON(http.StatusRequestTimeout, gin.H{"message": "Save cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answer_set": saved,
		"save_state": q.Saver().State(),
	})
}

// DELETE /api/questionnaires/:id
func (qc *QuestionnaireController) Discard(c *gin.Context) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	if q, ok := qc.registry.Get(c.Param("id")); ok {
		if q.OwnerID != s.OwnerID {
			c.JSON(http.StatusForbidden, gin.H{"message": "You do not have access to this questionnaire"})
			return
		}
		qc.registry.Discard(q.ID)
	}
	c.Status(http.StatusNoContent)
}
