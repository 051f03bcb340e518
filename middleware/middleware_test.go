package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/daily-pulse/models"
	"github.com/vnkhanh/daily-pulse/questionnaire"
)

type fixedSessions struct{ s *models.Session }

func (f fixedSessions) Current() *models.Session { return f.s }

func serve(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func serveWithAuth(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	active := &models.Session{OwnerID: "u1", IDToken: "tok-u1", ExpiresAt: time.Now().Add(time.Hour)}

	tests := []struct {
		name   string
		s      *models.Session
		header string
		want   int
	}{
		{"no session", nil, "Bearer tok-u1", http.StatusUnauthorized},
		{"expired", &models.Session{OwnerID: "u1", IDToken: "tok-u1", ExpiresAt: time.Now().Add(-time.Minute)}, "Bearer tok-u1", http.StatusUnauthorized},
		{"session without token", &models.Session{OwnerID: "u1"}, "Bearer ", http.StatusUnauthorized},
		{"missing header", active, "", http.StatusUnauthorized},
		{"not bearer", active, "Basic tok-u1", http.StatusUnauthorized},
		{"wrong token", active, "Bearer tok-u2", http.StatusUnauthorized},
		{"token prefix", active, "Bearer tok-u", http.StatusUnauthorized},
		{"active", active, "Bearer tok-u1", http.StatusOK},
		{"lowercase scheme", active, "bearer tok-u1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", RequireSession(fixedSessions{tt.s}), func(c *gin.Context) {
				s, ok := SessionFrom(c)
				assert.True(t, ok)
				c.String(http.StatusOK, s.OwnerID)
			})
			w := serveWithAuth(r, "/", tt.header)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
				return
			}
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, string(models.SaveUnauthenticated), body["code"])
		})
	}
}

func TestSessionFrom_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := SessionFrom(c)
	assert.False(t, ok)
}

type noQuestions struct{}

func (noQuestions) FetchQuestions(context.Context) ([]models.Question, error) { return nil, nil }

type noopStore struct{}

func (noopStore) WriteAnswerSet(_ context.Context, _ *models.Session, set models.AnswerSet) (models.AnswerSet, error) {
	return set, nil
}

func TestLoadQuestionnaire_Ownership(t *testing.T) {
	gin.SetMode(gin.TestMode)
	owner := &models.Session{OwnerID: "u1", IDToken: "tok-u1"}
	registry := questionnaire.NewRegistry(noQuestions{}, noopStore{}, fixedSessions{owner})
	mine := registry.Open("u1")
	theirs := registry.Open("u2")

	r := gin.New()
	r.GET("/:id", RequireSession(fixedSessions{owner}), LoadQuestionnaire(registry), func(c *gin.Context) {
		c.String(http.StatusOK, QuestionnaireFrom(c).ID)
	})

	w := serveWithAuth(r, "/"+mine.ID, "Bearer tok-u1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mine.ID, w.Body.String())

	assert.Equal(t, http.StatusForbidden, serveWithAuth(r, "/"+theirs.ID, "Bearer tok-u1").Code)
	assert.Equal(t, http.StatusNotFound, serveWithAuth(r, "/nope", "Bearer tok-u1").Code)
	assert.Equal(t, http.StatusUnauthorized, serveWithAuth(r, "/"+mine.ID, "").Code)
}

func TestRateLimitByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewIPRateLimiter(1, 2, time.Minute)
	defer rl.Stop()
	now := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.GET("/", RateLimitByIP(rl), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, serve(r, "10.0.0.1:2").Code)

	w := serve(r, "10.0.0.1:3")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body["code"])
	assert.Equal(t, "Too many failed attempts. Please try again later.", body["message"])

	assert.Equal(t, http.StatusOK, serve(r, "10.0.0.2:1").Code)

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, serve(r, "10.0.0.1:4").Code)
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	rl := NewIPRateLimiter(10, 5, time.Minute)
	defer rl.Stop()
	now := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.reserve("10.0.0.1")
	now = now.Add(30 * time.Second)
	rl.reserve("10.0.0.2")
	now = now.Add(45 * time.Second)
	rl.sweep()
	assert.Equal(t, 1, rl.tracked())
}

func TestIPRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewIPRateLimiter(10, 5, time.Minute)
	rl.Stop()
	rl.Stop()
}
