package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/vnkhanh/daily-pulse/models"
)

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: "5432", User: "pulse", Password: "pw", Name: "daily"}
	assert.Equal(t, "host=db user=pulse password=pw dbname=daily port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())

	cfg.TimeZone = "Asia/Ho_Chi_Minh"
	assert.Contains(t, cfg.DSN(), "TimeZone=Asia/Ho_Chi_Minh")
}

func TestAnswerSetRecord_TableName(t *testing.T) {
	assert.Equal(t, "answer_sets", AnswerSetRecord{}.TableName())
}

func TestClassifyPgError(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"42501", models.ErrPermissionDenied},
		{"28000", models.ErrUnauthenticated},
		{"28P01", models.ErrUnauthenticated},
		{"53300", models.ErrUnavailable},
		{"57P01", models.ErrUnavailable},
		{"57P03", models.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := classifyPgError(&pgconn.PgError{Severity: "ERROR", Code: tt.code, Message: "x"})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	other := &pgconn.PgError{Severity: "ERROR", Code: "23505", Message: "duplicate"}
	assert.Same(t, other, classifyPgError(other))

	plain := errors.New("boom")
	assert.Equal(t, plain, classifyPgError(plain))
}
