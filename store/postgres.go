package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vnkhanh/daily-pulse/models"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnswerSetRecord là một dòng answer_sets, khóa chính (owner_id, date_key).
type AnswerSetRecord struct {
	OwnerID string         `gorm:"column:owner_id;primaryKey;size:128"`
	DateKey string         `gorm:"column:date_key;primaryKey;size:10"`
	Answers datatypes.JSON `gorm:"column:answers;type:jsonb;not null"`
	SavedAt time.Time      `gorm:"column:saved_at;not null;default:now()"`
}

func (AnswerSetRecord) TableName() string {
	return "answer_sets"
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	TimeZone string
}

func (c PostgresConfig) DSN() string {
	tz := c.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, tz)
}

type Postgres struct {
	db *gorm.DB
}

// OpenPostgres kết nối PostgreSQL và migrate bảng answer_sets.
func OpenPostgres(cfg PostgresConfig) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return NewPostgres(db)
}

func NewPostgres(db *gorm.DB) (*Postgres, error) {
	if err := db.AutoMigrate(&AnswerSetRecord{}); err != nil {
		return nil, fmt.Errorf("migrate answer_sets: %w", err)
	}
	return &Postgres{db: db}, nil
}

// WriteAnswerSet upsert theo (owner_id, date_key): ghi đè toàn bộ answers, saved_at = now() của DB.
func (p *Postgres) WriteAnswerSet(ctx context.Context, _ *models.Session, set models.AnswerSet) (models.AnswerSet, error) {
	payload, err := json.Marshal(set.Answers)
	if err != nil {
		return models.AnswerSet{}, err
	}
	rec := AnswerSetRecord{
		OwnerID: set.OwnerID,
		DateKey: set.DateKey,
		Answers: datatypes.JSON(payload),
	}

	err = p.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "owner_id"}, {Name: "date_key"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"answers":  rec.Answers,
					"saved_at": gorm.Expr("now()"),
				}),
			},
			clause.Returning{Columns: []clause.Column{{Name: "saved_at"}}},
		).
		Create(&rec).Error
	if err != nil {
		return models.AnswerSet{}, classifyPgError(err)
	}

	set.SavedAt = rec.SavedAt
	return set, nil
}

func (p *Postgres) Check(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501":
			return fmt.Errorf("%w: %v", models.ErrPermissionDenied, err)
		case "28000", "28P01":
			return fmt.Errorf("%w: %v", models.ErrUnauthenticated, err)
		case "53300", "57P01", "57P03":
			return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
		}
		return err
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	return err
}
