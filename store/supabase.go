package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	storage "github.com/supabase-community/storage-go"

	"github.com/vnkhanh/daily-pulse/models"
)

const DefaultBucket = "daily_pulse"

// Supabase lưu mỗi AnswerSet thành object users/{ownerId}/answers/{dateKey}.json, upsert = ghi đè.
type Supabase struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

func NewSupabase(url, key, bucket string) *Supabase {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &Supabase{
		client: storage.NewClient(url+"/storage/v1", key, nil),
		bucket: bucket,
		now:    time.Now,
	}
}

type supabaseDocument struct {
	Answers   []models.Answer `json:"answers"`
	Timestamp time.Time       `json:"timestamp"`
}

func (s *Supabase) ObjectPath(set models.AnswerSet) string {
	return set.DocumentPath() + ".json"
}

func (s *Supabase) WriteAnswerSet(ctx context.Context, _ *models.Session, set models.AnswerSet) (models.AnswerSet, error) {
	if err := ctx.Err(); err != nil {
		return models.AnswerSet{}, err
	}
	objectPath := s.ObjectPath(set)
	body, err := json.Marshal(supabaseDocument{Answers: set.Answers, Timestamp: s.now().UTC()})
	if err != nil {
		return models.AnswerSet{}, err
	}

	contentType := "application/json"
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(body), options); err != nil {
		return models.AnswerSet{}, classifyStorageError("supabase upload "+objectPath, err)
	}

	set.SavedAt = s.updatedAt(objectPath)
	return set, nil
}

// updatedAt đọc updated_at của object vừa ghi; lỗi thì dùng giờ máy.
func (s *Supabase) updatedAt(objectPath string) time.Time {
	dir, name := path.Split(objectPath)
	files, err := s.client.ListFiles(s.bucket, strings.TrimSuffix(dir, "/"), storage.FileSearchOptions{})
	if err == nil {
		for _, f := range files {
			if f.Name != name {
				continue
			}
			if ts, perr := time.Parse(time.RFC3339Nano, f.UpdatedAt); perr == nil {
				return ts.UTC()
			}
		}
	}
	log.Warn().Err(err).Str("object", objectPath).Msg("supabase updated_at unavailable, using local clock")
	return s.now().UTC()
}

// classifyStorageError đổi lỗi storage-go sang lỗi chuẩn của kho.
// storage-go chỉ giữ "status" và "message" trong body lỗi.
func classifyStorageError(op string, err error) error {
	var se *storage.StorageError
	if !errors.As(err, &se) {
		return fmt.Errorf("%s: %w", op, err)
	}
	msg := strings.ToLower(se.Message)
	switch {
	case se.Status == http.StatusForbidden, strings.Contains(msg, "row-level security"):
		return fmt.Errorf("%s: %w: %v", op, models.ErrPermissionDenied, err)
	case se.Status == http.StatusUnauthorized, strings.Contains(msg, "jwt"):
		return fmt.Errorf("%s: %w: %v", op, models.ErrUnauthenticated, err)
	case se.Status == http.StatusTooManyRequests, se.Status >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w: %v", op, models.ErrUnavailable, err)
	case se.Status == 0 && se.Message == "":
		// body không phải JSON của storage API (proxy, gateway lỗi)
		return fmt.Errorf("%s: %w: %v", op, models.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *Supabase) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.GetBucket(s.bucket)
	return err
}
