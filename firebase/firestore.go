package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vnkhanh/daily-pulse/models"
	firestore "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const DefaultDatabaseID = "(default)"

// Firestore ghi AnswerSet qua Firestore REST bằng ID token của người dùng,
// để security rules phía Firebase áp dụng như trên client.
type Firestore struct {
	svc      *firestore.Service
	database string
}

func NewFirestore(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*Firestore, error) {
	if projectID == "" {
		return nil, errors.New("firestore: missing project id")
	}
	if databaseID == "" {
		databaseID = DefaultDatabaseID
	}
	all := append([]option.ClientOption{option.WithoutAuthentication()}, opts...)
	svc, err := firestore.NewService(ctx, all...)
	if err != nil {
		return nil, err
	}
	return &Firestore{
		svc:      svc,
		database: fmt.Sprintf("projects/%s/databases/%s", projectID, databaseID),
	}, nil
}

// WriteAnswerSet ghi đè tài liệu (không updateMask) và để server gán timestamp.
func (f *Firestore) WriteAnswerSet(ctx context.Context, sess *models.Session, set models.AnswerSet) (models.AnswerSet, error) {
	req := &firestore.CommitRequest{
		Writes: []*firestore.Write{{
			Update: &firestore.Document{
				Name: f.documentName(set),
				Fields: map[string]firestore.Value{
					"answers": answersValue(set.Answers),
				},
			},
			UpdateTransforms: []*firestore.FieldTransform{{
				FieldPath:        "timestamp",
				SetToServerValue: "REQUEST_TIME",
			}},
		}},
	}

	call := f.svc.Projects.Databases.Documents.Commit(f.database, req).Context(ctx)
	if sess != nil && sess.IDToken != "" {
		call.Header().Set("Authorization", "Bearer "+sess.IDToken)
	}
	resp, err := call.Do()
	if err != nil {
		return models.AnswerSet{}, classifyAPIError("firestore commit", err)
	}

	set.SavedAt = commitTime(resp)
	return set, nil
}

// Probe liệt kê tối đa một tài liệu của collection "test".
// Bị từ chối bởi rules (403) vẫn nghĩa là Firestore đang bật.
func (f *Firestore) Probe(ctx context.Context) error {
	_, err := f.svc.Projects.Databases.Documents.List(f.database+"/documents", "test").
		PageSize(1).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusUnauthorized) {
		return nil
	}
	return err
}

func (f *Firestore) documentName(set models.AnswerSet) string {
	return f.database + "/documents/" + set.DocumentPath()
}

func answersValue(answers []models.Answer) firestore.Value {
	values := make([]*firestore.Value, 0, len(answers))
	for _, a := range answers {
		var answer firestore.Value
		if a.Kind() == models.KindMultiChoice {
			answer = stringArray(a.Choices())
		} else {
			answer = stringValue(a.Text())
		}
		values = append(values, &firestore.Value{
			MapValue: &firestore.MapValue{
				Fields: map[string]firestore.Value{
					"questionId": stringValue(a.QuestionID()),
					"answer":     answer,
				},
			},
		})
	}
	return firestore.Value{ArrayValue: &firestore.ArrayValue{Values: values}}
}

func stringValue(s string) firestore.Value {
	return firestore.Value{StringValue: s, ForceSendFields: []string{"StringValue"}}
}

func stringArray(items []string) firestore.Value {
	values := make([]*firestore.Value, 0, len(items))
	for _, it := range items {
		v := stringValue(it)
		values = append(values, &v)
	}
	return firestore.Value{ArrayValue: &firestore.ArrayValue{Values: values}}
}

func commitTime(resp *firestore.CommitResponse) time.Time {
	if len(resp.WriteResults) > 0 {
		if tr := resp.WriteResults[0].TransformResults; len(tr) > 0 && tr[0] != nil {
			if t, err := time.Parse(time.RFC3339Nano, tr[0].TimestampValue); err == nil {
				return t
			}
		}
	}
	t, _ := time.Parse(time.RFC3339Nano, resp.CommitTime)
	return t
}

func classifyAPIError(op string, err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch {
	case apiErr.Code == http.StatusForbidden:
		return fmt.Errorf("%s: %w: %v", op, models.ErrPermissionDenied, err)
	case apiErr.Code == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w: %v", op, models.ErrUnauthenticated, err)
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w: %v", op, models.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// Check dùng cho /health khi kho tài liệu là Firestore.
func (f *Firestore) Check(ctx context.Context) error {
	return f.Probe(ctx)
}
