package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/vnkhanh/daily-pulse/models"
)

// DefaultURL là nguồn câu hỏi cố định của ứng dụng.
const DefaultURL = "https://dummyjson.com/c/a67f-05a6-4cbd-9a19"

const maxBodyBytes = 1 << 20

type Gateway struct {
	url    string
	client *http.Client
}

func NewGateway(url string, client *http.Client) *Gateway {
	if url == "" {
		url = DefaultURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{url: url, client: client}
}

type wireQuestion struct {
	ID      models.QuestionID `json:"id"`
	Prompt  string            `json:"question"`
	Type    string            `json:"type"`
	Options []string          `json:"options"`
}

type wireBody struct {
	Questions *[]wireQuestion `json:"questions"`
}

// FetchQuestions gửi đúng một GET tới nguồn câu hỏi, không tự retry.
// Mọi lỗi trả về đều là *models.FetchError.
func (g *Gateway) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return nil, models.NewFetchError(models.FetchNetworkFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", g.url).Msg("fetch questions failed")
		return nil, models.NewFetchError(models.FetchNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		err := fmt.Errorf("question source responded %d", resp.StatusCode)
		log.Warn().Err(err).Str("url", g.url).Msg("fetch questions failed")
		return nil, models.NewFetchError(models.FetchNetworkFailure, err)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, models.NewFetchError(models.FetchNetworkFailure, err)
	}

	out, err := decode(raw)
	if err != nil {
		log.Warn().Err(err).Str("url", g.url).Msg("question payload rejected")
		return nil, models.NewFetchError(models.FetchMalformedResponse, err)
	}
	return out, nil
}

func decode(raw []byte) ([]models.Question, error) {
	var body wireBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	if body.Questions == nil {
		return nil, errors.New("missing questions field")
	}

	seen := make(map[string]bool, len(*body.Questions))
	out := make([]models.Question, 0, len(*body.Questions))
	for i, w := range *body.Questions {
		id := string(w.ID)
		if id == "" {
			return nil, fmt.Errorf("question %d has no id", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate question id %q", id)
		}
		seen[id] = true

		kind, err := models.ParseQuestionKind(w.Type)
		if err != nil {
			return nil, fmt.Errorf("question %q: %w", id, err)
		}

		q := models.Question{ID: id, Prompt: w.Prompt, Kind: kind}
		if kind.IsChoice() {
			if len(w.Options) == 0 {
				return nil, fmt.Errorf("question %q: choice question without options", id)
			}
			q.Options = append([]string(nil), w.Options...)
		}
		out = append(out, q)
	}
	return out, nil
}
