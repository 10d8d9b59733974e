package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"blindtest-service/internal/domain"
)

// Client talks to a remote scoring backend over its JSON HTTP API:
//
//	POST {base}/api/game/{id}/answer  {trackId, answerId}
//	POST {base}/api/game/{id}/check   {answers: [{trackId, answerId}]}
//
// Transport failures and non-2xx responses wrap domain.ErrNetworkFailure so
// the session can keep its retry-or-surface contract.
type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) SubmitAnswer(ctx context.Context, gameID string, sub domain.SubmittedAnswer) (domain.AnswerVerdict, error) {
	var verdict domain.AnswerVerdict
	url := fmt.Sprintf("%s/api/game/%s/answer", c.base, gameID)
	if err := c.post(ctx, url, sub, &verdict); err != nil {
		return domain.AnswerVerdict{}, err
	}
	return verdict, nil
}

func (c *Client) CheckGame(ctx context.Context, gameID string, answers []domain.SubmittedAnswer) (domain.GameVerdict, error) {
	var verdict domain.GameVerdict
	url := fmt.Sprintf("%s/api/game/%s/check", c.base, gameID)
	body := struct {
		Answers []domain.SubmittedAnswer `json:"answers"`
	}{Answers: answers}
	if err := c.post(ctx, url, body, &verdict); err != nil {
		return domain.GameVerdict{}, err
	}
	return verdict, nil
}

func (c *Client) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: backend returned %s", domain.ErrNetworkFailure, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrNetworkFailure, err)
	}
	return nil
}
