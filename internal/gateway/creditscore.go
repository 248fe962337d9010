// Package gateway wraps the external credit-scoring service. The engine
// treats it as an unreliable network dependency: calls carry timeouts and the
// caller retries with backoff.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dayumstir/bnpl-ledger/internal/domain"
)

type CreditScoreClient struct {
	baseURL string
	client  *http.Client
}

func NewCreditScoreClient(baseURL string, timeout time.Duration) *CreditScoreClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &CreditScoreClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type ratingResponse struct {
	CreditRating decimal.Decimal `json:"credit_rating"`
}

// FirstRating submits onboarding evidence as multipart form fields and
// returns the initial rating.
func (c *CreditScoreClient) FirstRating(ctx context.Context, customerID string, evidence map[string]string) (decimal.Decimal, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("customer_id", customerID); err != nil {
		return decimal.Zero, fmt.Errorf("write customer_id field: %w", err)
	}
	for field, value := range evidence {
		if err := w.WriteField(field, value); err != nil {
			return decimal.Zero, fmt.Errorf("write %s field: %w", field, err)
		}
	}
	if err := w.Close(); err != nil {
		return decimal.Zero, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/get-first-credit-rating", &body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.send(req)
}

// UpdateRating asks the scoring service to recompute an existing customer's
// rating.
func (c *CreditScoreClient) UpdateRating(ctx context.Context, customerID string) (decimal.Decimal, error) {
	payload, err := json.Marshal(map[string]string{"customer_id": customerID})
	if err != nil {
		return decimal.Zero, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/update-credit-rating", bytes.NewReader(payload))
	if err != nil {
		return decimal.Zero, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req)
}

func (c *CreditScoreClient) send(req *http.Request) (decimal.Decimal, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, domain.Dependency("credit scoring service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, domain.Dependency(
			fmt.Sprintf("credit scoring service returned %d", resp.StatusCode),
			fmt.Errorf("%s", body))
	}

	var out ratingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return decimal.Zero, domain.Dependency("decode credit rating response", err)
	}
	return out.CreditRating, nil
}
