// Package gateway wraps the PayChangu verification API. Raw gateway
// payloads never leave this package; callers only see VerificationResult.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Outcome is the normalized result of one verification attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomePending Outcome = "pending"
)

// VerificationResult is the strict, tagged view of a gateway verification
// response. A transport error, a non-200 response, or a malformed body all
// normalize to OutcomeFailed with a reason; a verification failure is never
// a payment success.
type VerificationResult struct {
	Outcome   Outcome
	Amount    float64
	RawStatus string
	Reason    string
}

// Verifier is the outbound verification dependency of the reconciliation
// flow. Satisfied by *Client in production and by fakes in tests.
type Verifier interface {
	Verify(ctx context.Context, txRef string) VerificationResult
}

// Client calls the PayChangu verify-payment endpoint. It performs exactly
// one blocking call per Verify; retry policy belongs to the caller.
type Client struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
}

// NewClient returns a Client with a bounded request timeout.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// verifyResponse mirrors the provider's wire format. Success requires both
// the outer and the inner status to be "success".
type verifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string  `json:"status"`
		Amount float64 `json:"amount"`
	} `json:"data"`
}

// Verify performs a single bearer-authenticated verification call for the
// given transaction reference.
func (c *Client) Verify(ctx context.Context, txRef string) VerificationResult {
	url := fmt.Sprintf("%s/verify-payment/%s", c.BaseURL, txRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return failed("", fmt.Sprintf("failed to build verification request: %v", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return failed("", fmt.Sprintf("failed to verify payment with PayChangu API: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return failed("", fmt.Sprintf("failed to read verification response: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		return failed("", fmt.Sprintf("verification endpoint returned HTTP %d", resp.StatusCode))
	}

	var parsed verifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return failed("", fmt.Sprintf("malformed verification response: %v", err))
	}

	if parsed.Status == "success" && parsed.Data.Status == "success" {
		return VerificationResult{
			Outcome:   OutcomeSuccess,
			Amount:    parsed.Data.Amount,
			RawStatus: parsed.Data.Status,
		}
	}

	if parsed.Data.Status == "pending" {
		return VerificationResult{
			Outcome:   OutcomePending,
			Amount:    parsed.Data.Amount,
			RawStatus: parsed.Data.Status,
			Reason:    "payment still pending at gateway",
		}
	}

	reason := parsed.Message
	if reason == "" {
		reason = fmt.Sprintf("payment not successful: outer status %q, inner status %q", parsed.Status, parsed.Data.Status)
	}
	return VerificationResult{
		Outcome:   OutcomeFailed,
		Amount:    parsed.Data.Amount,
		RawStatus: parsed.Data.Status,
		Reason:    reason,
	}
}

func failed(rawStatus, reason string) VerificationResult {
	return VerificationResult{Outcome: OutcomeFailed, RawStatus: rawStatus, Reason: reason}
}
