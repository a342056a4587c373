// Package payment talks to the top-up provider and verifies its callbacks.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNotConfigured    = errors.New("payment provider is not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// SignatureHeader carries hex(HMAC-SHA256(body, secret)) on provider callbacks
const SignatureHeader = "X-Signature"

// Checkout is what the provider returns for a new payment
type Checkout struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

// InitiateRequest is the body sent to POST {base}/payments
type InitiateRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url"`
}

// Webhook is the callback payload posted by the provider
type Webhook struct {
	Token       string `json:"token"`
	Status      string `json:"status"`
	ProviderRef string `json:"provider_ref"`
	Amount      int64  `json:"amount"`
}

// Provider starts a hosted checkout
type Provider interface {
	Initiate(ctx context.Context, req InitiateRequest) (*Checkout, error)
}

// Client is the HTTP implementation of Provider
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Initiate(ctx context.Context, in InitiateRequest) (*Checkout, error) {
	if c.BaseURL == "" {
		return nil, ErrNotConfigured
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call payment provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("payment provider returned status %d: %s", resp.StatusCode, string(msg))
	}

	var out Checkout
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode payment provider response: %w", err)
	}
	if out.RedirectURL == "" {
		return nil, errors.New("payment provider returned no redirect url")
	}
	return &out, nil
}

// Sign computes the signature the provider attaches to a callback body
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a callback signature in constant time
func Verify(body []byte, signature, secret string) error {
	if secret == "" {
		return ErrNotConfigured
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return ErrInvalidSignature
	}
	want, _ := hex.DecodeString(Sign(body, secret))
	if !hmac.Equal(got, want) {
		return ErrInvalidSignature
	}
	return nil
}
