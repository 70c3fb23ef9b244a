// Package sms delivers text messages through a pluggable provider.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	ProviderWebhook = "sms-webhook"
	ProviderNoop    = "sms-noop"
)

var ErrNotConfigured = errors.New("sms webhook url not configured")

type Sender interface {
	Send(ctx context.Context, to string, body string) error
	ProviderID() string
}

// message is the JSON body posted to the webhook.
type message struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type WebhookConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Webhook posts each message to an HTTP endpoint owned by an SMS gateway.
type Webhook struct {
	url    string
	token  string
	client *http.Client
}

func NewWebhook(cfg WebhookConfig) *Webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Webhook{
		url:   strings.TrimSpace(cfg.URL),
		token: strings.TrimSpace(cfg.Token),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (s *Webhook) ProviderID() string { return ProviderWebhook }

func (s *Webhook) Send(ctx context.Context, to string, body string) error {
	if s.url == "" {
		return ErrNotConfigured
	}
	raw, err := json.Marshal(message{To: to, Body: body})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms webhook: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("sms webhook returned %d", resp.StatusCode)
	}
	return nil
}

// Noop accepts every message. Used when no SMS gateway is configured.
type Noop struct{}

func (Noop) ProviderID() string { return ProviderNoop }

func (Noop) Send(context.Context, string, string) error { return nil }
