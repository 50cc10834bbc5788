package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/frontdesk-ai/platform/pkg/logging"
)

// SMSSender sends SMS messages to business operators.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// HTTPSMSSender posts messages to an SMS provider's REST endpoint.
type HTTPSMSSender struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	from       string
	logger     *logging.Logger
}

// HTTPSMSConfig holds configuration for the HTTP SMS provider.
type HTTPSMSConfig struct {
	Endpoint string
	APIKey   string
	From     string
}

// NewHTTPSMSSender creates an SMS sender for a REST provider. Returns nil
// when no API key is configured.
func NewHTTPSMSSender(cfg HTTPSMSConfig, httpClient *http.Client, logger *logging.Logger) *HTTPSMSSender {
	if cfg.APIKey == "" {
		return nil
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HTTPSMSSender{
		httpClient: httpClient,
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		logger:     logger,
	}
}

type smsPayload struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

// SendSMS posts one message to the provider.
func (s *HTTPSMSSender) SendSMS(ctx context.Context, to, body string) error {
	raw, err := sonic.Marshal(smsPayload{To: to, From: s.from, Body: body})
	if err != nil {
		return fmt.Errorf("notify: marshal sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("notify: build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("sms send failed", "error", err, "to", to)
		return fmt.Errorf("notify: sms send failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		s.logger.Error("sms provider returned error status", "status", resp.StatusCode, "to", to)
		return fmt.Errorf("notify: sms provider returned status %d", resp.StatusCode)
	}

	s.logger.Info("sms sent", "to", to, "status", resp.StatusCode)
	return nil
}

// StubSMSSender is a no-op sender for testing.
type StubSMSSender struct {
	logger *logging.Logger
}

// NewStubSMSSender creates a stub SMS sender.
func NewStubSMSSender(logger *logging.Logger) *StubSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSMSSender{logger: logger}
}

// SendSMS logs but doesn't send.
func (s *StubSMSSender) SendSMS(ctx context.Context, to, body string) error {
	s.logger.Info("stub SMS sender: would send", "to", to, "body_preview", truncate(body, 50))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ SMSSender = (*HTTPSMSSender)(nil)
var _ SMSSender = (*StubSMSSender)(nil)
