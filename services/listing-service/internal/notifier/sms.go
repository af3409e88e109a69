package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultSMSBaseURL = "https://www.smslocal.com/dev/bulkV2"
	defaultSMSTimeout = 15 * time.Second
)

// SMSConfig holds the SMS Local API settings. An empty APIKey disables SMS delivery.
type SMSConfig struct {
	APIKey  string `env:"API_KEY"`
	BaseURL string `env:"BASE_URL" envDefault:"https://www.smslocal.com/dev/bulkV2"`
	Sender  string `env:"SENDER"`
}

// Enabled reports whether an API key was configured.
func (c SMSConfig) Enabled() bool {
	return c.APIKey != ""
}

// SMSLocalSender delivers verification codes through the SMS Local OTP route.
type SMSLocalSender struct {
	APIKey     string
	BaseURL    string
	Sender     string
	HTTPClient *http.Client
}

func NewSMSLocalSender(cfg SMSConfig) *SMSLocalSender {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultSMSBaseURL
	}

	return &SMSLocalSender{
		APIKey:     cfg.APIKey,
		BaseURL:    baseURL,
		Sender:     cfg.Sender,
		HTTPClient: &http.Client{Timeout: defaultSMSTimeout},
	}
}

// SendVerificationCode posts the code to the SMS gateway. The code itself is never logged.
func (s *SMSLocalSender) SendVerificationCode(ctx context.Context, phone, code string) error {
	if s.APIKey == "" {
		return fmt.Errorf("sms: API key not configured")
	}

	body := map[string]any{
		"route":     "otp",
		"numbers":   digitsOnly(phone),
		"variables": code,
	}
	if s.Sender != "" {
		body["sender_id"] = s.Sender
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.APIKey)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sms: request failed status=%d body=%s", resp.StatusCode, string(b))
	}

	return nil
}

func digitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
