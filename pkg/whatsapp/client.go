package whatsapp

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
	"unicode"

	"github.com/angelmondragon/salonbook-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

const (
	defaultTimeout              = 10 * time.Second
	sendPath                    = "/send/message"
	responseBodyReadLimit int64 = 1024
)

var errBaseURLRequired = errors.New("whatsapp gateway base url is required")

// Sender is what the notification worker depends on.
type Sender interface {
	Send(ctx context.Context, phone, message string) (MessageReceipt, error)
}

// Client posts text messages to the WhatsApp HTTP gateway.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	username       string
	password       string
	defaultCountry string
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithBasicAuth sets gateway credentials. Empty values disable auth.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

func WithDefaultCountry(code string) Option {
	return func(c *Client) {
		c.defaultCountry = strings.TrimPrefix(strings.TrimSpace(code), "+")
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	client := &Client{
		baseURL:        trimmed,
		httpClient:     &http.Client{Timeout: defaultTimeout},
		defaultCountry: "55",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return client, nil
}

// NewFromConfig wires the gateway client from the SALONBOOK_WHATSAPP_* settings.
func NewFromConfig(cfg config.WhatsAppConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClient(cfg.BaseURL,
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithBasicAuth(cfg.Username, cfg.Password),
		WithDefaultCountry(cfg.DefaultCountry),
	)
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// MessageReceipt is the gateway's acknowledgement.
type MessageReceipt struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Results struct {
		MessageID string `json:"message_id"`
		Status    string `json:"status"`
	} `json:"results"`
}

// Send delivers message to phone. Transport failures and 5xx answers are
// CodeDependency so consumers can retry. 4xx answers are CodeValidation.
func (c *Client) Send(ctx context.Context, phone, message string) (MessageReceipt, error) {
	if c == nil {
		return MessageReceipt{}, pkgerrors.New(pkgerrors.CodeDependency, "whatsapp client not configured")
	}
	normalized, err := NormalizePhone(phone, c.defaultCountry)
	if err != nil {
		return MessageReceipt{}, err
	}
	if strings.TrimSpace(message) == "" {
		return MessageReceipt{}, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}

	payload, err := json.Marshal(sendRequest{Phone: normalized, Message: message})
	if err != nil {
		return MessageReceipt{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal whatsapp message")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(payload))
	if err != nil {
		return MessageReceipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build whatsapp request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return MessageReceipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send whatsapp message")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		code := pkgerrors.CodeDependency
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			code = pkgerrors.CodeValidation
		}
		return MessageReceipt{}, pkgerrors.New(code, fmt.Sprintf("whatsapp gateway returned %d", resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode, "body": strings.TrimSpace(string(body))})
	}

	var receipt MessageReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil && !errors.Is(err, io.EOF) {
		return MessageReceipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode whatsapp response")
	}
	return receipt, nil
}

// NormalizePhone strips formatting and prefixes the country code to bare
// national numbers. "(11) 98765-4321" becomes "5511987654321".
func NormalizePhone(raw, defaultCountry string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	international := strings.HasPrefix(trimmed, "+")
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, trimmed)
	digits = strings.TrimLeft(digits, "0")

	if len(digits) < 8 || len(digits) > 15 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid phone number").
			WithDetails(map[string]any{"phone": raw})
	}
	// National numbers have at most 11 digits. Longer ones already carry a
	// country code.
	if !international && defaultCountry != "" && len(digits) <= 11 {
		digits = defaultCountry + digits
	}
	return digits, nil
}
