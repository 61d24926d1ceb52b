package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/config"
)

// CallSubmission is one outbound call request to the telephony provider.
type CallSubmission struct {
	To          string            `json:"to"`
	From        string            `json:"from"`
	ScriptText  string            `json:"script"`
	CallbackURL string            `json:"callback_url"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// SubmitResponse is the provider's acknowledgement of an accepted call.
type SubmitResponse struct {
	CallID string `json:"call_id"`
	Status string `json:"status"`
}

// SMSMessage is one follow-up text message handed to the provider.
type SMSMessage struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

// StatusError is a non-2xx response from the provider.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Message)
}

// CallSubmitter submits outbound calls. The HTTP client below is the real
// implementation; tests substitute their own.
type CallSubmitter interface {
	SubmitCall(ctx context.Context, submission CallSubmission) (*SubmitResponse, error)
}

// MessageSender hands off follow-up text messages.
type MessageSender interface {
	SendMessage(ctx context.Context, msg SMSMessage) error
}

// Client is the HTTP client for the calling provider's REST API. Request and
// response shapes of the provider are absorbed here; callers only see
// CallSubmission/SubmitResponse and StatusError.
type Client struct {
	cfg        config.ProviderConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a provider client from configuration.
func NewClient(cfg config.ProviderConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.SubmitTimeout},
		logger:     logger,
	}
}

// SubmitCall posts one call request to the provider.
func (c *Client) SubmitCall(ctx context.Context, submission CallSubmission) (*SubmitResponse, error) {
	var resp SubmitResponse
	if err := c.post(ctx, "/v1/calls", submission, &resp); err != nil {
		return nil, err
	}
	if resp.CallID == "" {
		return nil, fmt.Errorf("provider response missing call id")
	}
	return &resp, nil
}

// SendMessage posts one SMS follow-up to the provider.
func (c *Client) SendMessage(ctx context.Context, msg SMSMessage) error {
	return c.post(ctx, "/v1/messages", msg, nil)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading provider response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		c.logger.Warn("provider returned non-2xx",
			zap.String("path", path),
			zap.Int("status", httpResp.StatusCode))
		return &StatusError{
			StatusCode: httpResp.StatusCode,
			Message:    errorMessage(raw),
		}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding provider response: %w", err)
		}
	}
	return nil
}

// errorMessage pulls a human-readable message out of an error body, falling
// back to the raw text.
func errorMessage(raw []byte) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	if len(raw) == 0 {
		return "no response body"
	}
	return string(raw)
}
