// Package push provides a minimal HTTP client for an FCM-compatible push
// notification gateway.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/caretrack/caretrack_backend/config"
)

var (
	// ErrDisabled is returned when push delivery is turned off in config.
	ErrDisabled = errors.New("push: disabled")
	// ErrUnregistered means the gateway no longer recognises the device
	// token. The token should be deactivated and never retried.
	ErrUnregistered = errors.New("push: token not registered")
	// ErrSendFailed covers gateway-reported delivery failures other than an
	// unregistered token.
	ErrSendFailed = errors.New("push: send failed")
	// ErrUnexpectedResponse means the gateway answered with something the
	// client cannot interpret.
	ErrUnexpectedResponse = errors.New("push: unexpected response from gateway")
)

// Client is a lightweight push gateway HTTP client.
type Client struct {
	enabled    bool
	serverKey  string
	gatewayURL string
	httpClient *http.Client
}

// Receipt is the gateway's answer for one accepted message.
type Receipt struct {
	MessageID string
}

func New(cfg config.PushConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		enabled:    cfg.Enabled,
		serverKey:  cfg.ServerKey,
		gatewayURL: cfg.GatewayURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) IsEnabled() bool { return c.enabled }

// Send pushes one notification to a single device token. data rides along as
// the message payload the client app receives.
func (c *Client) Send(ctx context.Context, token, title, body string, data map[string]any) (*Receipt, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrSendFailed)
	}

	reqBody := map[string]any{
		"to": token,
		"notification": map[string]any{
			"title": title,
			"body":  body,
		},
		"data": data,
	}

	var resp struct {
		Success int `json:"success"`
		Failure int `json:"failure"`
		Results []struct {
			MessageID string `json:"message_id"`
			Error     string `json:"error"`
		} `json:"results"`
	}

	if err := c.post(ctx, reqBody, &resp); err != nil {
		return nil, fmt.Errorf("push send: %w", err)
	}

	if len(resp.Results) == 0 {
		return nil, ErrUnexpectedResponse
	}
	r := resp.Results[0]
	switch r.Error {
	case "":
		return &Receipt{MessageID: r.MessageID}, nil
	case "NotRegistered", "InvalidRegistration":
		return nil, ErrUnregistered
	default:
		return nil, fmt.Errorf("%w: %s", ErrSendFailed, r.Error)
	}
}

func (c *Client) post(ctx context.Context, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrUnexpectedResponse, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
