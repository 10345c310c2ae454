// Package sms sends text messages via sms.ir.
package sms

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/arsmn/go-smsir/smsir"
	"github.com/nyaruka/phonenumbers"

	"github.com/caretrack/caretrack_backend/config"
)

// ErrDisabled is returned when SMS delivery is turned off in config.
var ErrDisabled = errors.New("sms: disabled")

// Client provides SMS sending functionality via sms.ir.
type Client struct {
	client        *smsir.Client
	lineNumber    int64
	defaultRegion string
	enabled       bool
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client whose sends fail with ErrDisabled.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	line, err := strconv.ParseInt(cfg.SMSIR.LineNumber, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid sms.ir line number %q: %w", cfg.SMSIR.LineNumber, err)
	}

	client := smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey)

	return &Client{
		client:        client,
		lineNumber:    line,
		defaultRegion: cfg.DefaultRegion,
		enabled:       true,
	}, nil
}

// SendMessage sends a plain text message to one phone number. The number is
// validated and normalized to E.164 before it reaches the provider.
// If SMS is disabled, ErrDisabled is returned without contacting the provider.
func (c *Client) SendMessage(ctx context.Context, phoneNumber, text string) error {
	if !c.enabled {
		return ErrDisabled
	}

	if text == "" {
		return fmt.Errorf("message text is required")
	}

	normalized, err := c.Normalize(phoneNumber)
	if err != nil {
		return err
	}

	line := strconv.FormatInt(c.lineNumber, 10)
	req := &smsir.MessageSendRequest{
		LineNumber:    &line,
		Messages:      []string{text},
		MobileNumbers: []string{normalized},
	}

	_, err = c.client.SendReceive.SendMessage(ctx, req)
	if err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}

	return nil
}

// Normalize parses a phone number against the configured default region and
// returns it in E.164 format, or an error when it is not a valid number.
func (c *Client) Normalize(phoneNumber string) (string, error) {
	if phoneNumber == "" {
		return "", fmt.Errorf("phone number is required")
	}

	region := c.defaultRegion
	if region == "" {
		region = "IR"
	}

	num, err := phonenumbers.Parse(phoneNumber, region)
	if err != nil {
		return "", fmt.Errorf("invalid phone number %q: %w", phoneNumber, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number %q", phoneNumber)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
