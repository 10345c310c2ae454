package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/caretrack/caretrack_backend/config"
)

func TestNewFromConfig_Disabled(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: false,
	}

	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if client.IsEnabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestNewFromConfig_EnabledWithoutAPIKey(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:     "",
			SecretKey:  "",
			LineNumber: "30007732",
		},
	}

	_, err := NewFromConfig(cfg)
	if err == nil {
		t.Error("Expected error when API key is missing")
	}
}

func TestNewFromConfig_EnabledWithAPIKey(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:     "test-api-key",
			SecretKey:  "test-secret-key",
			LineNumber: "30007732",
		},
	}

	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if !client.IsEnabled() {
		t.Error("Expected client to be enabled")
	}
}

func TestNewFromConfig_InvalidLineNumber(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:     "test-api-key",
			SecretKey:  "test-secret-key",
			LineNumber: "not-a-number",
		},
	}

	_, err := NewFromConfig(cfg)
	if err == nil {
		t.Error("Expected error for invalid line number")
	}
}

func TestSendMessage_DisabledClient(t *testing.T) {
	client := &Client{enabled: false}

	err := client.SendMessage(context.Background(), "+989121234567", "hello")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled for disabled client, got: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	client := &Client{enabled: true, defaultRegion: "IR"}

	tests := []struct {
		name        string
		phone       string
		want        string
		expectError bool
	}{
		{
			name:  "already E.164",
			phone: "+989121234567",
			want:  "+989121234567",
		},
		{
			name:  "national format",
			phone: "09121234567",
			want:  "+989121234567",
		},
		{
			name:        "empty phone number",
			phone:       "",
			expectError: true,
		},
		{
			name:        "garbage",
			phone:       "not-a-phone",
			expectError: true,
		},
		{
			name:        "too short",
			phone:       "12345",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.Normalize(tt.phone)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) failed: %v", tt.phone, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}

func TestIsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{"enabled client", true},
		{"disabled client", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &Client{enabled: tt.enabled}
			if client.IsEnabled() != tt.enabled {
				t.Errorf("Expected IsEnabled() = %v, got %v", tt.enabled, client.IsEnabled())
			}
		})
	}
}
