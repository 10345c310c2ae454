// Package device manages push notification device token registration.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack_backend/internal/model"
	"github.com/caretrack/caretrack_backend/internal/store"
)

type RegisterRequest struct {
	UserID     uuid.UUID
	Token      string
	DeviceType string
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*model.DeviceToken, error)
	List(ctx context.Context, userID uuid.UUID) ([]*model.DeviceToken, error)
	// Get returns one of the user's tokens, active or not.
	Get(ctx context.Context, userID uuid.UUID, token string) (*model.DeviceToken, error)
	Deactivate(ctx context.Context, userID uuid.UUID, token string) error
}

type deviceService struct {
	devices store.DeviceTokenStore
}

func New(devices store.DeviceTokenStore) Service {
	return &deviceService{devices: devices}
}

func (s *deviceService) Register(ctx context.Context, req RegisterRequest) (*model.DeviceToken, error) {
	if req.Token == "" {
		return nil, ErrTokenRequired
	}
	if !model.ValidDeviceType(req.DeviceType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDeviceType, req.DeviceType)
	}

	d, err := s.devices.Register(ctx, req.UserID, req.Token, model.DeviceType(req.DeviceType))
	if err != nil {
		return nil, fmt.Errorf("register device: %w", err)
	}
	return d, nil
}

func (s *deviceService) List(ctx context.Context, userID uuid.UUID) ([]*model.DeviceToken, error) {
	devices, err := s.devices.ListByUser(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

func (s *deviceService) Get(ctx context.Context, userID uuid.UUID, token string) (*model.DeviceToken, error) {
	d, err := s.devices.GetByToken(ctx, userID, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}
	return d, nil
}

func (s *deviceService) Deactivate(ctx context.Context, userID uuid.UUID, token string) error {
	ok, err := s.devices.Deactivate(ctx, userID, token)
	if err != nil {
		return fmt.Errorf("deactivate device: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
