// Package onboarding tracks whether an owner has finished the onboarding
// flow. The flag lives in a per-owner key-value store.
package onboarding

import (
	"context"
	"fmt"
	"strconv"
)

const completedKey = "onboarding_completed"

// Store is a per-owner key-value store.
type Store interface {
	GetSetting(ctx context.Context, ownerID, key string) (value string, ok bool, err error)
	SetSetting(ctx context.Context, ownerID, key, value string) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Completed reports whether the owner finished onboarding. Owners that
// never touched the flag have not.
func (s *Service) Completed(ctx context.Context, ownerID string) (bool, error) {
	value, ok, err := s.store.GetSetting(ctx, ownerID, completedKey)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	done, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("onboarding flag for %s: %w", ownerID, err)
	}
	return done, nil
}

func (s *Service) SetCompleted(ctx context.Context, ownerID string, done bool) error {
	return s.store.SetSetting(ctx, ownerID, completedKey, strconv.FormatBool(done))
}
