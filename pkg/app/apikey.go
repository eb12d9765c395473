package app

import (
	"context"
	"errors"

	"tableflip.dev/newday/pkg/apikey"
	"tableflip.dev/newday/pkg/remote"
	"tableflip.dev/newday/pkg/replica"
	"tableflip.dev/newday/pkg/timeutil"
)

// IssueAPIKey creates a new key for the signed in user, replacing any earlier
// one. Only the hash is stored; the key itself is returned once.
func (s *Service) IssueAPIKey(ctx context.Context) (string, error) {
	userID, p, err := s.profile(ctx)
	if err != nil {
		return "", err
	}
	key, hash, err := apikey.Generate()
	if err != nil {
		return "", err
	}
	p.APIKeyHash = hash
	p.HasAPIKey = true
	if err := s.Store.SaveProfile(ctx, userID, p); err != nil {
		return "", err
	}
	return key, nil
}

// RevokeAPIKey removes the stored key hash.
func (s *Service) RevokeAPIKey(ctx context.Context) error {
	userID, p, err := s.profile(ctx)
	if err != nil {
		return err
	}
	p.APIKeyHash = ""
	p.HasAPIKey = false
	return s.Store.SaveProfile(ctx, userID, p)
}

// HasAPIKey reports whether the signed in user has an active key.
func (s *Service) HasAPIKey(ctx context.Context) (bool, error) {
	_, p, err := s.profile(ctx)
	if err != nil {
		return false, err
	}
	return p.HasAPIKey && p.APIKeyHash != "", nil
}

func (s *Service) profile(ctx context.Context) (string, remote.Profile, error) {
	userID := s.Replica.UserID()
	if userID == "" {
		return "", remote.Profile{}, replica.ErrNoSession
	}
	p, err := s.Store.Profile(ctx, userID)
	if errors.Is(err, remote.ErrNotFound) {
		return userID, remote.Profile{CreatedAt: timeutil.Ptr(s.now())}, nil
	}
	return userID, p, err
}
