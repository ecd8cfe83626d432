package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
)

func (s *Service) SignIn(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return LoginResponse{}, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	session, err := s.identity.SignIn(ctx, email, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}
	profile, err := s.loadProfile(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// identity without profile cannot use the system
			_ = s.identity.SignOut(ctx, session.Token)
			return LoginResponse{}, fmt.Errorf("%w: profile not provisioned", domain.ErrForbidden)
		}
		return LoginResponse{}, err
	}
	return LoginResponse{Token: session.Token, ExpiresAt: session.ExpiresAt, Profile: profile}, nil
}

// Authenticate resolves a bearer token to the caller's profile.
func (s *Service) Authenticate(ctx context.Context, token string) (ports.Session, domain.UserProfile, error) {
	session, err := s.identity.GetSession(ctx, token)
	if err != nil {
		return ports.Session{}, domain.UserProfile{}, domain.ErrUnauthorized
	}
	profile, err := s.loadProfile(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ports.Session{}, domain.UserProfile{}, domain.ErrUnauthorized
		}
		return ports.Session{}, domain.UserProfile{}, err
	}
	return session, profile, nil
}

func (s *Service) GetSession(ctx context.Context, token string) (SessionResponse, error) {
	session, profile, err := s.Authenticate(ctx, token)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{UserID: session.UserID, ExpiresAt: session.ExpiresAt, Profile: profile}, nil
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.identity.SignOut(ctx, token)
}

func (s *Service) UpdateOwnPassword(ctx context.Context, actor domain.UserProfile, req UpdatePasswordRequest) error {
	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return err
	}
	return s.identity.UpdatePassword(ctx, actor.ID, req.NewPassword)
}

func profileCacheKey(userID string) string {
	return "inspection:profile:" + userID
}

func (s *Service) loadProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, profileCacheKey(userID)); err == nil && raw != "" {
			var cached domain.UserProfile
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if s.cache != nil {
		if raw, marshalErr := json.Marshal(profile); marshalErr == nil {
			_ = s.cache.Set(ctx, profileCacheKey(userID), string(raw), s.cfg.ProfileCacheTTL)
		}
	}
	return profile, nil
}

func (s *Service) invalidateProfile(ctx context.Context, userID string) {
	if s.cache == nil || userID == "" {
		return
	}
	_ = s.cache.Delete(ctx, profileCacheKey(userID))
}
