package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
)

func (s *Service) ListProfiles(ctx context.Context, actor domain.UserProfile) ([]domain.UserProfile, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.profiles.List(ctx)
}

// CreateAccount registers the identity first, then the profile. A profile
// failure removes the identity again.
func (s *Service) CreateAccount(ctx context.Context, actor domain.UserProfile, req CreateAccountRequest) (domain.UserProfile, error) {
	if err := s.requireAdmin(actor); err != nil {
		return domain.UserProfile{}, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := domain.ValidateEmail(email); err != nil {
		return domain.UserProfile{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return domain.UserProfile{}, err
	}
	role, err := s.resolveRole(req.Role)
	if err != nil {
		return domain.UserProfile{}, err
	}
	projectIDs, err := s.checkProjects(ctx, req.ProjectIDs)
	if err != nil {
		return domain.UserProfile{}, err
	}

	userID, err := s.identity.CreateIdentity(ctx, email, req.Password)
	if err != nil {
		return domain.UserProfile{}, err
	}
	profile, err := s.profiles.Upsert(ctx, domain.UserProfile{
		ID:                 userID,
		Email:              email,
		FullName:           strings.TrimSpace(req.FullName),
		Role:               role,
		AssignedProjectIDs: projectIDs,
	})
	if err != nil {
		if _, rollbackErr := s.identity.DeleteIdentity(ctx, email); rollbackErr != nil {
			slog.Default().ErrorContext(ctx, "identity rollback failed",
				"module", "application",
				"layer", "service",
				"operation", "create_account",
				"outcome", "failure",
				"error", rollbackErr,
			)
		}
		return domain.UserProfile{}, err
	}
	return profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, actor domain.UserProfile, userID string, req UpdateUserRequest) (domain.UserProfile, error) {
	if err := s.requireAdmin(actor); err != nil {
		return domain.UserProfile{}, err
	}
	params := ports.UpdateProfileParams{UserID: userID}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		params.FullName = &name
	}
	if req.Role != nil {
		role, err := s.resolveRole(*req.Role)
		if err != nil {
			return domain.UserProfile{}, err
		}
		params.Role = &role
	}
	if req.AssignedProjectIDs != nil {
		ids, err := s.checkProjects(ctx, *req.AssignedProjectIDs)
		if err != nil {
			return domain.UserProfile{}, err
		}
		params.AssignedProjectIDs = &ids
	}
	profile, err := s.profiles.Update(ctx, params)
	if err != nil {
		return domain.UserProfile{}, err
	}
	s.invalidateProfile(ctx, userID)
	return profile, nil
}

// DeleteAccountCompletely removes both the identity and the profile.
func (s *Service) DeleteAccountCompletely(ctx context.Context, actor domain.UserProfile, email string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}
	if strings.EqualFold(email, actor.Email) {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrInvalidInput)
	}
	userID, err := s.identity.DeleteIdentity(ctx, email)
	if err != nil {
		return err
	}
	if err := s.profiles.DeleteByEmail(ctx, email); err != nil {
		return err
	}
	s.invalidateProfile(ctx, userID)
	return nil
}

func (s *Service) resolveRole(raw string) (domain.Role, error) {
	role := domain.NormalizeRole(raw)
	if role == "" || !s.cfg.Access.KnowsRole(role) {
		return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, raw)
	}
	return role, nil
}

func (s *Service) checkProjects(ctx context.Context, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if _, err := s.projects.Get(ctx, id); err != nil {
			return nil, fmt.Errorf("%w: project %s: %v", domain.ErrInvalidInput, id, err)
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
