package application

import (
	"context"
	"strings"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
)

func (s *Service) ListProjects(ctx context.Context, _ domain.UserProfile) ([]domain.Project, error) {
	return s.projects.List(ctx)
}

func (s *Service) CreateProject(ctx context.Context, actor domain.UserProfile, req CreateProjectRequest) (domain.Project, error) {
	if err := s.requireAdmin(actor); err != nil {
		return domain.Project{}, err
	}
	if err := domain.ValidateProjectName(req.Name); err != nil {
		return domain.Project{}, err
	}
	return s.projects.Create(ctx, ports.CreateProjectParams{
		Name:      strings.TrimSpace(req.Name),
		Location:  strings.TrimSpace(req.Location),
		CreatedAt: s.nowFn(),
	})
}

func (s *Service) UpdateProject(ctx context.Context, actor domain.UserProfile, projectID string, req UpdateProjectRequest) (domain.Project, error) {
	if err := s.requireAdmin(actor); err != nil {
		return domain.Project{}, err
	}
	params := ports.UpdateProjectParams{ProjectID: projectID}
	if req.Name != nil {
		if err := domain.ValidateProjectName(*req.Name); err != nil {
			return domain.Project{}, err
		}
		name := strings.TrimSpace(*req.Name)
		params.Name = &name
	}
	if req.Location != nil {
		location := strings.TrimSpace(*req.Location)
		params.Location = &location
	}
	return s.projects.Update(ctx, params)
}

// DeleteProject refuses while any report references the project.
func (s *Service) DeleteProject(ctx context.Context, actor domain.UserProfile, projectID string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return err
	}
	count, err := s.projects.CountReports(ctx, projectID)
	if err != nil {
		return err
	}
	if count > 0 {
		return &domain.ReferentialIntegrityError{ProjectID: projectID, ReportCount: count}
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}
	s.enqueue(ctx, EventProjectDeleted, projectID, map[string]string{"project_id": projectID, "actor_id": actor.ID})
	return nil
}
