package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	var rows []projectModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, storageError(err)
	}
	out := make([]domain.Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, toProject(row))
	}
	return out, nil
}

func (r *ProjectRepository) Get(ctx context.Context, projectID string) (domain.Project, error) {
	id, err := parseID(projectID)
	if err != nil {
		return domain.Project{}, err
	}
	var row projectModel
	if err := r.db.WithContext(ctx).Where("project_id = ?", id).Take(&row).Error; err != nil {
		return domain.Project{}, storageError(err)
	}
	return toProject(row), nil
}

func (r *ProjectRepository) Create(ctx context.Context, params ports.CreateProjectParams) (domain.Project, error) {
	row := projectModel{
		ProjectID: uuid.New(),
		Name:      strings.TrimSpace(params.Name),
		Location:  strings.TrimSpace(params.Location),
		CreatedAt: params.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Project{}, storageError(err)
	}
	return toProject(row), nil
}

func (r *ProjectRepository) Update(ctx context.Context, params ports.UpdateProjectParams) (domain.Project, error) {
	id, err := parseID(params.ProjectID)
	if err != nil {
		return domain.Project{}, err
	}
	updates := map[string]any{}
	if params.Name != nil {
		updates["name"] = strings.TrimSpace(*params.Name)
	}
	if params.Location != nil {
		updates["location"] = strings.TrimSpace(*params.Location)
	}
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&projectModel{}).Where("project_id = ?", id).Updates(updates)
		if res.Error != nil {
			return domain.Project{}, storageError(res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.Project{}, domain.ErrNotFound
		}
	}
	return r.Get(ctx, params.ProjectID)
}

func (r *ProjectRepository) Delete(ctx context.Context, projectID string) error {
	id, err := parseID(projectID)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where("project_id = ?", id).Delete(&projectModel{})
	if res.Error != nil {
		return storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) CountReports(ctx context.Context, projectID string) (int64, error) {
	id, err := parseID(projectID)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&reportModel{}).Where("project_id = ?", id).Count(&count).Error; err != nil {
		return 0, storageError(err)
	}
	return count, nil
}
