package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	db *gorm.DB
}

func (r *ProfileRepository) List(ctx context.Context) ([]domain.UserProfile, error) {
	var rows []profileModel
	if err := r.db.WithContext(ctx).Order("email ASC").Find(&rows).Error; err != nil {
		return nil, storageError(err)
	}
	out := make([]domain.UserProfile, 0, len(rows))
	for _, row := range rows {
		out = append(out, toProfile(row))
	}
	return out, nil
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (domain.UserProfile, error) {
	id, err := parseID(userID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	var row profileModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", id).Take(&row).Error; err != nil {
		return domain.UserProfile{}, storageError(err)
	}
	return toProfile(row), nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	id, err := parseID(profile.ID)
	if err != nil {
		return domain.UserProfile{}, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	row := profileModel{
		UserID:             id,
		Email:              strings.ToLower(strings.TrimSpace(profile.Email)),
		FullName:           strings.TrimSpace(profile.FullName),
		Role:               string(profile.Role),
		AssignedProjectIDs: encodeProjectIDs(profile.AssignedProjectIDs),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "role", "assigned_project_ids", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return domain.UserProfile{}, storageError(err)
	}
	return toProfile(row), nil
}

func (r *ProfileRepository) Update(ctx context.Context, params ports.UpdateProfileParams) (domain.UserProfile, error) {
	id, err := parseID(params.UserID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if params.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*params.FullName)
	}
	if params.Role != nil {
		updates["role"] = string(*params.Role)
	}
	if params.AssignedProjectIDs != nil {
		updates["assigned_project_ids"] = encodeProjectIDs(*params.AssignedProjectIDs)
	}
	res := r.db.WithContext(ctx).Model(&profileModel{}).Where("user_id = ?", id).Updates(updates)
	if res.Error != nil {
		return domain.UserProfile{}, storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.UserProfile{}, domain.ErrNotFound
	}
	return r.Get(ctx, params.UserID)
}

func (r *ProfileRepository) DeleteByEmail(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Delete(&profileModel{})
	if res.Error != nil {
		return storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
