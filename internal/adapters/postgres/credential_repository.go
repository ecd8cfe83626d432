package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
	"gorm.io/gorm"
)

type CredentialRepository struct {
	db *gorm.DB
}

func (r *CredentialRepository) Create(ctx context.Context, cred ports.Credential) error {
	id, err := parseID(cred.UserID)
	if err != nil {
		return domain.ErrInvalidInput
	}
	row := credentialModel{
		UserID:       id,
		Email:        strings.ToLower(strings.TrimSpace(cred.Email)),
		PasswordHash: cred.PasswordHash,
		CreatedAt:    cred.CreatedAt.UTC(),
		UpdatedAt:    cred.UpdatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return storageError(err)
	}
	return nil
}

func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (ports.Credential, error) {
	var row credentialModel
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&row).Error
	if err != nil {
		return ports.Credential{}, storageError(err)
	}
	return ports.Credential{
		UserID:       row.UserID.String(),
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func (r *CredentialRepository) UpdatePasswordHash(ctx context.Context, userID, hash string, at time.Time) error {
	id, err := parseID(userID)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&credentialModel{}).Where("user_id = ?", id).Updates(map[string]any{
		"password_hash": hash,
		"updated_at":    at.UTC(),
	})
	if res.Error != nil {
		return storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByEmail removes the credential and returns the owning user id.
func (r *CredentialRepository) DeleteByEmail(ctx context.Context, email string) (string, error) {
	var row credentialModel
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&row).Error
	if err != nil {
		return "", storageError(err)
	}
	res := r.db.WithContext(ctx).Where("user_id = ?", row.UserID).Delete(&credentialModel{})
	if res.Error != nil {
		return "", storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return "", domain.ErrNotFound
	}
	return row.UserID.String(), nil
}
