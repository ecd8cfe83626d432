package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func (r *ReportRepository) List(ctx context.Context, filter ports.ReportFilter) ([]domain.Report, error) {
	query := r.db.WithContext(ctx).Order("inspection_date DESC").Order("created_at DESC")
	if filter.ProjectID != "" {
		id, err := parseID(filter.ProjectID)
		if err != nil {
			return []domain.Report{}, nil
		}
		query = query.Where("project_id = ?", id)
	}
	var rows []reportModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, storageError(err)
	}
	out := make([]domain.Report, 0, len(rows))
	for _, row := range rows {
		report, err := toReport(row)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, nil
}

func (r *ReportRepository) Get(ctx context.Context, reportID string) (domain.Report, error) {
	id, err := parseID(reportID)
	if err != nil {
		return domain.Report{}, err
	}
	var row reportModel
	if err := r.db.WithContext(ctx).Where("report_id = ?", id).Take(&row).Error; err != nil {
		return domain.Report{}, storageError(err)
	}
	return toReport(row)
}

// GetLatest returns nil when the project has no reports yet.
func (r *ReportRepository) GetLatest(ctx context.Context, projectID string) (*domain.Report, error) {
	id, err := parseID(projectID)
	if err != nil {
		return nil, nil
	}
	var row reportModel
	err = r.db.WithContext(ctx).
		Where("project_id = ?", id).
		Order("inspection_date DESC").
		Order("created_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(err)
	}
	report, err := toReport(row)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Save writes the whole aggregate in one statement.
func (r *ReportRepository) Save(ctx context.Context, report domain.Report) (domain.Report, error) {
	projectID, err := parseID(report.ProjectID)
	if err != nil {
		return domain.Report{}, domain.ErrInvalidInput
	}
	content, err := encodeReportContent(report)
	if err != nil {
		return domain.Report{}, err
	}
	now := time.Now().UTC()

	if report.ID == "" {
		created := report.CreatedDate
		if created.IsZero() {
			created = now
		}
		row := reportModel{
			ReportID:       uuid.New(),
			ProjectID:      projectID,
			InspectionDate: domain.DateOnly(report.InspectionDate),
			Status:         string(report.Status),
			Content:        content,
			CreatedAt:      created.UTC(),
			UpdatedAt:      now,
		}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return domain.Report{}, storageError(err)
		}
		report.ID = row.ReportID.String()
		report.CreatedDate = row.CreatedAt
		return report, nil
	}

	id, err := parseID(report.ID)
	if err != nil {
		return domain.Report{}, err
	}
	res := r.db.WithContext(ctx).Model(&reportModel{}).Where("report_id = ?", id).Updates(map[string]any{
		"project_id":      projectID,
		"inspection_date": domain.DateOnly(report.InspectionDate),
		"status":          string(report.Status),
		"content":         content,
		"updated_at":      now,
	})
	if res.Error != nil {
		return domain.Report{}, storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.Report{}, domain.ErrNotFound
	}
	return report, nil
}
