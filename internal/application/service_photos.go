package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
)

func (s *Service) loadEditable(ctx context.Context, actor domain.UserProfile, reportID, itemID string) (domain.Report, int, error) {
	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return domain.Report{}, -1, err
	}
	if err := s.requireWrite(actor, report.ProjectID); err != nil {
		return domain.Report{}, -1, err
	}
	if err := domain.EnsureEditable(&report); err != nil {
		return domain.Report{}, -1, err
	}
	idx := report.Result(itemID)
	if idx < 0 {
		return domain.Report{}, -1, fmt.Errorf("%w: report has no result for item %q", domain.ErrNotFound, itemID)
	}
	return report, idx, nil
}

// AttachPhoto uploads first and only then appends the reference, so a failed
// upload leaves the photo list untouched.
func (s *Service) AttachPhoto(ctx context.Context, actor domain.UserProfile, reportID, itemID string, in PhotoInput) (domain.Photo, error) {
	report, idx, err := s.loadEditable(ctx, actor, reportID, itemID)
	if err != nil {
		return domain.Photo{}, err
	}
	if s.photos == nil {
		s.metrics.PhotoUpload("disabled")
		return domain.Photo{}, fmt.Errorf("%w: photo storage is not configured", domain.ErrUploadFailed)
	}
	if in.Body == nil {
		return domain.Photo{}, fmt.Errorf("%w: photo file is required", domain.ErrInvalidInput)
	}

	photoID := uuid.NewString()
	url, err := s.photos.Upload(ctx, ports.PhotoUpload{
		ReportID:    report.ID,
		ItemID:      itemID,
		PhotoID:     photoID,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		Size:        in.Size,
		Body:        in.Body,
	})
	if err != nil {
		s.metrics.PhotoUpload("failure")
		return domain.Photo{}, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	s.metrics.PhotoUpload("success")

	photo := domain.Photo{ID: photoID, URL: url}
	report.Results[idx].Photos = append(report.Results[idx].Photos, photo)
	report.ApplyScores(domain.ComputeScores(s.catalog, report.Results))
	if _, err := s.reports.Save(ctx, report); err != nil {
		return domain.Photo{}, err
	}
	return photo, nil
}

func (s *Service) RemovePhoto(ctx context.Context, actor domain.UserProfile, reportID, itemID, photoID string) error {
	report, idx, err := s.loadEditable(ctx, actor, reportID, itemID)
	if err != nil {
		return err
	}
	photos := report.Results[idx].Photos
	kept := make([]domain.Photo, 0, len(photos))
	for _, p := range photos {
		if p.ID != photoID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(photos) {
		return fmt.Errorf("%w: photo %s", domain.ErrNotFound, photoID)
	}
	report.Results[idx].Photos = kept
	report.ApplyScores(domain.ComputeScores(s.catalog, report.Results))
	_, err = s.reports.Save(ctx, report)
	return err
}
