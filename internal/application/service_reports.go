package application

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
)

func (s *Service) ListReports(ctx context.Context, actor domain.UserProfile, projectID string) ([]ReportView, error) {
	reports, err := s.reports.List(ctx, ports.ReportFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	out := make([]ReportView, 0, len(reports))
	for _, r := range reports {
		out = append(out, s.view(actor, r))
	}
	return out, nil
}

func (s *Service) GetReport(ctx context.Context, actor domain.UserProfile, reportID string) (ReportView, error) {
	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return ReportView{}, err
	}
	if !s.cfg.Access.CanRead(actor, report.ProjectID) {
		return ReportView{}, domain.ErrForbidden
	}
	return s.view(actor, report), nil
}

// PrepareDraft builds the next unsaved draft for a project, carrying forward
// open non-conformities from its latest report.
func (s *Service) PrepareDraft(ctx context.Context, actor domain.UserProfile, projectID string) (ReportView, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return ReportView{}, err
	}
	if err := s.requireWrite(actor, projectID); err != nil {
		return ReportView{}, err
	}
	draft, err := s.newDraft(ctx, projectID)
	if err != nil {
		return ReportView{}, err
	}
	draft.Inspector = displayName(actor)
	return s.view(actor, draft), nil
}

func (s *Service) newDraft(ctx context.Context, projectID string) (domain.Report, error) {
	prior, err := s.reports.GetLatest(ctx, projectID)
	if err != nil {
		return domain.Report{}, err
	}
	return domain.BuildDraft(s.catalog, projectID, prior, s.nowFn())
}

// SaveReport inserts a new draft or updates an existing one. Drafts save
// without gating; completed reports are immutable and signed reports reject
// field edits. Scores are always recomputed before persisting.
func (s *Service) SaveReport(ctx context.Context, actor domain.UserProfile, req SaveReportRequest) (ReportView, error) {
	var base domain.Report
	isNew := strings.TrimSpace(req.ID) == ""
	if isNew {
		projectID := strings.TrimSpace(req.ProjectID)
		if projectID == "" {
			return ReportView{}, fmt.Errorf("%w: projectId is required", domain.ErrInvalidInput)
		}
		if _, err := s.projects.Get(ctx, projectID); err != nil {
			return ReportView{}, err
		}
		if err := s.requireWrite(actor, projectID); err != nil {
			return ReportView{}, err
		}
		draft, err := s.newDraft(ctx, projectID)
		if err != nil {
			return ReportView{}, err
		}
		base = draft
	} else {
		existing, err := s.reports.Get(ctx, req.ID)
		if err != nil {
			return ReportView{}, err
		}
		if req.ProjectID != "" && req.ProjectID != existing.ProjectID {
			return ReportView{}, fmt.Errorf("%w: a report cannot move to another project", domain.ErrInvalidInput)
		}
		if err := s.requireWrite(actor, existing.ProjectID); err != nil {
			return ReportView{}, err
		}
		if existing.IsCompleted() {
			s.metrics.TransitionRejected("save", "locked")
			return ReportView{}, domain.ErrReportLocked
		}
		base = existing
	}

	updated, err := s.applyEdits(base, req)
	if err != nil {
		return ReportView{}, err
	}
	if updated.Inspector == "" && !updated.Signatures.Any() {
		updated.Inspector = displayName(actor)
	}
	if !isNew && changed(base, updated) {
		if err := domain.EnsureEditable(&base); err != nil {
			s.metrics.TransitionRejected("save", "signed")
			return ReportView{}, err
		}
	}

	updated.ApplyScores(domain.ComputeScores(s.catalog, updated.Results))
	saved, err := s.reports.Save(ctx, updated)
	if err != nil {
		return ReportView{}, err
	}
	s.metrics.ReportSaved(saved.ProjectID, saved.Score)
	s.enqueueReportEvent(ctx, EventReportSaved, saved, actor, "")
	return s.view(actor, saved), nil
}

func (s *Service) applyEdits(base domain.Report, req SaveReportRequest) (domain.Report, error) {
	out := base
	out.Results = make([]domain.InspectionItemResult, len(base.Results))
	for i, r := range base.Results {
		out.Results[i] = r.Clone()
	}

	if raw := strings.TrimSpace(req.InspectionDate); raw != "" {
		date, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			return domain.Report{}, fmt.Errorf("%w: inspectionDate must be YYYY-MM-DD", domain.ErrInvalidInput)
		}
		out.InspectionDate = date.UTC()
	}
	if req.Inspector != nil {
		out.Inspector = strings.TrimSpace(*req.Inspector)
	}

	for _, in := range req.Results {
		if _, ok := s.catalog.Lookup(in.ItemID); !ok {
			return domain.Report{}, fmt.Errorf("%w: item %q is not in the checklist", domain.ErrInvalidInput, in.ItemID)
		}
		idx := out.Result(in.ItemID)
		if idx < 0 {
			return domain.Report{}, fmt.Errorf("%w: report has no result for item %q", domain.ErrInvalidInput, in.ItemID)
		}
		target := &out.Results[idx]
		if in.Status != nil {
			status, err := domain.ParseStatus(in.Status)
			if err != nil {
				return domain.Report{}, err
			}
			target.Status = status
		}
		if in.Comment != nil {
			target.Comment = *in.Comment
		}
		if in.ActionPlan != nil {
			if err := domain.ValidateDeadline(in.ActionPlan.Deadline); err != nil {
				return domain.Report{}, err
			}
			target.ActionPlan = in.ActionPlan.Clone()
		}
	}
	return out, nil
}

func changed(before, after domain.Report) bool {
	return !before.InspectionDate.Equal(after.InspectionDate) ||
		before.Inspector != after.Inspector ||
		!reflect.DeepEqual(before.Results, after.Results)
}

// SignReport records the actor's display name in slot.
func (s *Service) SignReport(ctx context.Context, actor domain.UserProfile, reportID, rawSlot string) (ReportView, error) {
	slot := domain.SignatureSlot(strings.ToLower(strings.TrimSpace(rawSlot)))
	if !slot.IsValid() {
		return ReportView{}, fmt.Errorf("%w: signature slot must be inspector or manager", domain.ErrInvalidInput)
	}
	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return ReportView{}, err
	}
	if err := s.requireWrite(actor, report.ProjectID); err != nil {
		return ReportView{}, err
	}
	if !s.cfg.Access.CanSign(actor, slot) {
		s.metrics.TransitionRejected("sign", "forbidden")
		return ReportView{}, fmt.Errorf("%w: role %s cannot sign as %s", domain.ErrForbidden, actor.Role, slot)
	}
	if err := domain.Sign(&report, slot, displayName(actor)); err != nil {
		s.metrics.TransitionRejected("sign", rejectionReason(err))
		return ReportView{}, err
	}
	report.ApplyScores(domain.ComputeScores(s.catalog, report.Results))
	saved, err := s.reports.Save(ctx, report)
	if err != nil {
		return ReportView{}, err
	}
	s.metrics.ReportSigned(string(slot))
	s.enqueueReportEvent(ctx, EventReportSigned, saved, actor, slot)
	return s.view(actor, saved), nil
}

// CompleteReport performs the terminal Draft -> Completed transition.
func (s *Service) CompleteReport(ctx context.Context, actor domain.UserProfile, reportID string) (ReportView, error) {
	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return ReportView{}, err
	}
	if err := s.requireWrite(actor, report.ProjectID); err != nil {
		return ReportView{}, err
	}
	if err := domain.Complete(s.catalog, &report, s.nowFn()); err != nil {
		s.metrics.TransitionRejected("complete", rejectionReason(err))
		return ReportView{}, err
	}
	saved, err := s.reports.Save(ctx, report)
	if err != nil {
		return ReportView{}, err
	}
	s.metrics.ReportCompleted(saved.ProjectID)
	s.enqueueReportEvent(ctx, EventReportCompleted, saved, actor, "")
	return s.view(actor, saved), nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrReportLocked):
		return "locked"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "other"
	}
}
