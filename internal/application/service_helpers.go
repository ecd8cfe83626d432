package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
)

const (
	EventReportSaved     = "inspection.report_saved"
	EventReportSigned    = "inspection.report_signed"
	EventReportCompleted = "inspection.report_completed"
	EventProjectDeleted  = "inspection.project_deleted"
)

type reportEventData struct {
	ReportID       string         `json:"report_id"`
	ProjectID      string         `json:"project_id"`
	Status         string         `json:"status"`
	InspectionDate string         `json:"inspection_date"`
	Score          int            `json:"score"`
	Evaluation     string         `json:"evaluation"`
	CategoryScores map[string]int `json:"category_scores"`
	ActorID        string         `json:"actor_id"`
	SignatureSlot  string         `json:"signature_slot,omitempty"`
	ClosedDate     string         `json:"closed_date,omitempty"`
}

func (s *Service) enqueueReportEvent(ctx context.Context, eventType string, report domain.Report, actor domain.UserProfile, slot domain.SignatureSlot) {
	data := reportEventData{
		ReportID:       report.ID,
		ProjectID:      report.ProjectID,
		Status:         string(report.Status),
		InspectionDate: report.InspectionDate.Format(domain.DateLayout),
		Score:          report.Score,
		Evaluation:     report.Evaluation,
		CategoryScores: report.CategoryScores,
		ActorID:        actor.ID,
		SignatureSlot:  string(slot),
	}
	if report.ClosedDate != nil {
		data.ClosedDate = report.ClosedDate.Format(time.RFC3339)
	}
	s.enqueue(ctx, eventType, report.ProjectID, data)
}

// enqueue writes to the outbox. The report is already persisted at this
// point, so a failed enqueue is logged rather than returned.
func (s *Service) enqueue(ctx context.Context, eventType, partitionKey string, data any) {
	if s.outbox == nil {
		return
	}
	occurredAt := s.nowFn()
	payload, err := json.Marshal(map[string]any{
		"event_id":       uuid.NewString(),
		"event_type":     eventType,
		"occurred_at":    occurredAt.Format(time.RFC3339),
		"source_service": s.cfg.ServiceName,
		"schema_version": "1.0",
		"partition_key":  partitionKey,
		"data":           data,
	})
	if err == nil {
		err = s.outbox.Enqueue(ctx, ports.OutboxEvent{
			EventID:       uuid.New(),
			EventType:     eventType,
			PartitionKey:  partitionKey,
			Payload:       payload,
			OccurredAt:    occurredAt,
			SchemaVersion: "1.0",
		})
	}
	if err != nil {
		slog.Default().WarnContext(ctx, "outbox enqueue failed",
			"module", "application",
			"layer", "service",
			"operation", "enqueue",
			"outcome", "failure",
			"event_type", eventType,
			"error", err,
		)
	}
}

func (s *Service) requireAdmin(actor domain.UserProfile) error {
	if !s.cfg.Access.IsAdmin(actor) {
		return fmt.Errorf("%w: role %s cannot perform administrative actions", domain.ErrForbidden, actor.Role)
	}
	return nil
}

func (s *Service) requireWrite(actor domain.UserProfile, projectID string) error {
	if !s.cfg.Access.CanWrite(actor, projectID) {
		s.metrics.TransitionRejected("write", "forbidden")
		return fmt.Errorf("%w: role %s has no write access to project %s", domain.ErrForbidden, actor.Role, projectID)
	}
	return nil
}

func (s *Service) capabilities(actor domain.UserProfile, projectID string) Capabilities {
	write := s.cfg.Access.CanWrite(actor, projectID)
	return Capabilities{
		CanWrite:         write,
		CanSignInspector: write && s.cfg.Access.CanSign(actor, domain.SlotInspector),
		CanSignManager:   write && s.cfg.Access.CanSign(actor, domain.SlotManager),
	}
}

func (s *Service) view(actor domain.UserProfile, report domain.Report) ReportView {
	return ReportView{
		Report:            report,
		Phase:             domain.Phase(&report),
		MissingSignatures: domain.MissingSignatures(&report),
		Violations:        domain.CompletionViolations(&report),
		LeadTime:          domain.ComputeLeadTime(&report),
		Capabilities:      s.capabilities(actor, report.ProjectID),
	}
}

func displayName(actor domain.UserProfile) string {
	if actor.FullName != "" {
		return actor.FullName
	}
	return actor.Email
}
