package domain

import (
	"fmt"
	"strings"
	"time"
)

// LeadTimeAlertDays is the closure delay after which a report is flagged.
// The flag is informational and never blocks a transition.
const LeadTimeAlertDays = 3

type ReportPhase string

const (
	PhaseInProgress        ReportPhase = "in_progress"
	PhasePendingSignatures ReportPhase = "pending_signatures"
	PhaseReadyToComplete   ReportPhase = "ready_to_complete"
	PhaseCompleted         ReportPhase = "completed"
)

type LeadTime struct {
	Days  int  `json:"days"`
	Alert bool `json:"alert"`
}

// SigningViolations lists unmet checklist and action plan conditions.
func SigningViolations(r *Report) []Violation {
	var unanswered []string
	var incompleteItems []string
	missingFields := map[string]struct{}{}
	for _, res := range r.Results {
		if res.Status == nil {
			unanswered = append(unanswered, res.ItemID)
			continue
		}
		if *res.Status != StatusNonCompliant {
			continue
		}
		fields := missingPlanFields(res.ActionPlan)
		if len(fields) == 0 {
			continue
		}
		incompleteItems = append(incompleteItems, res.ItemID)
		for _, f := range fields {
			missingFields[f] = struct{}{}
		}
	}

	var out []Violation
	if len(unanswered) > 0 {
		out = append(out, Violation{
			Code:    ViolationUnansweredItems,
			Message: fmt.Sprintf("%d item(s) unanswered", len(unanswered)),
			ItemIDs: unanswered,
		})
	}
	if len(incompleteItems) > 0 {
		fields := make([]string, 0, len(missingFields))
		for _, f := range []string{"actions", "responsible", "deadline"} {
			if _, ok := missingFields[f]; ok {
				fields = append(fields, f)
			}
		}
		out = append(out, Violation{
			Code:    ViolationIncompleteActions,
			Message: fmt.Sprintf("%d non-conformit(ies) missing action plan fields: %s", len(incompleteItems), strings.Join(fields, ", ")),
			ItemIDs: incompleteItems,
			Fields:  fields,
		})
	}
	return out
}

// CompletionViolations lists every condition blocking Draft -> Completed.
func CompletionViolations(r *Report) []Violation {
	out := SigningViolations(r)
	for _, slot := range MissingSignatures(r) {
		out = append(out, Violation{
			Code:    ViolationMissingSignature,
			Message: fmt.Sprintf("%s signature missing", slot),
			Fields:  []string{string(slot)},
		})
	}
	return out
}

func MissingSignatures(r *Report) []SignatureSlot {
	var out []SignatureSlot
	if !isSigned(r.Signatures.Inspector) {
		out = append(out, SlotInspector)
	}
	if !isSigned(r.Signatures.Manager) {
		out = append(out, SlotManager)
	}
	return out
}

func isSigned(name string) bool { return strings.TrimSpace(name) != "" }

func missingPlanFields(p *ActionPlan) []string {
	if p == nil {
		return []string{"actions", "responsible", "deadline"}
	}
	var out []string
	if strings.TrimSpace(p.Actions) == "" {
		out = append(out, "actions")
	}
	if strings.TrimSpace(p.Responsible) == "" {
		out = append(out, "responsible")
	}
	if strings.TrimSpace(p.Deadline) == "" {
		out = append(out, "deadline")
	}
	return out
}

// EnsureEditable rejects field edits on completed or already signed reports.
func EnsureEditable(r *Report) error {
	if r.IsCompleted() {
		return ErrReportLocked
	}
	if isSigned(r.Signatures.Inspector) {
		return fmt.Errorf("%w: signature by %s already recorded", ErrConflict, r.Signatures.Inspector)
	}
	if isSigned(r.Signatures.Manager) {
		return fmt.Errorf("%w: signature by %s already recorded", ErrConflict, r.Signatures.Manager)
	}
	return nil
}

// Sign records signer in slot. Checklist and action plans must be complete.
func Sign(r *Report, slot SignatureSlot, signer string) error {
	if !slot.IsValid() {
		return fmt.Errorf("%w: unknown signature slot %q", ErrInvalidInput, slot)
	}
	if r.IsCompleted() {
		return ErrReportLocked
	}
	if strings.TrimSpace(signer) == "" {
		return fmt.Errorf("%w: signer name is required", ErrInvalidInput)
	}
	if err := validationFailure(SigningViolations(r)); err != nil {
		return err
	}
	current := r.Signatures.Inspector
	if slot == SlotManager {
		current = r.Signatures.Manager
	}
	if isSigned(current) {
		return fmt.Errorf("%w: signature by %s already recorded", ErrConflict, current)
	}
	if slot == SlotManager {
		r.Signatures.Manager = signer
	} else {
		r.Signatures.Inspector = signer
	}
	return nil
}

// Complete moves a draft to Completed. closedDate is kept if already set.
func Complete(catalog *Catalog, r *Report, now time.Time) error {
	if r.IsCompleted() {
		return ErrReportLocked
	}
	if err := validationFailure(CompletionViolations(r)); err != nil {
		return err
	}
	r.Status = ReportStatusCompleted
	if r.ClosedDate == nil {
		closed := now.UTC()
		r.ClosedDate = &closed
	}
	r.ApplyScores(ComputeScores(catalog, r.Results))
	return nil
}

func Phase(r *Report) ReportPhase {
	switch {
	case r.IsCompleted():
		return PhaseCompleted
	case len(SigningViolations(r)) > 0:
		return PhaseInProgress
	case len(MissingSignatures(r)) > 0:
		return PhasePendingSignatures
	default:
		return PhaseReadyToComplete
	}
}

// ComputeLeadTime returns whole days between inspection and closure, or nil
// while the report is open.
func ComputeLeadTime(r *Report) *LeadTime {
	if r.ClosedDate == nil {
		return nil
	}
	days := int(r.ClosedDate.Sub(r.InspectionDate) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	return &LeadTime{Days: days, Alert: days > LeadTimeAlertDays}
}
