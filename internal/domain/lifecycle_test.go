package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completePlan() *ActionPlan {
	return &ActionPlan{Actions: "cover stockpile", Responsible: "Carla", Deadline: "2024-04-01"}
}

func readyReport(t *testing.T) (*Catalog, *Report) {
	t.Helper()
	c := twoByTwo(t)
	r := &Report{
		ID:             "r1",
		ProjectID:      "p1",
		InspectionDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:         ReportStatusDraft,
		Results: []InspectionItemResult{
			{ItemID: "item1", Status: StatusPtr(StatusCompliant)},
			{ItemID: "item2", Status: StatusPtr(StatusNonCompliant), ActionPlan: completePlan()},
			{ItemID: "item3", Status: StatusPtr(StatusCompliant)},
			{ItemID: "item4", Status: StatusPtr(StatusNotApplicable)},
		},
	}
	return c, r
}

func violationCodes(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	codes := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		codes = append(codes, v.Code)
	}
	return codes
}

func TestCompleteRejectsMissingResponsible(t *testing.T) {
	t.Parallel()

	c, r := readyReport(t)
	r.Results[1].ActionPlan.Responsible = ""
	r.Signatures = Signatures{Inspector: "Ana", Manager: "Bruno"}

	err := Complete(c, r, time.Now())
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, ViolationIncompleteActions, verr.Violations[0].Code)
	assert.Equal(t, []string{"responsible"}, verr.Violations[0].Fields)
	assert.Equal(t, []string{"item2"}, verr.Violations[0].ItemIDs)
	assert.Equal(t, ReportStatusDraft, r.Status)
}

func TestCompleteReportsEveryViolation(t *testing.T) {
	t.Parallel()

	c, r := readyReport(t)
	r.Results[0].Status = nil
	r.Results[2].Status = nil
	r.Results[1].ActionPlan = nil

	err := Complete(c, r, time.Now())
	assert.Equal(t, []string{
		ViolationUnansweredItems,
		ViolationIncompleteActions,
		ViolationMissingSignature,
		ViolationMissingSignature,
	}, violationCodes(t, err))
	assert.Contains(t, err.Error(), "2 item(s) unanswered")
}

func TestCompleteSucceedsAndFreezes(t *testing.T) {
	t.Parallel()

	c, r := readyReport(t)
	require.NoError(t, Sign(r, SlotInspector, "Ana"))
	require.NoError(t, Sign(r, SlotManager, "Bruno"))

	now := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	require.NoError(t, Complete(c, r, now))
	assert.Equal(t, ReportStatusCompleted, r.Status)
	require.NotNil(t, r.ClosedDate)
	assert.Equal(t, now, *r.ClosedDate)
	assert.Equal(t, 75, r.Score)

	assert.ErrorIs(t, Complete(c, r, now.Add(time.Hour)), ErrReportLocked)
	assert.ErrorIs(t, Sign(r, SlotManager, "Other"), ErrReportLocked)
	assert.ErrorIs(t, EnsureEditable(r), ErrReportLocked)
	assert.Equal(t, now, *r.ClosedDate)
}

func TestCompleteKeepsExistingClosedDate(t *testing.T) {
	t.Parallel()

	c, r := readyReport(t)
	r.Signatures = Signatures{Inspector: "Ana", Manager: "Bruno"}
	earlier := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	r.ClosedDate = &earlier

	require.NoError(t, Complete(c, r, time.Now()))
	assert.Equal(t, earlier, *r.ClosedDate)
}

func TestSignRequiresCompleteChecklist(t *testing.T) {
	t.Parallel()

	_, r := readyReport(t)
	r.Results[3].Status = nil

	err := Sign(r, SlotInspector, "Ana")
	assert.Equal(t, []string{ViolationUnansweredItems}, violationCodes(t, err))
	assert.Empty(t, r.Signatures.Inspector)
}

func TestSignRejectsFilledSlot(t *testing.T) {
	t.Parallel()

	_, r := readyReport(t)
	require.NoError(t, Sign(r, SlotInspector, "Ana"))

	err := Sign(r, SlotInspector, "Paulo")
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "signature by Ana already recorded")
	assert.Equal(t, "Ana", r.Signatures.Inspector)
}

func TestEnsureEditableAfterSignature(t *testing.T) {
	t.Parallel()

	_, r := readyReport(t)
	require.NoError(t, EnsureEditable(r))
	require.NoError(t, Sign(r, SlotManager, "Bruno"))

	err := EnsureEditable(r)
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "Bruno")
}

func TestBlankSignatureIsNotASignature(t *testing.T) {
	t.Parallel()

	_, r := readyReport(t)
	r.Signatures.Inspector = "   "
	require.NoError(t, EnsureEditable(r))
	assert.Equal(t, []SignatureSlot{SlotInspector, SlotManager}, MissingSignatures(r))

	require.NoError(t, Sign(r, SlotInspector, "Ana"))
	assert.Equal(t, "Ana", r.Signatures.Inspector)
}

func TestPhase(t *testing.T) {
	t.Parallel()

	c, r := readyReport(t)
	assert.Equal(t, PhasePendingSignatures, Phase(r))
	assert.Equal(t, []SignatureSlot{SlotInspector, SlotManager}, MissingSignatures(r))

	r.Results[0].Status = nil
	assert.Equal(t, PhaseInProgress, Phase(r))
	r.Results[0].Status = StatusPtr(StatusCompliant)

	r.Signatures = Signatures{Inspector: "Ana", Manager: "Bruno"}
	assert.Equal(t, PhaseReadyToComplete, Phase(r))

	require.NoError(t, Complete(c, r, time.Now()))
	assert.Equal(t, PhaseCompleted, Phase(r))
}

func TestComputeLeadTime(t *testing.T) {
	t.Parallel()

	_, r := readyReport(t)
	assert.Nil(t, ComputeLeadTime(r))

	closed := r.InspectionDate.Add(3*24*time.Hour + 23*time.Hour)
	r.ClosedDate = &closed
	assert.Equal(t, &LeadTime{Days: 3, Alert: false}, ComputeLeadTime(r))

	closed = r.InspectionDate.Add(4 * 24 * time.Hour)
	r.ClosedDate = &closed
	assert.Equal(t, &LeadTime{Days: 4, Alert: true}, ComputeLeadTime(r))
}
