package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDraftWithoutPrior(t *testing.T) {
	t.Parallel()

	c := twoByTwo(t)
	now := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	draft, err := BuildDraft(c, "p1", nil, now)
	require.NoError(t, err)

	assert.Empty(t, draft.ID)
	assert.Equal(t, "p1", draft.ProjectID)
	assert.Equal(t, ReportStatusDraft, draft.Status)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), draft.InspectionDate)
	assert.Equal(t, now, draft.CreatedDate)
	assert.Nil(t, draft.ClosedDate)
	assert.Empty(t, draft.Inspector)
	assert.Equal(t, Signatures{}, draft.Signatures)
	require.Len(t, draft.Results, 4)
	for _, r := range draft.Results {
		assert.Nil(t, r.Status)
		assert.Empty(t, r.Comment)
		assert.Empty(t, r.Photos)
		require.NotNil(t, r.ActionPlan)
		assert.Equal(t, ActionPlan{}, *r.ActionPlan)
	}
}

func TestBuildDraftCarriesForwardNonConformities(t *testing.T) {
	t.Parallel()

	c := twoByTwo(t)
	plan := &ActionPlan{Actions: "repair", Responsible: "Bob", Deadline: "2024-01-01", Resources: Resources{Labor: true}}
	prior := &Report{
		InspectionDate: time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC),
		Results: []InspectionItemResult{
			{ItemID: "item1", Status: StatusPtr(StatusCompliant), Comment: "ok"},
			{ItemID: "item2", Status: StatusPtr(StatusNonCompliant), Comment: "crack in wall", ActionPlan: plan},
			{ItemID: "item3", Status: StatusPtr(StatusNotApplicable)},
			{ItemID: "item4"},
		},
	}

	draft, err := BuildDraft(c, "p1", prior, time.Now())
	require.NoError(t, err)

	carried := draft.Results[draft.Result("item2")]
	assert.Nil(t, carried.Status)
	assert.True(t, strings.HasPrefix(carried.Comment, "[PENDÊNCIA ANTERIOR (2023-12-05)]"))
	assert.True(t, strings.HasSuffix(carried.Comment, "crack in wall"))
	require.NotNil(t, carried.ActionPlan)
	assert.Equal(t, *plan, *carried.ActionPlan)

	carried.ActionPlan.Responsible = "Alice"
	assert.Equal(t, "Bob", plan.Responsible)

	untouched := draft.Results[draft.Result("item1")]
	assert.Empty(t, untouched.Comment)
	assert.Equal(t, ActionPlan{}, *untouched.ActionPlan)
}

func TestCarryForwardDoesNotAccumulateMarkers(t *testing.T) {
	t.Parallel()

	first := CarryForwardComment(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "leak near tank")
	second := CarryForwardComment(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), first)

	assert.Equal(t, "[PENDÊNCIA ANTERIOR (2024-02-01)]: leak near tank", second)
	assert.Equal(t, "leak near tank", StripCarryForwardMarkers("[PENDÊNCIA ANTERIOR (x)]: [PENDÊNCIA ANTERIOR (y)]: leak near tank"))
}

func TestBuildDraftCarryForwardWithoutPlan(t *testing.T) {
	t.Parallel()

	c := twoByTwo(t)
	prior := &Report{
		InspectionDate: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Results:        []InspectionItemResult{{ItemID: "item3", Status: StatusPtr(StatusNonCompliant)}},
	}
	draft, err := BuildDraft(c, "p1", prior, time.Now())
	require.NoError(t, err)

	r := draft.Results[draft.Result("item3")]
	assert.Equal(t, "[PENDÊNCIA ANTERIOR (2024-05-02)]: ", r.Comment)
	assert.Equal(t, ActionPlan{}, *r.ActionPlan)
}
