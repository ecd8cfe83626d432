package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const carryForwardLabel = "PENDÊNCIA ANTERIOR"

var carryForwardMarker = regexp.MustCompile(`^\s*\[` + carryForwardLabel + ` \([^)]*\)\]:\s*`)

// CarryForwardComment prefixes comment with a marker holding the prior
// inspection date. Markers left by earlier carry-forwards are dropped first.
func CarryForwardComment(priorDate time.Time, comment string) string {
	return fmt.Sprintf("[%s (%s)]: %s", carryForwardLabel, priorDate.UTC().Format(DateLayout), StripCarryForwardMarkers(comment))
}

func StripCarryForwardMarkers(comment string) string {
	for carryForwardMarker.MatchString(comment) {
		comment = carryForwardMarker.ReplaceAllString(comment, "")
	}
	return strings.TrimSpace(comment)
}

// BuildDraft creates an unsaved draft covering every catalog item. Items that
// were non-compliant in prior keep their comment and a copy of their action
// plan, but their status is cleared so the next inspection re-evaluates them.
func BuildDraft(catalog *Catalog, projectID string, prior *Report, now time.Time) (Report, error) {
	priorNC := map[string]InspectionItemResult{}
	if prior != nil {
		for _, r := range prior.Results {
			if r.Is(StatusNonCompliant) {
				priorNC[r.ItemID] = r
			}
		}
	}

	results := make([]InspectionItemResult, 0, catalog.ItemCount())
	for _, id := range catalog.order {
		result := InspectionItemResult{
			ItemID:     id,
			Photos:     []Photo{},
			ActionPlan: &ActionPlan{},
		}
		if old, ok := priorNC[id]; ok {
			result.Comment = CarryForwardComment(prior.InspectionDate, old.Comment)
			if old.ActionPlan != nil {
				result.ActionPlan = old.ActionPlan.Clone()
			}
		}
		results = append(results, result)
	}
	if err := catalog.ValidateCoverage(results); err != nil {
		return Report{}, err
	}

	draft := Report{
		ProjectID:      projectID,
		InspectionDate: DateOnly(now),
		CreatedDate:    now.UTC(),
		Status:         ReportStatusDraft,
		Results:        results,
	}
	draft.ApplyScores(ComputeScores(catalog, results))
	return draft, nil
}
