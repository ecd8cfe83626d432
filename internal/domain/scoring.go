package domain

const (
	EvaluationExcellent = "ÓTIMO"
	EvaluationGood      = "BOM"
	EvaluationFair      = "REGULAR"
	EvaluationPoor      = "RUIM"
)

type ScoreSummary struct {
	Score          int            `json:"score"`
	Evaluation     string         `json:"evaluation"`
	CategoryScores map[string]int `json:"categoryScores"`
}

// ComputeScores derives category and overall scores from results. Categories
// weigh equally regardless of item count. Not-applicable results are ignored;
// unanswered results count against compliance.
func ComputeScores(catalog *Catalog, results []InspectionItemResult) ScoreSummary {
	type tally struct{ applicable, compliant int }
	tallies := make(map[string]*tally, len(catalog.categories))
	for _, cat := range catalog.categories {
		tallies[cat.ID] = &tally{}
	}
	for _, r := range results {
		ref, ok := catalog.Lookup(r.ItemID)
		if !ok || r.Is(StatusNotApplicable) {
			continue
		}
		t := tallies[ref.CategoryID]
		t.applicable++
		if r.Is(StatusCompliant) {
			t.compliant++
		}
	}

	categoryScores := make(map[string]int, len(tallies))
	sum := 0
	for _, cat := range catalog.categories {
		t := tallies[cat.ID]
		score := 100
		if t.applicable > 0 {
			score = roundHalfUp(100*t.compliant, t.applicable)
		}
		categoryScores[cat.ID] = score
		sum += score
	}

	overall := 100
	if n := len(catalog.categories); n > 0 {
		overall = roundHalfUp(sum, n)
	}
	return ScoreSummary{
		Score:          overall,
		Evaluation:     Evaluate(overall),
		CategoryScores: categoryScores,
	}
}

func Evaluate(score int) string {
	switch {
	case score >= 90:
		return EvaluationExcellent
	case score >= 70:
		return EvaluationGood
	case score >= 50:
		return EvaluationFair
	default:
		return EvaluationPoor
	}
}

// roundHalfUp computes round(num/den) for non-negative operands without
// floating point.
func roundHalfUp(num, den int) int {
	return (2*num + den) / (2 * den)
}
