package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
)

// reportContent is the jsonb payload of a report row. Columns that are
// filtered or sorted on live outside it.
type reportContent struct {
	Inspector      string                        `json:"inspector"`
	Results        []domain.InspectionItemResult `json:"results"`
	Signatures     domain.Signatures             `json:"signatures"`
	Score          int                           `json:"score"`
	Evaluation     string                        `json:"evaluation"`
	CategoryScores map[string]int                `json:"categoryScores"`
	ClosedDate     *time.Time                    `json:"closedDate,omitempty"`
}

func toProject(m projectModel) domain.Project {
	return domain.Project{
		ID:        m.ProjectID.String(),
		Name:      m.Name,
		Location:  m.Location,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func toReport(m reportModel) (domain.Report, error) {
	var content reportContent
	if err := json.Unmarshal([]byte(m.Content), &content); err != nil {
		return domain.Report{}, fmt.Errorf("%w: decode report %s: %v", domain.ErrStorageUnavailable, m.ReportID, err)
	}
	return domain.Report{
		ID:             m.ReportID.String(),
		ProjectID:      m.ProjectID.String(),
		InspectionDate: domain.DateOnly(m.InspectionDate),
		CreatedDate:    m.CreatedAt.UTC(),
		ClosedDate:     content.ClosedDate,
		Inspector:      content.Inspector,
		Status:         domain.ReportStatus(m.Status),
		Results:        content.Results,
		Signatures:     content.Signatures,
		Score:          content.Score,
		Evaluation:     content.Evaluation,
		CategoryScores: content.CategoryScores,
	}, nil
}

func encodeReportContent(r domain.Report) (string, error) {
	raw, err := json.Marshal(reportContent{
		Inspector:      r.Inspector,
		Results:        r.Results,
		Signatures:     r.Signatures,
		Score:          r.Score,
		Evaluation:     r.Evaluation,
		CategoryScores: r.CategoryScores,
		ClosedDate:     r.ClosedDate,
	})
	if err != nil {
		return "", fmt.Errorf("encode report content: %w", err)
	}
	return string(raw), nil
}

// toProfile normalizes legacy role names stored by earlier releases.
func toProfile(m profileModel) domain.UserProfile {
	ids := []string{}
	if m.AssignedProjectIDs != "" {
		_ = json.Unmarshal([]byte(m.AssignedProjectIDs), &ids)
	}
	return domain.UserProfile{
		ID:                 m.UserID.String(),
		Email:              m.Email,
		FullName:           m.FullName,
		Role:               domain.NormalizeRole(m.Role),
		AssignedProjectIDs: ids,
	}
}

func encodeProjectIDs(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	raw, _ := json.Marshal(ids)
	return string(raw)
}
