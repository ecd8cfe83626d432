package application

import (
	"context"
	"sort"
	"strings"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
)

func newer(a, b domain.Report) bool {
	if !a.InspectionDate.Equal(b.InspectionDate) {
		return a.InspectionDate.After(b.InspectionDate)
	}
	return a.CreatedDate.After(b.CreatedDate)
}

func latestByProject(reports []domain.Report) map[string]domain.Report {
	out := make(map[string]domain.Report)
	for _, r := range reports {
		if cur, ok := out[r.ProjectID]; !ok || newer(r, cur) {
			out[r.ProjectID] = r
		}
	}
	return out
}

// ListProjectSummaries returns, per project, the latest report's score and
// the number of its non-conformities that still have no corrective action.
func (s *Service) ListProjectSummaries(ctx context.Context, actor domain.UserProfile) ([]ProjectSummary, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.List(ctx, ports.ReportFilter{})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, r := range reports {
		counts[r.ProjectID]++
	}
	latest := latestByProject(reports)

	out := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		summary := ProjectSummary{
			Project:     p,
			ReportCount: counts[p.ID],
			CanWrite:    s.cfg.Access.CanWrite(actor, p.ID),
		}
		if r, ok := latest[p.ID]; ok {
			score := r.Score
			summary.LatestReportID = r.ID
			summary.LatestScore = &score
			summary.LatestEvaluation = r.Evaluation
			summary.LatestPhase = domain.Phase(&r)
			for _, res := range r.Results {
				if res.Is(domain.StatusNonCompliant) && (res.ActionPlan == nil || strings.TrimSpace(res.ActionPlan.Actions) == "") {
					summary.PendingActions++
				}
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

// ListPendingActions lists non-compliant items grouped by project, the
// projects with most findings first. Period "latest" considers each
// project's newest report; a YYYY-MM period considers every report
// inspected in that month.
func (s *Service) ListPendingActions(ctx context.Context, _ domain.UserProfile, rawPeriod string) ([]PendingProject, error) {
	period, err := domain.ParsePeriod(rawPeriod)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.List(ctx, ports.ReportFilter{})
	if err != nil {
		return nil, err
	}

	var relevant []domain.Report
	if period.Latest {
		for _, r := range latestByProject(reports) {
			relevant = append(relevant, r)
		}
	} else {
		for _, r := range reports {
			if period.Contains(r.InspectionDate) {
				relevant = append(relevant, r)
			}
		}
	}
	sort.Slice(relevant, func(i, j int) bool { return newer(relevant[i], relevant[j]) })

	byID := make(map[string]domain.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}
	grouped := make(map[string]*PendingProject)
	for _, r := range relevant {
		project, ok := byID[r.ProjectID]
		if !ok {
			continue
		}
		for _, res := range r.Results {
			if !res.Is(domain.StatusNonCompliant) {
				continue
			}
			item := PendingItem{
				ReportID:       r.ID,
				InspectionDate: r.InspectionDate,
				ItemID:         res.ItemID,
				ItemText:       "Item não encontrado",
				Comment:        res.Comment,
				ActionPlan:     res.ActionPlan.Clone(),
			}
			if ref, ok := s.catalog.Lookup(res.ItemID); ok {
				item.ItemText = ref.Item.Text
				item.CategoryID = ref.CategoryID
			}
			group, ok := grouped[project.ID]
			if !ok {
				group = &PendingProject{Project: project}
				grouped[project.ID] = group
			}
			group.Items = append(group.Items, item)
		}
	}

	out := make([]PendingProject, 0, len(grouped))
	for _, g := range grouped {
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Items) != len(out[j].Items) {
			return len(out[i].Items) > len(out[j].Items)
		}
		return out[i].Project.Name < out[j].Project.Name
	})
	return out, nil
}
