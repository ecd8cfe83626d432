package domain

import (
	"time"
)

type InspectionStatus string

const (
	StatusCompliant     InspectionStatus = "Conforme"
	StatusNonCompliant  InspectionStatus = "Não Conforme"
	StatusNotApplicable InspectionStatus = "Não Aplicável"
)

func (s InspectionStatus) IsValid() bool {
	switch s {
	case StatusCompliant, StatusNonCompliant, StatusNotApplicable:
		return true
	default:
		return false
	}
}

// StatusPtr returns a pointer suitable for InspectionItemResult.Status.
func StatusPtr(s InspectionStatus) *InspectionStatus { return &s }

type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "Draft"
	ReportStatusCompleted ReportStatus = "Completed"
)

type Resources struct {
	Financial      bool `json:"fin"`
	Labor          bool `json:"mo"`
	Administrative bool `json:"adm"`
}

type ActionPlan struct {
	Actions     string    `json:"actions"`
	Responsible string    `json:"responsible"`
	Deadline    string    `json:"deadline"`
	Resources   Resources `json:"resources"`
}

func (p *ActionPlan) Clone() *ActionPlan {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

type Photo struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type InspectionItemResult struct {
	ItemID     string            `json:"itemId"`
	Status     *InspectionStatus `json:"status"`
	Comment    string            `json:"comment"`
	Photos     []Photo           `json:"photos"`
	ActionPlan *ActionPlan       `json:"actionPlan,omitempty"`
}

func (r InspectionItemResult) Is(status InspectionStatus) bool {
	return r.Status != nil && *r.Status == status
}

func (r InspectionItemResult) Clone() InspectionItemResult {
	out := r
	if r.Status != nil {
		out.Status = StatusPtr(*r.Status)
	}
	if r.Photos != nil {
		out.Photos = make([]Photo, len(r.Photos))
		copy(out.Photos, r.Photos)
	}
	out.ActionPlan = r.ActionPlan.Clone()
	return out
}

type Signatures struct {
	Inspector string `json:"inspector"`
	Manager   string `json:"manager"`
}

func (s Signatures) Any() bool { return s.Inspector != "" || s.Manager != "" }

type Report struct {
	ID             string                 `json:"id"`
	ProjectID      string                 `json:"projectId"`
	InspectionDate time.Time              `json:"inspectionDate"`
	CreatedDate    time.Time              `json:"createdDate"`
	ClosedDate     *time.Time             `json:"closedDate,omitempty"`
	Inspector      string                 `json:"inspector"`
	Status         ReportStatus           `json:"status"`
	Results        []InspectionItemResult `json:"results"`
	Signatures     Signatures             `json:"signatures"`
	Score          int                    `json:"score"`
	Evaluation     string                 `json:"evaluation"`
	CategoryScores map[string]int         `json:"categoryScores"`
}

func (r *Report) IsCompleted() bool { return r.Status == ReportStatusCompleted }

// Result returns the index of the result for itemID, or -1.
func (r *Report) Result(itemID string) int {
	for i := range r.Results {
		if r.Results[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// ApplyScores overwrites the derived fields from a fresh computation.
func (r *Report) ApplyScores(s ScoreSummary) {
	r.Score = s.Score
	r.Evaluation = s.Evaluation
	r.CategoryScores = s.CategoryScores
}

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

type UserProfile struct {
	ID                 string   `json:"id"`
	Email              string   `json:"email"`
	FullName           string   `json:"full_name"`
	Role               Role     `json:"role"`
	AssignedProjectIDs []string `json:"assigned_project_ids"`
}

func (u UserProfile) AssignedTo(projectID string) bool {
	for _, id := range u.AssignedProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const DateLayout = "2006-01-02"
