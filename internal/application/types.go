package application

import (
	"io"
	"time"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Profile   domain.UserProfile `json:"profile"`
}

type SessionResponse struct {
	UserID    string             `json:"user_id"`
	ExpiresAt time.Time          `json:"expires_at"`
	Profile   domain.UserProfile `json:"profile"`
}

type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

type CreateProjectRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type UpdateProjectRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

type CreateAccountRequest struct {
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	FullName   string   `json:"full_name"`
	Role       string   `json:"role"`
	ProjectIDs []string `json:"project_ids"`
}

type UpdateUserRequest struct {
	FullName           *string   `json:"full_name"`
	Role               *string   `json:"role"`
	AssignedProjectIDs *[]string `json:"assigned_project_ids"`
}

// ResultInput is a partial edit of one item. Nil fields are left unchanged;
// an empty status string clears the answer.
type ResultInput struct {
	ItemID     string             `json:"itemId"`
	Status     *string            `json:"status"`
	Comment    *string            `json:"comment"`
	ActionPlan *domain.ActionPlan `json:"actionPlan"`
}

type SaveReportRequest struct {
	ID             string        `json:"id"`
	ProjectID      string        `json:"projectId"`
	InspectionDate string        `json:"inspectionDate"`
	Inspector      *string       `json:"inspector"`
	Results        []ResultInput `json:"results"`
}

type PhotoInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Capabilities struct {
	CanWrite         bool `json:"can_write"`
	CanSignInspector bool `json:"can_sign_inspector"`
	CanSignManager   bool `json:"can_sign_manager"`
}

type ReportView struct {
	Report            domain.Report          `json:"report"`
	Phase             domain.ReportPhase     `json:"phase"`
	MissingSignatures []domain.SignatureSlot `json:"missing_signatures"`
	Violations        []domain.Violation     `json:"violations"`
	LeadTime          *domain.LeadTime       `json:"lead_time,omitempty"`
	Capabilities      Capabilities           `json:"capabilities"`
}

type ProjectSummary struct {
	Project          domain.Project     `json:"project"`
	ReportCount      int                `json:"report_count"`
	LatestReportID   string             `json:"latest_report_id,omitempty"`
	LatestScore      *int               `json:"latest_score,omitempty"`
	LatestEvaluation string             `json:"latest_evaluation,omitempty"`
	LatestPhase      domain.ReportPhase `json:"latest_phase,omitempty"`
	PendingActions   int                `json:"pending_actions"`
	CanWrite         bool               `json:"can_write"`
}

type PendingItem struct {
	ReportID       string             `json:"report_id"`
	InspectionDate time.Time          `json:"inspection_date"`
	ItemID         string             `json:"item_id"`
	ItemText       string             `json:"item_text"`
	CategoryID     string             `json:"category_id"`
	Comment        string             `json:"comment"`
	ActionPlan     *domain.ActionPlan `json:"action_plan,omitempty"`
}

type PendingProject struct {
	Project domain.Project `json:"project"`
	Items   []PendingItem  `json:"items"`
}
