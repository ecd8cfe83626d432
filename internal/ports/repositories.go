package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
)

type CreateProjectParams struct {
	Name      string
	Location  string
	CreatedAt time.Time
}

type UpdateProjectParams struct {
	ProjectID string
	Name      *string
	Location  *string
}

type ProjectRepository interface {
	List(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, projectID string) (domain.Project, error)
	Create(ctx context.Context, params CreateProjectParams) (domain.Project, error)
	Update(ctx context.Context, params UpdateProjectParams) (domain.Project, error)
	Delete(ctx context.Context, projectID string) error
	CountReports(ctx context.Context, projectID string) (int64, error)
}

type ReportFilter struct {
	ProjectID string
}

// ReportRepository stores a report as a single unit. Save inserts when the
// report has no id and replaces the whole aggregate otherwise.
type ReportRepository interface {
	List(ctx context.Context, filter ReportFilter) ([]domain.Report, error)
	Get(ctx context.Context, reportID string) (domain.Report, error)
	GetLatest(ctx context.Context, projectID string) (*domain.Report, error)
	Save(ctx context.Context, report domain.Report) (domain.Report, error)
}

type UpdateProfileParams struct {
	UserID             string
	FullName           *string
	Role               *domain.Role
	AssignedProjectIDs *[]string
}

type ProfileRepository interface {
	List(ctx context.Context) ([]domain.UserProfile, error)
	Get(ctx context.Context, userID string) (domain.UserProfile, error)
	Upsert(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
	Update(ctx context.Context, params UpdateProfileParams) (domain.UserProfile, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CredentialRepository interface {
	Create(ctx context.Context, cred Credential) error
	GetByEmail(ctx context.Context, email string) (Credential, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string, at time.Time) error
	DeleteByEmail(ctx context.Context, email string) (string, error)
}

type OutboxEvent struct {
	EventID       uuid.UUID
	EventType     string
	PartitionKey  string
	Payload       []byte
	OccurredAt    time.Time
	SchemaVersion string
}

type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	RetryCount   int
	PublishedAt  *time.Time
	LastError    *string
	LastErrorAt  *time.Time
	CreatedAt    time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error
}
