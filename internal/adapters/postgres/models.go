package postgres

import (
	"time"

	"github.com/google/uuid"
)

type projectModel struct {
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name"`
	Location  string    `gorm:"column:location"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (projectModel) TableName() string { return "projects" }

// reportModel keeps the queryable columns next to the opaque content blob.
type reportModel struct {
	ReportID       uuid.UUID `gorm:"column:report_id;type:uuid;primaryKey"`
	ProjectID      uuid.UUID `gorm:"column:project_id;type:uuid"`
	InspectionDate time.Time `gorm:"column:inspection_date;type:date"`
	Status         string    `gorm:"column:status"`
	Content        string    `gorm:"column:content;type:jsonb"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (reportModel) TableName() string { return "reports" }

type profileModel struct {
	UserID             uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Email              string    `gorm:"column:email"`
	FullName           string    `gorm:"column:full_name"`
	Role               string    `gorm:"column:role"`
	AssignedProjectIDs string    `gorm:"column:assigned_project_ids;type:jsonb"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (profileModel) TableName() string { return "profiles" }

type credentialModel struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (credentialModel) TableName() string { return "credentials" }

type outboxModel struct {
	OutboxID      uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType     string     `gorm:"column:event_type"`
	PartitionKey  string     `gorm:"column:partition_key"`
	Payload       string     `gorm:"column:payload;type:jsonb"`
	SchemaVersion string     `gorm:"column:schema_version"`
	RetryCount    int        `gorm:"column:retry_count"`
	PublishedAt   *time.Time `gorm:"column:published_at"`
	LastError     *string    `gorm:"column:last_error"`
	LastErrorAt   *time.Time `gorm:"column:last_error_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (outboxModel) TableName() string { return "inspection_outbox" }
