package postgres

import "gorm.io/gorm"

type Repositories struct {
	Projects    *ProjectRepository
	Reports     *ReportRepository
	Profiles    *ProfileRepository
	Credentials *CredentialRepository
	Outbox      *OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Projects:    &ProjectRepository{db: db},
		Reports:     &ReportRepository{db: db},
		Profiles:    &ProfileRepository{db: db},
		Credentials: &CredentialRepository{db: db},
		Outbox:      &OutboxRepository{db: db},
	}
}
