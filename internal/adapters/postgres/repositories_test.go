package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepos(t *testing.T) (Repositories, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	db, err := Open(conn)
	require.NoError(t, err)
	return NewRepositories(db), mock
}

var reportColumns = []string{"report_id", "project_id", "inspection_date", "status", "content", "created_at", "updated_at"}

func TestReportGetDecodesContent(t *testing.T) {
	repos, mock := newMockRepos(t)
	reportID, projectID := uuid.New(), uuid.New()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	content := `{"inspector":"Ana","results":[{"itemId":"massa-1","status":"Não Conforme","comment":"lama","photos":[],"actionPlan":{"actions":"varrer","responsible":"Carlos","deadline":"2024-03-08","resources":{"fin":false,"mo":true,"adm":false}}}],"signatures":{"inspector":"Ana","manager":""},"score":0,"evaluation":"RUIM","categoryScores":{"massa":0}}`

	mock.ExpectQuery(`SELECT \* FROM "reports" WHERE report_id = \$1`).
		WillReturnRows(sqlmock.NewRows(reportColumns).
			AddRow(reportID.String(), projectID.String(), created, "Draft", content, created, created))

	report, err := repos.Reports.Get(context.Background(), reportID.String())
	require.NoError(t, err)
	assert.Equal(t, projectID.String(), report.ProjectID)
	assert.Equal(t, "Ana", report.Signatures.Inspector)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Is(domain.StatusNonCompliant))
	assert.Equal(t, "Carlos", report.Results[0].ActionPlan.Responsible)
	assert.True(t, report.Results[0].ActionPlan.Resources.Labor)
	assert.Equal(t, map[string]int{"massa": 0}, report.CategoryScores)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), report.InspectionDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportGetNotFound(t *testing.T) {
	repos, mock := newMockRepos(t)
	mock.ExpectQuery(`SELECT \* FROM "reports"`).WillReturnRows(sqlmock.NewRows(reportColumns))

	_, err := repos.Reports.Get(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repos.Reports.Get(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportGetLatestEmptyProject(t *testing.T) {
	repos, mock := newMockRepos(t)
	mock.ExpectQuery(`SELECT \* FROM "reports" WHERE project_id = \$1 ORDER BY inspection_date DESC,created_at DESC`).
		WillReturnRows(sqlmock.NewRows(reportColumns))

	latest, err := repos.Reports.GetLatest(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestReportSaveInsertsThenUpdates(t *testing.T) {
	repos, mock := newMockRepos(t)
	report := domain.Report{
		ProjectID:      uuid.NewString(),
		InspectionDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:         domain.ReportStatusDraft,
	}

	mock.ExpectExec(`INSERT INTO "reports"`).WillReturnResult(sqlmock.NewResult(1, 1))
	saved, err := repos.Reports.Save(context.Background(), report)
	require.NoError(t, err)
	_, err = uuid.Parse(saved.ID)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE "reports" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	_, err = repos.Reports.Save(context.Background(), saved)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE "reports" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = repos.Reports.Save(context.Background(), saved)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionDeniedCarriesSetupHint(t *testing.T) {
	repos, mock := newMockRepos(t)
	mock.ExpectExec(`INSERT INTO "reports"`).
		WillReturnError(errors.New(`ERROR: new row violates row-level security policy for table "reports" (SQLSTATE 42501)`))

	_, err := repos.Reports.Save(context.Background(), domain.Report{ProjectID: uuid.NewString()})
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "re-run the permission setup")
}

func TestProjectCountReports(t *testing.T) {
	repos, mock := newMockRepos(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reports" WHERE project_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repos.Projects.CountReports(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestProjectCreateConflict(t *testing.T) {
	repos, mock := newMockRepos(t)
	mock.ExpectExec(`INSERT INTO "projects"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "projects_pkey"`))

	_, err := repos.Projects.Create(context.Background(), ports.CreateProjectParams{Name: "Obra"})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestProfileGetNormalizesLegacyRole(t *testing.T) {
	repos, mock := newMockRepos(t)
	userID, projectID := uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "full_name", "role", "assigned_project_ids", "created_at", "updated_at"}).
			AddRow(userID.String(), "eng@example.com", "Eng", "Engenheiro", `["`+projectID.String()+`"]`, now, now))

	profile, err := repos.Profiles.Get(context.Background(), userID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, profile.Role)
	assert.Equal(t, []string{projectID.String()}, profile.AssignedProjectIDs)
}

func TestOutboxMarkFailed(t *testing.T) {
	repos, mock := newMockRepos(t)
	mock.ExpectExec(`UPDATE "inspection_outbox" SET .*retry_count.*retry_count \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repos.Outbox.MarkFailed(context.Background(), uuid.New(), "broker down", time.Now()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationsAreOrdered(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.sql", "0002_normalize_roles.sql"}, names)
}
