package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/catalog"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/application"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
categories:
  - id: massa
    title: Material particulado
    subcategories:
      - title: Vias
        items:
          - id: massa-1
            text: Vias umedecidas
          - id: massa-2
            text: Pilhas cobertas
`

type memStore struct {
	mu       sync.Mutex
	projects map[string]domain.Project
	reports  map[string]domain.Report
	profiles map[string]domain.UserProfile
	tokens   map[string]string
}

func (m *memStore) List(context.Context) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, id string) (domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return domain.Project{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *memStore) Create(_ context.Context, params ports.CreateProjectParams) (domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := domain.Project{ID: uuid.NewString(), Name: params.Name, Location: params.Location, CreatedAt: params.CreatedAt}
	m.projects[p.ID] = p
	return p, nil
}

func (m *memStore) Update(ctx context.Context, params ports.UpdateProjectParams) (domain.Project, error) {
	return m.Get(ctx, params.ProjectID)
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, id)
	return nil
}

func (m *memStore) CountReports(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.reports {
		if r.ProjectID == id {
			n++
		}
	}
	return n, nil
}

type memReports struct{ *memStore }

func (m memReports) List(_ context.Context, filter ports.ReportFilter) ([]domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Report
	for _, r := range m.reports {
		if filter.ProjectID == "" || r.ProjectID == filter.ProjectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memReports) Get(_ context.Context, id string) (domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return domain.Report{}, domain.ErrNotFound
	}
	return r, nil
}

func (m memReports) GetLatest(context.Context, string) (*domain.Report, error) { return nil, nil }

func (m memReports) Save(_ context.Context, r domain.Report) (domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.reports[r.ID] = r
	return r, nil
}

type memProfiles struct{ *memStore }

func (m memProfiles) List(context.Context) ([]domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.UserProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (m memProfiles) Get(_ context.Context, id string) (domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return domain.UserProfile{}, domain.ErrNotFound
	}
	return p, nil
}

func (m memProfiles) Upsert(_ context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
	return p, nil
}

func (m memProfiles) Update(ctx context.Context, params ports.UpdateProfileParams) (domain.UserProfile, error) {
	return m.Get(ctx, params.UserID)
}

func (m memProfiles) DeleteByEmail(context.Context, string) error { return nil }

type memIdentity struct{ *memStore }

func (m memIdentity) CreateIdentity(context.Context, string, string) (string, error) {
	return uuid.NewString(), nil
}
func (m memIdentity) DeleteIdentity(context.Context, string) (string, error) { return "", nil }
func (m memIdentity) SignIn(context.Context, string, string) (ports.Session, error) {
	return ports.Session{}, domain.ErrUnauthorized
}

func (m memIdentity) GetSession(_ context.Context, token string) (ports.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[token]
	if !ok {
		return ports.Session{}, domain.ErrUnauthorized
	}
	return ports.Session{Token: token, UserID: id, ExpiresAt: time.Now().Add(time.Hour)}, nil
}
func (m memIdentity) SignOut(context.Context, string) error                { return nil }
func (m memIdentity) UpdatePassword(context.Context, string, string) error { return nil }
func (m memIdentity) OnSessionChange(ports.SessionListener) func()         { return func() {} }

func newTestServer(t *testing.T) (http.Handler, *memStore) {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)
	store := &memStore{
		projects: map[string]domain.Project{"p1": {ID: "p1", Name: "Obra Centro"}},
		reports:  map[string]domain.Report{},
		profiles: map[string]domain.UserProfile{
			"u-admin": {ID: "u-admin", Email: "admin@example.com", FullName: "Admin", Role: domain.RoleAdmin},
			"u-exec":  {ID: "u-exec", Email: "exec@example.com", FullName: "Diretoria", Role: domain.RoleExecutive},
			"u-asst":  {ID: "u-asst", Email: "asst@example.com", FullName: "Ana", Role: domain.RoleAssistant, AssignedProjectIDs: []string{"p1"}},
		},
		tokens: map[string]string{"admin-token": "u-admin", "exec-token": "u-exec", "asst-token": "u-asst"},
	}
	svc := application.NewService(application.Dependencies{
		Catalog:  cat,
		Projects: store,
		Reports:  memReports{store},
		Profiles: memProfiles{store},
		Identity: memIdentity{store},
	})
	return NewRouter(NewHandler(svc, nil)), store
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestHealthAndAuth(t *testing.T) {
	h, _ := newTestServer(t)

	rec, _ := do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec, body := do(t, h, http.MethodGet, "/v1/catalog", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "error", body["status"])

	rec, _ = do(t, h, http.MethodGet, "/v1/catalog", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/v1/catalog", "exec-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 1)
}

func TestReportLifecycleOverHTTP(t *testing.T) {
	h, _ := newTestServer(t)

	rec, body := do(t, h, http.MethodPost, "/v1/reports", "exec-token", map[string]any{"projectId": "p1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", body["code"])

	rec, body = do(t, h, http.MethodPost, "/v1/reports", "asst-token", map[string]any{
		"projectId":      "p1",
		"inspectionDate": "2024-03-01",
		"results": []map[string]any{
			{"itemId": "massa-1", "status": "Não Conforme", "actionPlan": map[string]any{"actions": "umedecer"}},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := body["data"].(map[string]any)
	report := view["report"].(map[string]any)
	reportID := report["id"].(string)
	assert.Equal(t, float64(0), report["score"])

	rec, body = do(t, h, http.MethodPost, "/v1/reports/"+reportID+"/complete", "admin-token", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	assert.Len(t, body["details"], 4)

	rec, body = do(t, h, http.MethodPost, "/v1/reports/"+reportID+"/signatures/bogus", "admin-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, body)

	rec, _ = do(t, h, http.MethodGet, "/v1/reports/"+uuid.NewString(), "exec-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProjectWithReportsConflicts(t *testing.T) {
	h, store := newTestServer(t)
	store.reports["r1"] = domain.Report{ID: "r1", ProjectID: "p1"}

	rec, body := do(t, h, http.MethodDelete, "/v1/projects/p1", "admin-token", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "REFERENTIAL_INTEGRITY", body["code"])
	assert.Equal(t, "obra possui 1 relatório(s) vinculado(s)", body["message"])
}

func TestAttachPhotoWithoutStorage(t *testing.T) {
	h, _ := newTestServer(t)
	rec, body := do(t, h, http.MethodPost, "/v1/reports", "asst-token", map[string]any{"projectId": "p1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	reportID := body["data"].(map[string]any)["report"].(map[string]any)["id"].(string)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "foto.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/reports/"+reportID+"/items/massa-1/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer asst-token")
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadGateway, out.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	h, _ := newTestServer(t)

	rec, _ := do(t, h, http.MethodGet, "/v1/admin/users", "asst-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body := do(t, h, http.MethodGet, "/v1/admin/users", "admin-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 3)

	rec, _ = do(t, h, http.MethodGet, "/v1/pending-actions?period=latest", "exec-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
