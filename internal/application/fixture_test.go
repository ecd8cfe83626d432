package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
	"github.com/stretchr/testify/require"
)

type fakeProjects struct {
	mu       sync.Mutex
	items    map[string]domain.Project
	reports  *fakeReports
	failList error
}

func (f *fakeProjects) List(context.Context) ([]domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]domain.Project, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeProjects) Get(_ context.Context, id string) (domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return domain.Project{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjects) Create(_ context.Context, params ports.CreateProjectParams) (domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := domain.Project{ID: uuid.NewString(), Name: params.Name, Location: params.Location, CreatedAt: params.CreatedAt}
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProjects) Update(_ context.Context, params ports.UpdateProjectParams) (domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[params.ProjectID]
	if !ok {
		return domain.Project{}, domain.ErrNotFound
	}
	if params.Name != nil {
		p.Name = *params.Name
	}
	if params.Location != nil {
		p.Location = *params.Location
	}
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProjects) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeProjects) CountReports(ctx context.Context, id string) (int64, error) {
	rs, _ := f.reports.List(ctx, ports.ReportFilter{ProjectID: id})
	return int64(len(rs)), nil
}

type fakeReports struct {
	mu      sync.Mutex
	items   map[string]domain.Report
	saves   int
	failErr error
}

func (f *fakeReports) List(_ context.Context, filter ports.ReportFilter) ([]domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Report
	for _, r := range f.items {
		if filter.ProjectID == "" || r.ProjectID == filter.ProjectID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i], out[j]) })
	return out, nil
}

func (f *fakeReports) Get(_ context.Context, id string) (domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return domain.Report{}, domain.ErrNotFound
	}
	return cloneReport(r), nil
}

func (f *fakeReports) GetLatest(ctx context.Context, projectID string) (*domain.Report, error) {
	rs, _ := f.List(ctx, ports.ReportFilter{ProjectID: projectID})
	if len(rs) == 0 {
		return nil, nil
	}
	latest := cloneReport(rs[0])
	return &latest, nil
}

func (f *fakeReports) Save(_ context.Context, r domain.Report) (domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return domain.Report{}, f.failErr
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	f.saves++
	f.items[r.ID] = cloneReport(r)
	return r, nil
}

func cloneReport(r domain.Report) domain.Report {
	out := r
	out.Results = make([]domain.InspectionItemResult, len(r.Results))
	for i, res := range r.Results {
		out.Results[i] = res.Clone()
	}
	return out
}

type fakeProfiles struct {
	mu        sync.Mutex
	items     map[string]domain.UserProfile
	upsertErr error
	gets      int
}

func (f *fakeProfiles) List(context.Context) ([]domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.UserProfile, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProfiles) Get(_ context.Context, id string) (domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	p, ok := f.items[id]
	if !ok {
		return domain.UserProfile{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) Upsert(_ context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return domain.UserProfile{}, f.upsertErr
	}
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProfiles) Update(_ context.Context, params ports.UpdateProfileParams) (domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[params.UserID]
	if !ok {
		return domain.UserProfile{}, domain.ErrNotFound
	}
	if params.FullName != nil {
		p.FullName = *params.FullName
	}
	if params.Role != nil {
		p.Role = *params.Role
	}
	if params.AssignedProjectIDs != nil {
		p.AssignedProjectIDs = *params.AssignedProjectIDs
	}
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProfiles) DeleteByEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.items {
		if p.Email == email {
			delete(f.items, id)
		}
	}
	return nil
}

type fakeIdentity struct {
	mu        sync.Mutex
	users     map[string]string // email -> user id
	passwords map[string]string // user id -> password
	sessions  map[string]ports.Session
}

func (f *fakeIdentity) CreateIdentity(_ context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[email]; ok {
		return "", fmt.Errorf("%w: email already registered", domain.ErrConflict)
	}
	id := uuid.NewString()
	f.users[email] = id
	f.passwords[id] = password
	return id, nil
}

func (f *fakeIdentity) DeleteIdentity(_ context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.users[email]
	if !ok {
		return "", domain.ErrNotFound
	}
	delete(f.users, email)
	delete(f.passwords, id)
	return id, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (ports.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.users[email]
	if !ok || f.passwords[id] != password {
		return ports.Session{}, domain.ErrUnauthorized
	}
	s := ports.Session{Token: "tok-" + id, SessionID: uuid.NewString(), UserID: id, Email: email, ExpiresAt: time.Now().Add(time.Hour)}
	f.sessions[s.Token] = s
	return s, nil
}

func (f *fakeIdentity) GetSession(_ context.Context, token string) (ports.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return ports.Session{}, domain.ErrUnauthorized
	}
	return s, nil
}

func (f *fakeIdentity) SignOut(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeIdentity) UpdatePassword(_ context.Context, userID, pw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[userID] = pw
	return nil
}

func (f *fakeIdentity) OnSessionChange(ports.SessionListener) func() { return func() {} }

type fakePhotos struct {
	err  error
	keys []string
}

func (f *fakePhotos) Upload(_ context.Context, u ports.PhotoUpload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(u.Body); err != nil {
		return "", err
	}
	key := u.ReportID + "/" + u.ItemID + "/" + u.PhotoID
	f.keys = append(f.keys, key)
	return "https://photos.example.com/" + key, nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func (f *fakeOutbox) Enqueue(_ context.Context, e ports.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeOutbox) FetchUnpublished(context.Context, int) ([]ports.OutboxRecord, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkPublished(context.Context, uuid.UUID, time.Time) error { return nil }

func (f *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, time.Time) error { return nil }

func (f *fakeOutbox) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}

type fakeMetrics struct {
	mu       sync.Mutex
	rejected []string
}

func (f *fakeMetrics) ReportSaved(string, int) {}
func (f *fakeMetrics) ReportSigned(string) {}
func (f *fakeMetrics) ReportCompleted(string) {}
func (f *fakeMetrics) PhotoUpload(string) {}
func (f *fakeMetrics) TransitionRejected(op, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, op+":"+reason)
}

type fixture struct {
	svc      *Service
	projects *fakeProjects
	reports  *fakeReports
	profiles *fakeProfiles
	identity *fakeIdentity
	photos   *fakePhotos
	cache    *fakeCache
	outbox   *fakeOutbox
	metrics  *fakeMetrics
	now      time.Time

	admin     domain.UserProfile
	executive domain.UserProfile
	manager   domain.UserProfile
	assistant domain.UserProfile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog, err := domain.NewCatalog([]domain.ChecklistCategory{
		{ID: "massa", Title: "Controle de Massa", SubCategories: []domain.ChecklistSubCategory{
			{Title: "Solo", Items: []domain.ChecklistItem{{ID: "massa-1", Text: "Solo coberto"}, {ID: "massa-2", Text: "Vias limpas"}}},
		}},
		{ID: "efluentes", Title: "Efluentes", SubCategories: []domain.ChecklistSubCategory{
			{Title: "Drenagem", Items: []domain.ChecklistItem{{ID: "efluentes-1", Text: "Caixas de retenção"}, {ID: "efluentes-2", Text: "Banheiros químicos"}}},
		}},
	})
	require.NoError(t, err)

	reports := &fakeReports{items: map[string]domain.Report{}}
	f := &fixture{
		reports:  reports,
		projects: &fakeProjects{items: map[string]domain.Project{}, reports: reports},
		profiles: &fakeProfiles{items: map[string]domain.UserProfile{}},
		identity: &fakeIdentity{users: map[string]string{}, passwords: map[string]string{}, sessions: map[string]ports.Session{}},
		photos:   &fakePhotos{},
		cache:    &fakeCache{data: map[string]string{}},
		outbox:   &fakeOutbox{},
		metrics:  &fakeMetrics{},
		now:      time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.projects.items["p1"] = domain.Project{ID: "p1", Name: "Obra Centro", Location: "São Paulo"}
	f.projects.items["p2"] = domain.Project{ID: "p2", Name: "Obra Norte", Location: "Campinas"}

	f.admin = domain.UserProfile{ID: "u-admin", Email: "admin@example.com", FullName: "Admin", Role: domain.RoleAdmin}
	f.executive = domain.UserProfile{ID: "u-exec", Email: "dir@example.com", FullName: "Diretora", Role: domain.RoleExecutive, AssignedProjectIDs: []string{"p1"}}
	f.manager = domain.UserProfile{ID: "u-mgr", Email: "eng@example.com", FullName: "Bruno Engenheiro", Role: domain.RoleManager, AssignedProjectIDs: []string{"p1"}}
	f.assistant = domain.UserProfile{ID: "u-asst", Email: "ana@example.com", FullName: "Ana Assistente", Role: domain.RoleAssistant, AssignedProjectIDs: []string{"p1"}}
	for _, u := range []domain.UserProfile{f.admin, f.executive, f.manager, f.assistant} {
		f.profiles.items[u.ID] = u
	}

	f.svc = NewService(Dependencies{
		Config:   Config{ServiceName: "test"},
		Catalog:  catalog,
		Projects: f.projects,
		Reports:  f.reports,
		Profiles: f.profiles,
		Outbox:   f.outbox,
		Identity: f.identity,
		Photos:   f.photos,
		Cache:    f.cache,
		Metrics:  f.metrics,
		Now:      func() time.Time { return f.now },
	})
	return f
}

func strPtr(s string) *string { return &s }

func answerAll(status domain.InspectionStatus, ids ...string) []ResultInput {
	out := make([]ResultInput, 0, len(ids))
	for _, id := range ids {
		out = append(out, ResultInput{ItemID: id, Status: strPtr(string(status))})
	}
	return out
}

// readyDraft saves a fully answered draft for p1 with one complete NC plan.
func (f *fixture) readyDraft(t *testing.T) ReportView {
	t.Helper()
	results := answerAll(domain.StatusCompliant, "massa-1", "efluentes-1", "efluentes-2")
	results = append(results, ResultInput{
		ItemID:     "massa-2",
		Status:     strPtr(string(domain.StatusNonCompliant)),
		Comment:    strPtr("lama na via"),
		ActionPlan: &domain.ActionPlan{Actions: "lavar rodas", Responsible: "Carlos", Deadline: "2024-03-20"},
	})
	view, err := f.svc.SaveReport(context.Background(), f.assistant, SaveReportRequest{ProjectID: "p1", Results: results})
	require.NoError(t, err)
	return view
}

func hasPrefix(values []string, prefix string) bool {
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return false
}
