package application

import (
	"time"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
)

type Config struct {
	ServiceName     string
	ProfileCacheTTL time.Duration
	Access          domain.AccessPolicy
}

type Service struct {
	cfg      Config
	catalog  *domain.Catalog
	projects ports.ProjectRepository
	reports  ports.ReportRepository
	profiles ports.ProfileRepository
	outbox   ports.OutboxRepository
	identity ports.IdentityProvider
	photos   ports.PhotoStorage
	cache    ports.Cache
	metrics  ports.Metrics
	nowFn    func() time.Time
}

type Dependencies struct {
	Config   Config
	Catalog  *domain.Catalog
	Projects ports.ProjectRepository
	Reports  ports.ReportRepository
	Profiles ports.ProfileRepository
	Outbox   ports.OutboxRepository
	Identity ports.IdentityProvider
	Photos   ports.PhotoStorage
	Cache    ports.Cache
	Metrics  ports.Metrics
	Now      func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "site-inspection-service"
	}
	if cfg.ProfileCacheTTL <= 0 {
		cfg.ProfileCacheTTL = 5 * time.Minute
	}
	if cfg.Access.IsZero() {
		cfg.Access = domain.DefaultAccessPolicy()
	}
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Service{
		cfg:      cfg,
		catalog:  deps.Catalog,
		projects: deps.Projects,
		reports:  deps.Reports,
		profiles: deps.Profiles,
		outbox:   deps.Outbox,
		identity: deps.Identity,
		photos:   deps.Photos,
		cache:    deps.Cache,
		metrics:  metrics,
		nowFn:    nowFn,
	}
}

func (s *Service) Catalog() *domain.Catalog { return s.catalog }

type noopMetrics struct{}

func (noopMetrics) ReportSaved(string, int) {}
func (noopMetrics) ReportSigned(string) {}
func (noopMetrics) ReportCompleted(string) {}
func (noopMetrics) TransitionRejected(string, string) {}
func (noopMetrics) PhotoUpload(string) {}
