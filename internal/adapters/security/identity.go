package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
)

// LocalIdentityProvider keeps credentials in the service database and
// issues signed session tokens. Sign-out revokes the session id until the
// token would have expired anyway.
type LocalIdentityProvider struct {
	credentials ports.CredentialRepository
	hasher      *BcryptHasher
	signer      *JWTSigner
	revocations ports.SessionRevocationStore
	sessionTTL  time.Duration
	now         func() time.Time

	mu        sync.Mutex
	nextID    int
	listeners map[int]ports.SessionListener
}

type IdentityConfig struct {
	SessionTTL time.Duration
	Now        func() time.Time
}

func NewLocalIdentityProvider(
	credentials ports.CredentialRepository,
	hasher *BcryptHasher,
	signer *JWTSigner,
	revocations ports.SessionRevocationStore,
	cfg IdentityConfig,
) *LocalIdentityProvider {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &LocalIdentityProvider{
		credentials: credentials,
		hasher:      hasher,
		signer:      signer,
		revocations: revocations,
		sessionTTL:  cfg.SessionTTL,
		now:         cfg.Now,
		listeners:   make(map[int]ports.SessionListener),
	}
}

func (p *LocalIdentityProvider) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if _, err := p.credentials.GetByEmail(ctx, email); err == nil {
		return "", fmt.Errorf("%w: email already registered", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	hash, err := p.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	now := p.now().UTC()
	userID := uuid.NewString()
	err = p.credentials.Create(ctx, ports.Credential{
		UserID:       userID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrConflict) {
		return "", fmt.Errorf("%w: email already registered", domain.ErrConflict)
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (p *LocalIdentityProvider) DeleteIdentity(ctx context.Context, email string) (string, error) {
	return p.credentials.DeleteByEmail(ctx, normalizeEmail(email))
}

func (p *LocalIdentityProvider) SignIn(ctx context.Context, email, password string) (ports.Session, error) {
	cred, err := p.credentials.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return ports.Session{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if err != nil {
		return ports.Session{}, err
	}
	if err := p.hasher.Compare(cred.PasswordHash, password); err != nil {
		return ports.Session{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	now := p.now().UTC()
	session := ports.Session{
		SessionID: uuid.NewString(),
		UserID:    cred.UserID,
		Email:     cred.Email,
		ExpiresAt: now.Add(p.sessionTTL),
	}
	session.Token, err = p.signer.Sign(TokenClaims{
		UserID:    session.UserID,
		Email:     session.Email,
		SessionID: session.SessionID,
		IssuedAt:  now,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return ports.Session{}, fmt.Errorf("sign session token: %w", err)
	}
	p.notify(ports.SessionSignedIn, session)
	return session, nil
}

func (p *LocalIdentityProvider) GetSession(ctx context.Context, token string) (ports.Session, error) {
	claims, err := p.signer.Parse(strings.TrimSpace(token))
	if err != nil {
		return ports.Session{}, domain.ErrUnauthorized
	}
	if p.revocations != nil {
		revoked, err := p.revocations.IsRevoked(ctx, claims.SessionID)
		if err != nil {
			return ports.Session{}, fmt.Errorf("%w: session store: %v", domain.ErrDependencyUnavailable, err)
		}
		if revoked {
			return ports.Session{}, domain.ErrUnauthorized
		}
	}
	return ports.Session{
		Token:     token,
		SessionID: claims.SessionID,
		UserID:    claims.UserID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// SignOut is idempotent; an unparseable token has nothing to revoke.
func (p *LocalIdentityProvider) SignOut(ctx context.Context, token string) error {
	session, err := p.GetSession(ctx, token)
	if errors.Is(err, domain.ErrUnauthorized) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.revocations != nil {
		if err := p.revocations.MarkRevoked(ctx, session.SessionID, session.ExpiresAt); err != nil {
			return fmt.Errorf("%w: session store: %v", domain.ErrDependencyUnavailable, err)
		}
	}
	p.notify(ports.SessionSignedOut, session)
	return nil
}

func (p *LocalIdentityProvider) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := p.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return p.credentials.UpdatePasswordHash(ctx, userID, hash, p.now())
}

func (p *LocalIdentityProvider) OnSessionChange(listener ports.SessionListener) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = listener
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *LocalIdentityProvider) notify(event ports.SessionEvent, session ports.Session) {
	p.mu.Lock()
	listeners := make([]ports.SessionListener, 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Default().Error("session listener panicked",
						"module", "security",
						"layer", "adapter",
						"operation", "notify_session",
						"outcome", "failure",
						"event", string(event),
						"panic", rec,
					)
				}
			}()
			l(event, session)
		}()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
