package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pkgAuth "github.com/procurehub/portal/pkg/auth"
	"github.com/procurehub/portal/pkg/auth/session"
	"github.com/procurehub/portal/pkg/config"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/security"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubLoginRepo struct {
	byUsername map[string]*models.User
	rehashed   string
}

func (s *stubLoginRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := s.byUsername[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubLoginRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	s.rehashed = hash
	return nil
}

type stubSessions struct {
	records map[string]stubSession
	revoked []string
	err     error
}

type stubSession struct {
	token     string
	principal session.Principal
}

func newStubSessions() *stubSessions {
	return &stubSessions{records: map[string]stubSession{}}
}

func (s *stubSessions) Generate(ctx context.Context, accessID string, principal session.Principal) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	token := "refresh-" + accessID
	s.records[accessID] = stubSession{token: token, principal: principal}
	return token, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (session.Rotation, error) {
	rec, ok := s.records[oldAccessID]
	if !ok || rec.token != provided {
		return session.Rotation{}, session.ErrInvalidRefreshToken
	}
	delete(s.records, oldAccessID)
	newID := session.NewAccessID()
	s.records[newID] = stubSession{token: "refresh-" + newID, principal: rec.principal}
	return session.Rotation{AccessID: newID, RefreshToken: "refresh-" + newID, Principal: rec.principal}, nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	delete(s.records, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "procurehub", ExpirationMinutes: 30}
}

func testHasher() *security.Hasher {
	return security.NewHasher(config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := testHasher().Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func buildTestService(t *testing.T, sessions *stubSessions, users ...*models.User) (Service, *stubLoginRepo) {
	t.Helper()
	repo := &stubLoginRepo{byUsername: map[string]*models.User{}}
	for _, u := range users {
		repo.byUsername[u.Username] = u
	}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		Passwords:      testHasher(),
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo
}

func TestServiceLoginMintsRoleClaim(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Username:     "boss",
		PasswordHash: mustHashPassword(t, "pa55word"),
		Role:         enums.RoleSuperadmin,
	}
	sessions := newStubSessions()
	svc, _ := buildTestService(t, sessions, user)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: " boss ", Password: "pa55word"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.RoleSuperadmin || claims.UserID != user.ID {
		t.Fatalf("unexpected claims %+v", claims)
	}
	rec, ok := sessions.records[claims.ID]
	if !ok || rec.token != resp.RefreshToken {
		t.Fatalf("expected refresh session keyed by jti %s", claims.ID)
	}
	if resp.User == nil || resp.User.Username != "boss" {
		t.Fatalf("expected user in response")
	}
}

func TestServiceLoginGenericFailure(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Username:     "vendor",
		PasswordHash: mustHashPassword(t, "right"),
		Role:         enums.RoleVendor,
	}
	svc, _ := buildTestService(t, newStubSessions(), user)

	_, wrongPassword := svc.Login(context.Background(), LoginRequest{Username: "vendor", Password: "wrong"})
	_, unknownUser := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "right"})

	for _, err := range []error{wrongPassword, unknownUser} {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		if typed.Message() != invalidCredentialsMessage {
			t.Fatalf("expected generic message, got %q", typed.Message())
		}
	}
}

func TestServiceLoginUpgradesBcryptHash(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("old-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &models.User{ID: uuid.New(), Username: "legacy", PasswordHash: string(legacy), Role: enums.RoleAdmin}
	svc, repo := buildTestService(t, newStubSessions(), user)

	if _, err := svc.Login(context.Background(), LoginRequest{Username: "legacy", Password: "old-secret"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if repo.rehashed == "" || repo.rehashed == string(legacy) {
		t.Fatal("expected argon2id rehash to be stored")
	}
}

func TestServiceLoginSessionFailure(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "a", PasswordHash: mustHashPassword(t, "pw"), Role: enums.RoleAdmin}
	sessions := newStubSessions()
	sessions.err = errors.New("redis down")
	svc, _ := buildTestService(t, sessions, user)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "a", Password: "pw"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	principal := session.Principal{UserID: uuid.New(), Role: enums.RoleVendor}
	sessions := newStubSessions()
	svc, _ := buildTestService(t, sessions)

	oldID := session.NewAccessID()
	refresh, _ := sessions.Generate(context.Background(), oldID, principal)
	expired, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now().Add(-2*time.Hour), pkgAuth.AccessTokenPayload{
		UserID: principal.UserID,
		Role:   principal.Role,
		JTI:    oldID,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: expired, RefreshToken: refresh})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	if err != nil {
		t.Fatalf("parse refreshed token: %v", err)
	}
	if claims.ID == oldID {
		t.Fatal("expected a new jti")
	}
	if _, ok := sessions.records[oldID]; ok {
		t.Fatal("old session should be gone")
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{AccessToken: expired, RefreshToken: refresh})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected reuse to fail, got %v", err)
	}
}

func TestServiceLogoutRevokes(t *testing.T) {
	sessions := newStubSessions()
	svc, _ := buildTestService(t, sessions)

	if err := svc.Logout(context.Background(), "jti-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-1" {
		t.Fatalf("expected revoke of jti-1, got %v", sessions.revoked)
	}
	if err := svc.Logout(context.Background(), ""); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for empty id, got %v", err)
	}
}
