package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procurehub/portal/internal/users"
	pkgAuth "github.com/procurehub/portal/pkg/auth"
	"github.com/procurehub/portal/pkg/auth/session"
	"github.com/procurehub/portal/pkg/config"
	"github.com/procurehub/portal/pkg/db/models"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid username or password"

// Service defines the session behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
}

type userRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type credentialVerifier interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
	NeedsRehash(encoded string) bool
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string, principal session.Principal) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (session.Rotation, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	Passwords      credentialVerifier
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Now            func() time.Time
}

type service struct {
	users     userRepository
	passwords credentialVerifier
	session   sessionManager
	jwtCfg    config.JWTConfig
	now       func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Passwords == nil {
		return nil, fmt.Errorf("password verifier is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		users:     params.UserRepo,
		passwords: params.Passwords,
		session:   params.SessionManager,
		jwtCfg:    params.JWTConfig,
		now:       now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	principal := session.Principal{UserID: user.ID, Role: user.Role}
	accessID := session.NewAccessID()
	accessToken, err := s.mint(principal, accessID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.session.Generate(ctx, accessID, principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}

	return &LoginResponse{
		TokenPair: TokenPair{AccessToken: accessToken, RefreshToken: refreshToken, Role: user.Role},
		User:      users.FromModel(user),
	}, nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	rotation, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}
	if rotation.Principal.UserID != claims.UserID {
		_ = s.session.Revoke(ctx, rotation.AccessID)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	accessToken, err := s.mint(rotation.Principal, rotation.AccessID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rotation.RefreshToken,
		Role:         rotation.Principal.Role,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	input := strings.TrimSpace(username)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByUsername(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := s.passwords.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	// Legacy bcrypt hashes are upgraded in place; a failed upgrade keeps the old hash.
	if s.passwords.NeedsRehash(user.PasswordHash) {
		if hash, err := s.passwords.Hash(password); err == nil {
			if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err == nil {
				user.PasswordHash = hash
			}
		}
	}
	return user, nil
}

func (s *service) mint(principal session.Principal, accessID string) (string, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		UserID: principal.UserID,
		Role:   principal.Role,
		JTI:    accessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}
