package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/procurehub/portal/internal/access"
	"github.com/procurehub/portal/pkg/db/models"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"gorm.io/gorm"
)

type store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, cols map[string]any) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// ChangePasswordInput carries the current and replacement passwords.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// Service exposes the self-service account operations.
type Service interface {
	Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, actor access.Actor, id uuid.UUID, input ProfileUpdate) (*UserDTO, error)
	ChangePassword(ctx context.Context, actor access.Actor, id uuid.UUID, input ChangePasswordInput) error
}

type service struct {
	repo   store
	hasher passwordHasher
}

// NewService builds the account service.
func NewService(repo store, hasher passwordHasher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	return &service{repo: repo, hasher: hasher}, nil
}

func (s *service) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*UserDTO, error) {
	if err := access.RequireSelfOrSuperadmin(actor, id); err != nil {
		return nil, err
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, actor access.Actor, id uuid.UUID, input ProfileUpdate) (*UserDTO, error) {
	if err := access.Require(actor, access.ActionProfileUpdate); err != nil {
		return nil, err
	}
	if err := access.RequireOwner(actor, id, "profile"); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateProfile(ctx, id, input.Columns())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	return FromModel(user), nil
}

func (s *service) ChangePassword(ctx context.Context, actor access.Actor, id uuid.UUID, input ChangePasswordInput) error {
	if err := access.Require(actor, access.ActionPasswordChange); err != nil {
		return err
	}
	if err := access.RequireOwner(actor, id, "account"); err != nil {
		return err
	}

	var missing []string
	if input.CurrentPassword == "" {
		missing = append(missing, "current_password")
	}
	if strings.TrimSpace(input.NewPassword) == "" {
		missing = append(missing, "new_password")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "current and new passwords are required").
			WithDetails(map[string]any{"missing": missing})
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(input.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "current password is incorrect")
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store password")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}
