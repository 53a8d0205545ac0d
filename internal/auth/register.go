package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/procurehub/portal/internal/users"
	"github.com/procurehub/portal/pkg/db"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"gorm.io/gorm"
)

const identityTakenMessage = "username, email, or ID already exists"

// RegisterService handles public account creation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	IdentityTaken(ctx context.Context, username, email, vendorID, employeeID string) ([]string, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type hasher interface {
	Hash(password string) (string, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB     txRunner
	Users  func(tx *gorm.DB) registerUserRepository
	Hasher hasher
}

type registerService struct {
	db     txRunner
	users  func(tx *gorm.DB) registerUserRepository
	hasher hasher
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository factory required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	return &registerService{db: params.DB, users: params.Users, hasher: params.Hasher}, nil
}

// UsersRepoFactory adapts users.NewRepository to the registration flow.
func UsersRepoFactory(tx *gorm.DB) registerUserRepository {
	return users.NewRepository(tx)
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	dto, err := s.buildUser(req)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users(tx)

		vendorID, employeeID := profileIdentifiers(dto.Profile)
		taken, err := repo.IdentityTaken(ctx, dto.Username, dto.Email, vendorID, employeeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check identity")
		}
		if len(taken) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, identityTakenMessage).
				WithDetails(map[string]any{"fields": taken})
		}

		user, err := repo.Create(ctx, dto)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, identityTakenMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users.FromModel(created), nil
}

func (s *registerService) buildUser(req RegisterRequest) (users.CreateUserDTO, error) {
	fields := map[string]string{
		"username":       strings.TrimSpace(req.Username),
		"password":       req.Password,
		"full_name":      strings.TrimSpace(req.FullName),
		"email":          strings.ToLower(strings.TrimSpace(req.Email)),
		"contact_number": strings.TrimSpace(req.ContactNumber),
		"address":        strings.TrimSpace(req.Address),
		"role":           strings.TrimSpace(req.Role),
	}
	var missing []string
	for _, name := range []string{"username", "password", "full_name", "email", "contact_number", "address", "role"} {
		if fields[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return users.CreateUserDTO{}, missingFields(missing)
	}

	role, err := enums.ParseRole(fields["role"])
	if err != nil {
		return users.CreateUserDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
	}
	profile, missing := users.NewProfile(role, req.CompanyName, req.VendorID, req.EmployeeID, req.Department)
	if len(missing) > 0 {
		return users.CreateUserDTO{}, missingFields(missing)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return users.CreateUserDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return users.CreateUserDTO{
		Username:      fields["username"],
		PasswordHash:  hash,
		FullName:      fields["full_name"],
		Email:         fields["email"],
		ContactNumber: fields["contact_number"],
		Address:       fields["address"],
		Profile:       profile,
	}, nil
}

func profileIdentifiers(p users.Profile) (vendorID, employeeID string) {
	switch v := p.(type) {
	case users.VendorProfile:
		return v.VendorID, ""
	case users.AdminProfile:
		return "", v.EmployeeID
	}
	return "", ""
}

func missingFields(fields []string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
		WithDetails(map[string]any{"missing": fields})
}
