package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/procurehub/portal/internal/testutil"
	"github.com/procurehub/portal/internal/users"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type gormTxRunner struct{ db *gorm.DB }

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type stubRegisterRepo struct {
	taken     []string
	createErr error
	created   *users.CreateUserDTO
}

func (s *stubRegisterRepo) IdentityTaken(ctx context.Context, username, email, vendorID, employeeID string) ([]string, error) {
	return s.taken, nil
}

func (s *stubRegisterRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &dto
	u := dto.ToModel()
	u.ID = uuid.New()
	return u, nil
}

func newRegisterService(t *testing.T, runner txRunner, factory func(*gorm.DB) registerUserRepository) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{DB: runner, Users: factory, Hasher: testHasher()})
	require.NoError(t, err)
	return svc
}

func vendorRequest(username, email, vendorID string) RegisterRequest {
	return RegisterRequest{
		Username:      username,
		Password:      "password123",
		FullName:      "Vera Vendor",
		Email:         email,
		ContactNumber: "555-0101",
		Address:       "12 Supply Rd",
		Role:          "vendor",
		CompanyName:   "Vera Supplies",
		VendorID:      vendorID,
	}
}

func TestRegisterHashesAndHidesPassword(t *testing.T) {
	repo := &stubRegisterRepo{}
	svc := newRegisterService(t, stubTxRunner{}, func(*gorm.DB) registerUserRepository { return repo })

	user, err := svc.Register(context.Background(), vendorRequest("vera", "Vera@Example.com", "V-9"))
	require.NoError(t, err)
	assert.Equal(t, enums.RoleVendor, user.Role)
	assert.Equal(t, "vera@example.com", user.Email)
	assert.Equal(t, "V-9", vendorIDOf(t, user))

	require.NotNil(t, repo.created)
	assert.NotEqual(t, "password123", repo.created.PasswordHash)
	ok, err := testHasher().Verify("password123", repo.created.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func vendorIDOf(t *testing.T, u *users.UserDTO) string {
	t.Helper()
	p, ok := u.Profile.(users.VendorProfile)
	require.True(t, ok, "expected vendor profile, got %T", u.Profile)
	return p.VendorID
}

func TestRegisterRoleSpecificFields(t *testing.T) {
	repo := &stubRegisterRepo{}
	svc := newRegisterService(t, stubTxRunner{}, func(*gorm.DB) registerUserRepository { return repo })

	req := vendorRequest("v", "v@example.com", "")
	_, err := svc.Register(context.Background(), req)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, map[string]any{"missing": []string{"vendor_id"}}, pkgerrors.As(err).Details())

	admin := RegisterRequest{
		Username: "a", Password: "password123", FullName: "Ada", Email: "a@example.com",
		ContactNumber: "1", Address: "HQ", Role: "ADMIN", EmployeeID: "E-1",
	}
	_, err = svc.Register(context.Background(), admin)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, map[string]any{"missing": []string{"department"}}, pkgerrors.As(err).Details())

	bad := admin
	bad.Role = "owner"
	_, err = svc.Register(context.Background(), bad)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Register(context.Background(), RegisterRequest{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Nil(t, repo.created)
}

func TestRegisterUniqueViolationMapsToValidation(t *testing.T) {
	repo := &stubRegisterRepo{createErr: errors.New("UNIQUE constraint failed: users.email")}
	svc := newRegisterService(t, stubTxRunner{}, func(*gorm.DB) registerUserRepository { return repo })

	_, err := svc.Register(context.Background(), vendorRequest("v", "v@example.com", "V-1"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, identityTakenMessage, typed.Message())
}

func TestRegisterCollisionOnEachAxis(t *testing.T) {
	conn := testutil.NewSQLiteDB(t)
	svc := newRegisterService(t, gormTxRunner{db: conn}, UsersRepoFactory)
	ctx := context.Background()

	_, err := svc.Register(ctx, vendorRequest("first", "first@example.com", "V-1"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{
		Username: "boss", Password: "password123", FullName: "Ada", Email: "boss@example.com",
		ContactNumber: "1", Address: "HQ", Role: "admin", EmployeeID: "E-1", Department: "Ops",
	})
	require.NoError(t, err)

	cases := map[string]RegisterRequest{
		"username":    vendorRequest("first", "new1@example.com", "V-2"),
		"email":       vendorRequest("new2", "FIRST@example.com", "V-3"),
		"vendor_id":   vendorRequest("new3", "new3@example.com", "V-1"),
		"employee_id": {Username: "new4", Password: "password123", FullName: "B", Email: "new4@example.com", ContactNumber: "1", Address: "HQ", Role: "admin", EmployeeID: "E-1", Department: "Ops"},
	}
	for field, req := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := svc.Register(ctx, req)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Equal(t, identityTakenMessage, typed.Message())
			assert.Equal(t, map[string]any{"fields": []string{field}}, typed.Details())
		})
	}

	var count int64
	require.NoError(t, conn.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
