// Package testutil provides shared fixtures for repository and service tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	"github.com/procurehub/portal/pkg/migrate"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteDB opens an isolated in-memory database with the portal schema.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrate.AutoMigrateModels(conn))
	return conn
}

// SeedUser inserts a user with the role-specific fields filled in.
func SeedUser(t *testing.T, conn *gorm.DB, role enums.Role, username string) *models.User {
	t.Helper()

	u := &models.User{
		Username:      username,
		PasswordHash:  "hash",
		FullName:      "User " + username,
		Email:         username + "@example.com",
		ContactNumber: "555-0100",
		Address:       "1 Main St",
		Role:          role,
	}
	switch role {
	case enums.RoleVendor:
		company, vendorID := "Acme "+username, "V-"+username
		u.CompanyName, u.VendorID = &company, &vendorID
	case enums.RoleAdmin:
		employeeID, dept := "E-"+username, "Procurement"
		u.EmployeeID, u.Department = &employeeID, &dept
	}
	require.NoError(t, conn.Create(u).Error)
	return u
}
