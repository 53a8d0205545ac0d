package orders_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurehub/portal/internal/access"
	"github.com/procurehub/portal/internal/orders"
	"github.com/procurehub/portal/internal/quotations"
	"github.com/procurehub/portal/internal/testutil"
	"github.com/procurehub/portal/internal/users"
	"github.com/procurehub/portal/pkg/db"
	"github.com/procurehub/portal/pkg/db/models"
	"github.com/procurehub/portal/pkg/enums"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
	"github.com/procurehub/portal/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	conn       *gorm.DB
	orders     orders.Service
	quotations quotations.Service
	logs       *bytes.Buffer

	admin, otherAdmin, super, vendor, otherVendor access.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := testutil.NewSQLiteDB(t)
	client := db.NewFromGorm(conn)
	orderRepo := orders.NewRepository(conn)
	quoteRepo := quotations.NewRepository(conn)
	logs := &bytes.Buffer{}

	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:   orderRepo,
		Tx:     client,
		Bids:   quotations.NewBids(quoteRepo),
		Users:  users.NewRepository(conn),
		Logger: logger.New(logger.Options{ServiceName: "test", Output: logs}),
	})
	require.NoError(t, err)
	quoteSvc, err := quotations.NewService(quotations.ServiceParams{Repo: quoteRepo, Orders: orderRepo, Tx: client})
	require.NoError(t, err)

	actor := func(u *models.User) access.Actor { return access.Actor{UserID: u.ID, Role: u.Role} }
	return &fixture{
		conn:        conn,
		orders:      orderSvc,
		quotations:  quoteSvc,
		logs:        logs,
		admin:       actor(testutil.SeedUser(t, conn, enums.RoleAdmin, "admin")),
		otherAdmin:  actor(testutil.SeedUser(t, conn, enums.RoleAdmin, "admin2")),
		super:       actor(testutil.SeedUser(t, conn, enums.RoleSuperadmin, "root")),
		vendor:      actor(testutil.SeedUser(t, conn, enums.RoleVendor, "vendor")),
		otherVendor: actor(testutil.SeedUser(t, conn, enums.RoleVendor, "vendor2")),
	}
}

func (f *fixture) create(t *testing.T, name string) *orders.OrderDTO {
	t.Helper()
	o, err := f.orders.Create(context.Background(), f.admin, orders.CreateInput{
		ProductName: name, Description: "for the plant", Quantity: 10,
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) posted(t *testing.T, name string) *orders.OrderDTO {
	t.Helper()
	ctx := context.Background()
	o := f.create(t, name)
	_, err := f.orders.Decide(ctx, f.super, o.ID, orders.DecideInput{Action: "approve", Reason: "budgeted"})
	require.NoError(t, err)
	o, err = f.orders.Post(ctx, f.super, o.ID)
	require.NoError(t, err)
	return o
}

func (f *fixture) bid(t *testing.T, vendor access.Actor, orderID uuid.UUID) *quotations.QuotationDTO {
	t.Helper()
	q, err := f.quotations.Submit(context.Background(), vendor, quotations.SubmitInput{
		OrderID: &orderID, ProductService: "Pumps", Description: "two week lead", Categories: []string{"Equipment"},
	})
	require.NoError(t, err)
	return q
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o := f.create(t, "Hydraulic pumps")
	assert.Equal(t, enums.OrderStatusPending, o.Status)
	assert.False(t, o.VisibleToVendors)
	require.NotNil(t, o.CreatedBy)
	assert.Equal(t, f.admin.UserID, o.CreatedBy.ID)

	active, err := f.orders.List(ctx, f.vendor, orders.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, active.Items)

	o, err = f.orders.Decide(ctx, f.super, o.ID, orders.DecideInput{Action: "approve", Reason: "within budget"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusApproved, o.Status)
	require.NotNil(t, o.DecisionReason)
	assert.Equal(t, "within budget", *o.DecisionReason)

	active, err = f.orders.List(ctx, f.vendor, orders.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, active.Items, "approved but unposted orders stay hidden")

	o, err = f.orders.Post(ctx, f.super, o.ID)
	require.NoError(t, err)
	assert.True(t, o.VisibleToVendors)

	active, err = f.orders.List(ctx, f.vendor, orders.ListParams{})
	require.NoError(t, err)
	require.Len(t, active.Items, 1)

	q := f.bid(t, f.vendor, o.ID)
	assert.Equal(t, enums.QuotationStatusPending, q.Status)
	f.bid(t, f.otherVendor, o.ID)

	o, err = f.orders.ApproveVendor(ctx, f.admin, o.ID, orders.ApproveVendorInput{VendorID: f.vendor.UserID, Reason: "best price"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, o.Status)
	require.NotNil(t, o.ApprovedVendorID)
	assert.Equal(t, f.vendor.UserID, *o.ApprovedVendorID)
	require.NotNil(t, o.ApprovalReason)
	assert.Equal(t, "best price", *o.ApprovalReason)

	bids, err := f.quotations.ListForOrder(ctx, f.admin, o.ID)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	for _, b := range bids {
		if b.UserID == f.vendor.UserID {
			assert.Equal(t, enums.QuotationStatusApproved, b.Status)
			require.NotNil(t, b.ApprovalReason)
			assert.Equal(t, "best price", *b.ApprovalReason)
		} else {
			assert.Equal(t, enums.QuotationStatusPending, b.Status)
		}
	}

	_, err = f.orders.ApproveVendor(ctx, f.admin, o.ID, orders.ApproveVendorInput{VendorID: f.otherVendor.UserID, Reason: "again"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition), "got %v", err)

	history, err := f.orders.List(ctx, f.vendor, orders.ListParams{History: true})
	require.NoError(t, err)
	require.Len(t, history.Items, 1)
	active, err = f.orders.List(ctx, f.vendor, orders.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, active.Items)

	assert.Contains(t, f.logs.String(), `"message":"order.transition"`)
	assert.Contains(t, f.logs.String(), `"to":"completed"`)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders.Create(ctx, f.admin, orders.CreateInput{ProductName: "x", Description: "y"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.orders.Create(ctx, f.admin, orders.CreateInput{ProductName: " ", Description: "y", Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	other := f.otherAdmin.UserID
	_, err = f.orders.Create(ctx, f.admin, orders.CreateInput{ProductName: "x", Description: "y", Quantity: 1, CreatedByID: &other})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	for _, actor := range []access.Actor{f.super, f.vendor} {
		_, err = f.orders.Create(ctx, actor, orders.CreateInput{ProductName: "x", Description: "y", Quantity: 1})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	}

	ghost := access.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
	_, err = f.orders.Create(ctx, ghost, orders.CreateInput{ProductName: "x", Description: "y", Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDecideRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.create(t, "Valves")

	_, err := f.orders.Decide(ctx, f.admin, o.ID, orders.DecideInput{Action: "approve", Reason: "ok"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.orders.Decide(ctx, f.super, o.ID, orders.DecideInput{Action: "approve", Reason: "  "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.orders.Decide(ctx, f.super, o.ID, orders.DecideInput{Action: "archive", Reason: "ok"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.orders.Decide(ctx, f.super, uuid.New(), orders.DecideInput{Action: "approve", Reason: "ok"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	rejected, err := f.orders.Decide(ctx, f.super, o.ID, orders.DecideInput{Action: "reject", Reason: "no budget"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusRejected, rejected.Status)

	_, err = f.orders.Decide(ctx, f.super, o.ID, orders.DecideInput{Action: "approve", Reason: "changed mind"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	_, err = f.orders.Post(ctx, f.super, o.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))
}

func TestPostRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.create(t, "Gaskets")

	_, err := f.orders.Post(ctx, f.super, o.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition), "pending orders cannot be posted")

	posted := f.posted(t, "Bolts")
	_, err = f.orders.Post(ctx, f.super, posted.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition), "already posted")

	_, err = f.orders.Post(ctx, f.admin, posted.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestApproveVendorRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.posted(t, "Cable")
	f.bid(t, f.vendor, o.ID)

	_, err := f.orders.ApproveVendor(ctx, f.otherAdmin, o.ID, orders.ApproveVendorInput{VendorID: f.vendor.UserID, Reason: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "only the creating admin may select")

	_, err = f.orders.ApproveVendor(ctx, f.admin, o.ID, orders.ApproveVendorInput{VendorID: f.otherVendor.UserID, Reason: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "vendor without a bid")

	_, err = f.orders.ApproveVendor(ctx, f.admin, o.ID, orders.ApproveVendorInput{VendorID: f.vendor.UserID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	hidden := f.create(t, "Hidden")
	_, err = f.orders.ApproveVendor(ctx, f.admin, hidden.ID, orders.ApproveVendorInput{VendorID: f.vendor.UserID, Reason: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	got, err := f.orders.Get(ctx, f.admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusApproved, got.Status, "failed attempts leave the order untouched")
	assert.Nil(t, got.ApprovedVendorID)
}

func TestListPartitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.create(t, "Mine")
	theirs, err := f.orders.Create(ctx, f.otherAdmin, orders.CreateInput{ProductName: "Theirs", Description: "d", Quantity: 1})
	require.NoError(t, err)

	adminList, err := f.orders.List(ctx, f.admin, orders.ListParams{})
	require.NoError(t, err)
	require.Len(t, adminList.Items, 1)
	assert.Equal(t, mine.ID, adminList.Items[0].ID)

	superList, err := f.orders.List(ctx, f.super, orders.ListParams{})
	require.NoError(t, err)
	assert.Len(t, superList.Items, 2)

	superHistory, err := f.orders.List(ctx, f.super, orders.ListParams{History: true})
	require.NoError(t, err)
	assert.Empty(t, superHistory.Items)

	_, err = f.orders.Get(ctx, f.admin, theirs.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	_, err = f.orders.Get(ctx, f.vendor, mine.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	_, err = f.orders.Get(ctx, f.super, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.orders.List(ctx, access.Actor{}, orders.ListParams{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestListKeysetPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		o := &models.Order{
			ProductName: "Item",
			Description: "d",
			Quantity:    1,
			Status:      enums.OrderStatusPending,
			CreatedByID: f.admin.UserID,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, f.conn.Create(o).Error)
		ids = append(ids, o.ID)
	}

	first, err := f.orders.List(ctx, f.admin, orders.ListParams{Page: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, ids[2], first.Items[0].ID)
	assert.Equal(t, ids[1], first.Items[1].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := f.orders.List(ctx, f.admin, orders.ListParams{Page: pagination.Params{Limit: 2, Cursor: first.NextCursor}})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, ids[0], second.Items[0].ID)
	assert.Empty(t, second.NextCursor)

	_, err = f.orders.List(ctx, f.admin, orders.ListParams{Page: pagination.Params{Cursor: "%%%"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := orders.NewService(orders.ServiceParams{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "required"))
}
