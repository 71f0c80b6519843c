package order

import (
	"context"
	"testing"

	"buffr-host/internal/domain"
	"buffr-host/internal/infrastructure/database/databasetest"
	"buffr-host/internal/infrastructure/events"
	"buffr-host/internal/infrastructure/events/eventstest"
	"buffr-host/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc        *Service
	db         *gorm.DB
	rec        *eventstest.Recorder
	tenant     uuid.UUID
	restaurant *domain.Property
	platter    *domain.MenuItem
	soda       *domain.MenuItem
}

func newFixture(t *testing.T) *fixture {
	db := databasetest.Open(t)
	f := &fixture{db: db, rec: &eventstest.Recorder{}, tenant: uuid.New()}
	f.svc = &Service{DB: db, Events: f.rec, Metrics: metrics.New(prometheus.NewRegistry())}
	f.restaurant = &domain.Property{TenantID: f.tenant, Name: "Kapana Grill", Slug: "kapana-grill", Type: domain.PropertyRestaurant, Status: domain.PropertyActive, Currency: "NAD"}
	require.NoError(t, db.Create(f.restaurant).Error)
	f.platter = &domain.MenuItem{TenantID: f.tenant, PropertyID: f.restaurant.PropertyID, Name: "Kapana platter", Category: "mains", Price: 145.5, Available: true}
	f.soda = &domain.MenuItem{TenantID: f.tenant, PropertyID: f.restaurant.PropertyID, Name: "Soda", Category: "drinks", Price: 18, Available: true}
	require.NoError(t, db.Create(f.platter).Error)
	require.NoError(t, db.Create(f.soda).Error)
	return f
}

func table(s string) *string { return &s }

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, f.tenant, CreateInput{
		PropertyID:  f.restaurant.PropertyID,
		TableNumber: table("T4"),
		Items: []ItemInput{
			{MenuItemID: f.platter.MenuItemID, Quantity: 2},
			{MenuItemID: f.soda.MenuItemID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Equal(t, 345.0, o.TotalAmount)
	assert.Equal(t, "NAD", o.Currency)
	require.Len(t, o.Items, 2)
	assert.Equal(t, 291.0, o.Items[0].LineTotal)

	// later price changes do not touch the captured price
	require.NoError(t, f.db.Model(f.platter).Update("price", 200).Error)
	got, err := f.svc.Get(ctx, f.tenant, o.OrderID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, 345.0, got.TotalAmount)

	assert.Equal(t, []string{events.Subject(f.tenant.String(), "order", "created")}, f.rec.Subjects())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.svc.Metrics.OrdersCreated.WithLabelValues("table")))
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := []ItemInput{{MenuItemID: f.platter.MenuItemID, Quantity: 1}}

	_, err := f.svc.Create(ctx, f.tenant, CreateInput{PropertyID: f.restaurant.PropertyID, Items: item})
	assert.Equal(t, ErrDestinationMissing, err)
	_, err = f.svc.Create(ctx, f.tenant, CreateInput{PropertyID: f.restaurant.PropertyID, TableNumber: table("1")})
	assert.Equal(t, ErrNoItems, err)
	_, err = f.svc.Create(ctx, f.tenant, CreateInput{PropertyID: f.restaurant.PropertyID, TableNumber: table("1"),
		Items: []ItemInput{{MenuItemID: f.platter.MenuItemID, Quantity: 0}}})
	assert.Equal(t, ErrInvalidQuantity, err)

	require.NoError(t, f.db.Model(f.soda).Update("available", false).Error)
	_, err = f.svc.Create(ctx, f.tenant, CreateInput{PropertyID: f.restaurant.PropertyID, TableNumber: table("1"),
		Items: []ItemInput{{MenuItemID: f.soda.MenuItemID, Quantity: 1}}})
	assert.Equal(t, ErrItemUnavailable, err)

	hotel := &domain.Property{TenantID: f.tenant, Name: "Etuna", Slug: "etuna", Type: domain.PropertyHotel, Status: domain.PropertyActive, Currency: "NAD"}
	require.NoError(t, f.db.Create(hotel).Error)
	_, err = f.svc.Create(ctx, f.tenant, CreateInput{PropertyID: hotel.PropertyID, TableNumber: table("1"), Items: item})
	assert.Equal(t, ErrNotRestaurant, err)

	var count int64
	require.NoError(t, f.db.Model(&domain.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderStatusFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, err := f.svc.Create(ctx, f.tenant, CreateInput{PropertyID: f.restaurant.PropertyID, TableNumber: table("2"),
		Items: []ItemInput{{MenuItemID: f.soda.MenuItemID, Quantity: 1}}})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.tenant, o.OrderID, "served")
	assert.EqualError(t, err, "Cannot move a pending order to served")

	for _, st := range []string{"preparing", "ready", "served", "paid"} {
		got, err := f.svc.UpdateStatus(ctx, f.tenant, o.OrderID, st)
		require.NoError(t, err, st)
		assert.Equal(t, st, got.Status)
	}
	_, err = f.svc.UpdateStatus(ctx, f.tenant, o.OrderID, "cancelled")
	var te *TransitionError
	assert.ErrorAs(t, err, &te)

	_, err = f.svc.UpdateStatus(ctx, f.tenant, o.OrderID, "eaten")
	assert.Equal(t, ErrInvalidOrderStatus, err)
	_, err = f.svc.UpdateStatus(ctx, uuid.New(), o.OrderID, "paid")
	assert.Equal(t, ErrOrderNotFound, err)

	assert.Contains(t, f.rec.Subjects(), events.Subject(f.tenant.String(), "order", "paid"))

	list, err := f.svc.List(ctx, f.tenant, ListFilter{Status: "paid"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
