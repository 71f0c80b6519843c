package room

import (
	"context"
	"testing"
	"time"

	"buffr-host/internal/domain"
	"buffr-host/internal/infrastructure/database/databasetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProperty(t *testing.T, db *gorm.DB, tenantID uuid.UUID, typ string) *domain.Property {
	t.Helper()
	p := &domain.Property{TenantID: tenantID, Name: typ + " one", Slug: typ + "-one", Type: typ, Status: domain.PropertyActive, Currency: "NAD"}
	require.NoError(t, db.Create(p).Error)
	return p
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestCreateRoom(t *testing.T) {
	db := databasetest.Open(t)
	s := &Service{DB: db}
	ctx := context.Background()
	tenant := uuid.New()
	lodge := seedProperty(t, db, tenant, domain.PropertyLodge)
	restaurant := seedProperty(t, db, tenant, domain.PropertyRestaurant)

	r, err := s.Create(ctx, tenant, lodge.PropertyID, CreateRoomInput{RoomNumber: " 101 ", RoomType: "double", Capacity: 2, NightlyRate: 850.456})
	require.NoError(t, err)
	assert.Equal(t, "101", r.RoomNumber)
	assert.Equal(t, 850.46, r.NightlyRate)
	assert.Equal(t, domain.RoomAvailable, r.Status)

	_, err = s.Create(ctx, tenant, lodge.PropertyID, CreateRoomInput{RoomNumber: "101", RoomType: "single", Capacity: 1, NightlyRate: 500})
	assert.Equal(t, ErrRoomNumberTaken, err)

	_, err = s.Create(ctx, tenant, restaurant.PropertyID, CreateRoomInput{RoomNumber: "1", RoomType: "single", Capacity: 1, NightlyRate: 500})
	assert.Equal(t, ErrNotLodging, err)

	_, err = s.Create(ctx, tenant, lodge.PropertyID, CreateRoomInput{RoomNumber: "102", RoomType: "single", Capacity: 0, NightlyRate: 500})
	assert.Equal(t, ErrInvalidCapacity, err)
	_, err = s.Create(ctx, tenant, lodge.PropertyID, CreateRoomInput{RoomNumber: "102", RoomType: "single", Capacity: 1, NightlyRate: 0})
	assert.Equal(t, ErrInvalidRate, err)

	_, err = s.Create(ctx, uuid.New(), lodge.PropertyID, CreateRoomInput{RoomNumber: "103", RoomType: "single", Capacity: 1, NightlyRate: 500})
	assert.Error(t, err, "other tenants cannot add rooms")
}

func TestListAndUpdate(t *testing.T) {
	db := databasetest.Open(t)
	s := &Service{DB: db}
	ctx := context.Background()
	tenant := uuid.New()
	p := seedProperty(t, db, tenant, domain.PropertyHotel)

	for _, n := range []string{"201", "101"} {
		_, err := s.Create(ctx, tenant, p.PropertyID, CreateRoomInput{RoomNumber: n, RoomType: "double", Capacity: 2, NightlyRate: 900})
		require.NoError(t, err)
	}
	rooms, err := s.List(ctx, tenant, p.PropertyID, "")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "101", rooms[0].RoomNumber)

	status := domain.RoomMaintenance
	rate := 950.0
	r, err := s.Update(ctx, tenant, rooms[0].RoomID, UpdateRoomInput{Status: &status, NightlyRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, domain.RoomMaintenance, r.Status)
	assert.Equal(t, 950.0, r.NightlyRate)

	maint, err := s.List(ctx, tenant, p.PropertyID, domain.RoomMaintenance)
	require.NoError(t, err)
	assert.Len(t, maint, 1)

	bad := "closed"
	_, err = s.Update(ctx, tenant, rooms[0].RoomID, UpdateRoomInput{Status: &bad})
	assert.Equal(t, ErrInvalidRoomStatus, err)
	_, err = s.Update(ctx, tenant, rooms[0].RoomID, UpdateRoomInput{})
	assert.Equal(t, ErrNoRoomUpdateFields, err)
	_, err = s.Update(ctx, uuid.New(), rooms[0].RoomID, UpdateRoomInput{Status: &status})
	assert.Equal(t, ErrRoomNotFound, err)
}

func TestAvailability(t *testing.T) {
	db := databasetest.Open(t)
	s := &Service{DB: db}
	ctx := context.Background()
	tenant := uuid.New()
	p := seedProperty(t, db, tenant, domain.PropertyGuesthouse)

	single, err := s.Create(ctx, tenant, p.PropertyID, CreateRoomInput{RoomNumber: "1", RoomType: "single", Capacity: 1, NightlyRate: 600})
	require.NoError(t, err)
	double, err := s.Create(ctx, tenant, p.PropertyID, CreateRoomInput{RoomNumber: "2", RoomType: "double", Capacity: 2, NightlyRate: 900})
	require.NoError(t, err)
	family, err := s.Create(ctx, tenant, p.PropertyID, CreateRoomInput{RoomNumber: "3", RoomType: "family", Capacity: 4, NightlyRate: 1400})
	require.NoError(t, err)
	oos := domain.RoomOutOfService
	_, err = s.Update(ctx, tenant, family.RoomID, UpdateRoomInput{Status: &oos})
	require.NoError(t, err)

	book := func(roomID uuid.UUID, in, out, status string) {
		require.NoError(t, db.Create(&domain.Booking{
			TenantID: tenant, PropertyID: p.PropertyID, RoomID: roomID, Reference: uuid.NewString()[:8],
			GuestName: "G", GuestEmail: "g@x.com", Guests: 1, CheckIn: day(in), CheckOut: day(out),
			Nights: 1, Status: status, TotalAmount: 1, Currency: "NAD", PaymentStatus: domain.PaymentUnpaid,
		}).Error)
	}
	book(double.RoomID, "2026-12-10", "2026-12-12", domain.BookingConfirmed)
	book(single.RoomID, "2026-12-01", "2026-12-20", domain.BookingCancelled)

	q := AvailabilityQuery{CheckIn: day("2026-12-11"), CheckOut: day("2026-12-13"), Guests: 1}
	rooms, err := s.Available(ctx, tenant, p.PropertyID, q)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, single.RoomID, rooms[0].RoomID, "cancelled bookings do not hold the room")

	// same-day turnover: the overlapping booking checks out the day this stay checks in
	q = AvailabilityQuery{CheckIn: day("2026-12-12"), CheckOut: day("2026-12-14"), Guests: 2}
	rooms, err = s.Available(ctx, tenant, p.PropertyID, q)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, double.RoomID, rooms[0].RoomID)

	_, err = s.Available(ctx, tenant, p.PropertyID, AvailabilityQuery{CheckIn: day("2026-12-12"), CheckOut: day("2026-12-12"), Guests: 1})
	assert.Equal(t, ErrInvalidStayDates, err)
	_, err = s.Available(ctx, tenant, p.PropertyID, AvailabilityQuery{CheckIn: day("2026-12-12"), CheckOut: day("2026-12-13"), Guests: 0})
	assert.Equal(t, ErrInvalidGuests, err)
}

func TestOverlaps(t *testing.T) {
	db := databasetest.Open(t)
	tenant := uuid.New()
	p := seedProperty(t, db, tenant, domain.PropertyHotel)
	roomID := uuid.New()
	b := &domain.Booking{
		TenantID: tenant, PropertyID: p.PropertyID, RoomID: roomID, Reference: "BH-OVERLAP",
		GuestName: "G", GuestEmail: "g@x.com", Guests: 1, CheckIn: day("2026-12-10"), CheckOut: day("2026-12-12"),
		Nights: 2, Status: domain.BookingPending, TotalAmount: 1, Currency: "NAD", PaymentStatus: domain.PaymentUnpaid,
	}
	require.NoError(t, db.Create(b).Error)

	cases := []struct {
		in, out string
		want    bool
	}{
		{"2026-12-08", "2026-12-10", false},
		{"2026-12-12", "2026-12-15", false},
		{"2026-12-09", "2026-12-11", true},
		{"2026-12-11", "2026-12-12", true},
		{"2026-12-01", "2026-12-31", true},
	}
	for _, tc := range cases {
		got, err := Overlaps(db, roomID, day(tc.in), day(tc.out), uuid.Nil)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s..%s", tc.in, tc.out)
	}

	got, err := Overlaps(db, roomID, day("2026-12-09"), day("2026-12-11"), b.BookingID)
	require.NoError(t, err)
	assert.False(t, got, "the booking itself is ignored")
}
