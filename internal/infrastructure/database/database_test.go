package database

import (
	"context"
	"testing"

	"buffr-host/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector_Schemes(t *testing.T) {
	for _, dsn := range []string{
		"postgres://u:p@localhost:5432/buffr",
		"postgresql://u:p@localhost:5432/buffr",
		"mysql://u:p@localhost:3306/buffr",
		"sqlserver://u:p@localhost:1433?database=buffr",
		"sqlite://buffr.db",
		"file:buffr.db",
		":memory:",
	} {
		d, err := Dialector(dsn)
		require.NoError(t, err, dsn)
		assert.NotNil(t, d, dsn)
	}

	_, err := Dialector("mongodb://localhost")
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestMysqlDSN(t *testing.T) {
	assert.Equal(t, "u:p@tcp(db:3306)/buffr?charset=utf8mb4&parseTime=True&loc=UTC", mysqlDSN("u:p@db:3306/buffr"))
	assert.Equal(t, "tcp(db:3306)/buffr?parseTime=true", mysqlDSN("db:3306/buffr?parseTime=true"))
}

func TestOpen_SQLiteAndPing(t *testing.T) {
	db, err := Open("sqlite://file::memory:", 1)
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, AutoMigrate(db))

	p := &Pinger{DB: db}
	assert.NoError(t, p.Ping())
	assert.Error(t, (&Pinger{}).Ping())
}

func TestTenantCode(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	assert.Equal(t, "ET-A1B2C3", TenantCode("Etuna", id))
	assert.Equal(t, "XX-A1B2C3", TenantCode("42", id))
	assert.Equal(t, "QX-A1B2C3", TenantCode("Q", id))
}

func TestSeed_Idempotent(t *testing.T) {
	db, err := Open("sqlite://file::memory:", 1)
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, AutoMigrate(db))
	ctx := context.Background()

	first, err := Seed(ctx, db)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, 2, first.Properties)
	assert.Equal(t, 5, first.Rooms)
	assert.Equal(t, 5, first.MenuItems)

	var guesthouse domain.Property
	require.NoError(t, db.Where("slug = ?", "etuna-guesthouse").First(&guesthouse).Error)
	assert.Equal(t, "Etuna Guesthouse", guesthouse.Name)
	assert.Equal(t, first.TenantID, guesthouse.TenantID)
	assert.JSONEq(t, `["wifi","parking","pool","breakfast","conference"]`, string(guesthouse.Amenities))

	var owner domain.User
	require.NoError(t, db.Where("email = ?", "owner@etuna.example").First(&owner).Error)
	assert.Equal(t, "owner", owner.Role)

	second, err := Seed(ctx, db)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.TenantID, second.TenantID)

	var count int64
	db.Model(&domain.Room{}).Count(&count)
	assert.Equal(t, int64(5), count)
}

func TestParseSeed_RequiresTenant(t *testing.T) {
	_, err := ParseSeed([]byte("owner:\n  email: a@b.co\n"))
	assert.Error(t, err)
}

func TestParseSeed_Etuna(t *testing.T) {
	f, err := ParseSeed(etunaSeed)
	require.NoError(t, err)
	require.Len(t, f.Properties, 2)

	type room struct {
		Number string
		Type   string
		Rate   float64
	}
	var got []room
	for _, r := range f.Properties[0].Rooms {
		got = append(got, room{r.RoomNumber, r.RoomType, r.NightlyRate})
	}
	want := []room{
		{"101", "standard", 850},
		{"102", "standard", 850},
		{"201", "deluxe", 1250},
		{"301", "family", 1650},
		{"401", "executive", 1950},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("guesthouse rooms mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, f.Properties[1].Rooms)
}
