//go:build integration

package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPostgres_MigrateAndSeed runs against a throwaway Postgres container.
func TestPostgres_MigrateAndSeed(t *testing.T) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "buffr",
				"POSTGRES_PASSWORD": "buffr",
				"POSTGRES_DB":       "buffr",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://buffr:buffr@%s:%s/buffr?sslmode=disable", host, port.Port())
	gdb, err := Open(dsn, 4)
	require.NoError(t, err)
	defer Close(gdb)

	// the server may accept TCP before it accepts queries
	require.Eventually(t, func() bool { return (&Pinger{DB: gdb}).Ping() == nil }, 30*time.Second, 500*time.Millisecond)

	require.NoError(t, AutoMigrate(gdb))
	res, err := Seed(ctx, gdb)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 5, res.Rooms)
}
