package clickhouse

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"fitmetrics/internal/storage/migrations"
)

// setupTestCH spins up a ClickHouse container and returns a connected Conn
// with migrations applied. Skips the test if Docker is unavailable.
func setupTestCH(t *testing.T) *Conn {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		Env: map[string]string{
			"CLICKHOUSE_DB": "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections"),
			wait.ForListeningPort("9000/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("clickhouse container unavailable: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://%s:%s/test", host, port.Port())

	conn, err := NewConn(ctx, dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	require.NoError(t, migrations.RunClickhouse(ctx, conn))

	return conn
}
