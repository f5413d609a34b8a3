package sweeper

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

func TestRedisLocker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, container.Terminate(ctx))
	}()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	locker, err := NewRedisLocker(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()))
	require.NoError(t, err)
	defer locker.Close()

	ok, err := locker.TryLock(ctx, "test:lock", 200*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locker.TryLock(ctx, "test:lock", 200*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok, "second replica must not get the lease")

	assert.Eventually(t, func() bool {
		ok, err := locker.TryLock(ctx, "test:lock", 200*time.Millisecond)
		return err == nil && ok
	}, 2*time.Second, 50*time.Millisecond)
}

func TestNewRedisLocker_InvalidURL(t *testing.T) {
	_, err := NewRedisLocker(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
