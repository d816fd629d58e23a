//go:build integration

package mongo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

func setupMongoContainer(t *testing.T, ctx context.Context) *DocumentStore {
	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	store, client, err := Open(ctx, Config{
		URI:      fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
		Database: "bookkeeper_test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	return store
}

func TestIntegration_MongoDocumentStore(t *testing.T) {
	ctx := context.Background()
	store := setupMongoContainer(t, ctx)

	data, version, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, data)
	require.Zero(t, version)

	doc := `{"users":{"1":{"role":"admin"}},"sessions":{},"transactions":{"4":{"amount":12.5,"session_id":2}},"debts":{},"sequences":{"transactions":4}}`
	v1, err := store.Save(ctx, []byte(doc), 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), v1)

	_, err = store.Save(ctx, []byte(`{}`), 0)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
	_, err = store.Save(ctx, []byte(`{}`), 7)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	data, version, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, v1, version)
	require.JSONEq(t, doc, string(data))

	v2, err := store.Save(ctx, []byte(`{"users":{}}`), v1)
	require.NoError(t, err)
	require.Equal(t, int64(2), v2)
}
