//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vadimbarashkov/url-shortener-kv/internal/adapter/kv"
	"github.com/vadimbarashkov/url-shortener-kv/internal/config"
	"github.com/vadimbarashkov/url-shortener-kv/migrations"
	"github.com/vadimbarashkov/url-shortener-kv/pkg/postgres"
)

func setupPostgres(t testing.TB) config.Postgres {
	t.Helper()

	ctx := context.Background()

	pgUser := "test"
	pgPassword := "test"
	pgDB := "url_shortener"

	pgCont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDB,
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForListeningPort("5432/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgCont.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate postgres container: %v", err)
		}
	})

	pgHost, err := pgCont.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	pgPort, err := pgCont.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return config.Postgres{
		User:     pgUser,
		Password: pgPassword,
		Host:     pgHost,
		Port:     pgPort.Int(),
		DB:       pgDB,
		SSLMode:  "disable",
	}
}

func TestStore_Integration(t *testing.T) {
	cfg := setupPostgres(t)
	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.DSN())
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	require.NoError(t, postgres.RunMigrations(db, migrations.FS))

	store := New(db)

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Put(ctx, fmt.Sprintf("url:%d", i), "v"))
	}
	require.NoError(t, store.Put(ctx, "other:1", "v"))
	require.NoError(t, store.Put(ctx, "url:1", "overwritten"))

	value, err := store.Get(ctx, "url:1")
	require.NoError(t, err)
	assert.Equal(t, "overwritten", value)

	_, err = store.Get(ctx, "url:missing")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)

	var keys []string
	cursor := ""
	for {
		page, err := store.List(ctx, "url:", cursor, 2)
		require.NoError(t, err)

		keys = append(keys, page.Keys...)
		if page.Complete {
			break
		}
		cursor = page.Cursor
	}

	assert.Equal(t, []string{"url:1", "url:2", "url:3", "url:4", "url:5"}, keys)
}
