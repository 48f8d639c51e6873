package report

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfNoPostgres skips the test when PostgreSQL is unavailable.
func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	if os.Getenv("TEST_POSTGRES_HOST") == "" {
		t.Skip("skipping postgres sink test: TEST_POSTGRES_HOST not set")
	}
	port, _ := strconv.Atoi(envOrDefault("TEST_POSTGRES_PORT", "5432"))
	db, err := postgres.New(context.Background(), config.PostgresConfig{
		Host:            os.Getenv("TEST_POSTGRES_HOST"),
		Port:            port,
		Database:        envOrDefault("TEST_POSTGRES_DB", "retrieval_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "retrieval"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		t.Skipf("skipping postgres sink test: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestPostgresSinkReplacesRows(t *testing.T) {
	db := skipIfNoPostgres(t)
	ctx := context.Background()
	sink := NewPostgresSink(db)
	require.NoError(t, sink.EnsureSchema(ctx))

	label := "test_" + strconv.FormatInt(time.Now().UnixNano(), 36)
	t.Cleanup(func() {
		db.DB.Exec(`DELETE FROM retrieval_results WHERE system = $1`, label)
	})

	require.NoError(t, sink.Write(ctx, label, sampleResults()))
	require.NoError(t, sink.Write(ctx, label, sampleResults()))

	var count int
	require.NoError(t, db.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM retrieval_results WHERE system = $1`, label).Scan(&count))
	assert.Equal(t, 2, count)

	var docID int
	require.NoError(t, db.DB.QueryRowContext(ctx,
		`SELECT doc_id FROM retrieval_results WHERE system = $1 AND query_id = 7 AND rank = 1`, label).Scan(&docID))
	assert.Equal(t, 12, docID)
}
