// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// schemaLockKey identifies the advisory lock that serializes tests which
// drop and recreate the tracker schema.
const schemaLockKey int64 = 0x7472_6163_6b72 // "trackr"

// LockSchema holds a session-level advisory lock on a dedicated connection
// until the test ends, so packages running in parallel do not reset the
// schema under each other.
func LockSchema(t testing.TB, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection for schema lock: %v", err)
	}
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", schemaLockKey); err != nil {
		conn.Release()
		t.Fatalf("acquire schema lock: %v", err)
	}

	t.Cleanup(func() {
		defer conn.Release()
		if _, err := conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", schemaLockKey); err != nil {
			t.Logf("release schema lock: %v", err)
		}
	})
}

// DropSchema removes the users and tasks tables and the goose version table,
// so the next migration run starts from scratch.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS tasks, users, goose_db_version CASCADE`); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

var emailSeq atomic.Uint64

// UniqueEmail returns an address no other test in this run will use.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@example.test", prefix, time.Now().UnixNano(), emailSeq.Add(1))
}
