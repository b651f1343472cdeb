package migrations_test

import (
	"context"
	"testing"

	"github.com/lls2023049/campus-events/internal/testutil"
	"github.com/lls2023049/campus-events/migrations"
)

func TestApply_RecordsMigrations(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS schema_migrations`); err != nil {
		t.Fatalf("drop schema_migrations: %v", err)
	}

	if err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", count)
	}

	if err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}

	var count2 int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count2); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count2 != count {
		t.Fatalf("expected migration count unchanged, got %d vs %d", count2, count)
	}
}

func TestSeedDemo_Idempotent(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	if err := migrations.SeedDemo(ctx, pool); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var events int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&events); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events == 0 {
		t.Fatalf("expected demo events to be inserted")
	}

	if err := migrations.SeedDemo(ctx, pool); err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	var events2 int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&events2); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events2 != events {
		t.Fatalf("expected seed to be a no-op on a populated database")
	}
}
