// Package testutils boots the full application against throwaway Postgres
// and NATS containers for integration tests. Tests are skipped unless
// LINKS_INTEGRATION is set so the unit suite stays container-free.
package testutils

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/fairway-collective/links-backend/app"
	coursemigrations "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories/migrations"
	playermigrations "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories/migrations"
	roundmigrations "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories/migrations"
	socialmigrations "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/repositories/migrations"
	tournamentmigrations "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/repositories/migrations"
	"github.com/fairway-collective/links-backend/app/shared/observability"
	"github.com/fairway-collective/links-backend/config"
	"github.com/fairway-collective/links-backend/integration_tests/containers"
)

// Env is one booted application instance with its backing containers.
type Env struct {
	Ctx    context.Context
	Cfg    *config.Config
	App    *app.App
	Server *httptest.Server
	DB     *bun.DB

	cancel context.CancelFunc
}

// Setup starts containers, migrates the schema, and boots the application.
// Cleanup is registered on t.
func Setup(t *testing.T) *Env {
	t.Helper()

	if os.Getenv("LINKS_INTEGRATION") == "" {
		t.Skip("set LINKS_INTEGRATION=1 to run integration tests")
	}

	ctx, cancel := context.WithCancel(context.Background())

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		t.Fatalf("postgres container: %v", err)
	}
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		cancel()
		t.Fatalf("nats container: %v", err)
	}
	t.Cleanup(func() { _ = natsContainer.Terminate(context.Background()) })

	if err := runMigrations(ctx, dsn); err != nil {
		cancel()
		t.Fatalf("migrations: %v", err)
	}

	cfg := &config.Config{
		Postgres: config.PostgresConfig{DSN: dsn},
		NATS:     config.NATSConfig{URL: natsURL},
		HTTP: config.HTTPConfig{
			Address:   "127.0.0.1:0",
			RateLimit: 1000,
			RateBurst: 1000,
		},
		JWT: config.JWTConfig{
			Secret:  "integration-test-secret",
			DevMode: true,
		},
		Rounds: config.RoundsConfig{AbandonAfter: time.Hour},
		Observability: config.ObservabilityConfig{
			LogLevel: "warn",
		},
	}

	obs, err := observability.Init(ctx, config.ToObsConfig(cfg))
	if err != nil {
		cancel()
		t.Fatalf("observability: %v", err)
	}

	application := &app.App{}
	if err := application.Initialize(ctx, cfg, obs); err != nil {
		cancel()
		t.Fatalf("app initialize: %v", err)
	}

	go func() {
		_ = application.Run(ctx)
	}()

	server := httptest.NewServer(application.HTTPServer.Handler())

	env := &Env{
		Ctx:    ctx,
		Cfg:    cfg,
		App:    application,
		Server: server,
		DB:     application.DB,
		cancel: cancel,
	}

	t.Cleanup(func() {
		server.Close()
		cancel()
		application.Close()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = obs.Shutdown(shutdownCtx)
	})

	return env
}

// runMigrations applies the module migrations in dependency order plus the
// River queue schema.
func runMigrations(ctx context.Context, dsn string) error {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ordered := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"player", playermigrations.Migrations},
		{"course", coursemigrations.Migrations},
		{"round", roundmigrations.Migrations},
		{"tournament", tournamentmigrations.Migrations},
		{"social", socialmigrations.Migrations},
	}

	init := migrate.NewMigrator(db, ordered[0].migrations)
	if err := init.Init(ctx); err != nil {
		return fmt.Errorf("init migration tables: %w", err)
	}

	for _, mod := range ordered {
		migrator := migrate.NewMigrator(db, mod.migrations)
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate %s: %w", mod.name, err)
		}
	}

	return runRiverMigrations(ctx, dsn)
}

func runRiverMigrations(ctx context.Context, dsn string) error {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse DSN for river: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("create pgx pool for river: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("create river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("run river migrations: %w", err)
	}
	return nil
}

// Do sends one JSON request as the given external user id (dev-mode header
// auth) and returns the status code and body.
func (e *Env) Do(t *testing.T, method, path, userID string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(e.Ctx, method, e.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp.StatusCode, data
}

// DoJSON is Do plus unmarshalling the response into out.
func (e *Env) DoJSON(t *testing.T, method, path, userID string, body, out any) int {
	t.Helper()

	status, data := e.Do(t, method, path, userID, body)
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("unmarshal %s %s response %q: %v", method, path, data, err)
		}
	}
	return status
}

// Eventually polls fn until it returns true or the deadline passes. Used for
// asynchronous projections flowing through the event bus.
func Eventually(t *testing.T, timeout time.Duration, fn func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fn()
}
