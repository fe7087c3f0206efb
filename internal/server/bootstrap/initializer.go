// Package bootstrap lazily prepares the backing store: it makes sure the
// application database and its schema exist before the first query runs,
// while tolerating any number of concurrent callers and concurrent
// processes doing the same thing.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/dmitrijs2005/llave/internal/common"
	"github.com/dmitrijs2005/llave/internal/logging"
	"github.com/dmitrijs2005/llave/internal/server/config"
	"github.com/dmitrijs2005/llave/internal/server/migrations"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateInitialized
)

// flight is the single-slot in-flight future shared by every caller that
// arrives while an initialization sequence is running. err is written
// before done is closed and never afterwards.
type flight struct {
	done chan struct{}
	err  error
}

// Initializer guards the one piece of process-wide mutable state in the
// system. The state flag and the in-flight future are one atomic unit:
// both change only under mu, so at most one sequence runs no matter how
// many callers race on a cold process.
//
// A failed sequence resets the state to uninitialized, delivering the
// error to every waiter and allowing a later call to retry.
type Initializer struct {
	cfg *config.Config
	db  *sql.DB
	log logging.Logger

	mu     sync.Mutex
	state  state
	flight *flight

	// replaced in tests
	runFn  func(ctx context.Context) error
	openFn func(dsn string) (*sql.DB, error)
}

func NewInitializer(cfg *config.Config, db *sql.DB, log logging.Logger) *Initializer {
	i := &Initializer{
		cfg: cfg,
		db:  db,
		log: log.With("module", "bootstrap"),
	}
	i.runFn = i.initialize
	i.openFn = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	return i
}

// Ensure runs the initialization sequence exactly once per process (unless
// it fails) and blocks until the outcome is known. Concurrent callers
// attach to the in-flight sequence instead of starting another one. A
// caller whose context expires stops waiting, but the sequence keeps
// running for the benefit of the other waiters.
func (i *Initializer) Ensure(ctx context.Context) error {
	i.mu.Lock()

	if i.state == stateInitialized {
		i.mu.Unlock()
		return nil
	}

	if i.state == stateInitializing {
		f := i.flight
		i.mu.Unlock()
		return i.await(ctx, f)
	}

	f := &flight{done: make(chan struct{})}
	i.state = stateInitializing
	i.flight = f
	i.mu.Unlock()

	go i.run(f)

	return i.await(ctx, f)
}

func (i *Initializer) run(f *flight) {
	// detached from any single caller's lifetime
	f.err = i.runFn(context.Background())

	i.mu.Lock()
	if f.err == nil {
		i.state = stateInitialized
	} else {
		i.state = stateUninitialized
	}
	i.flight = nil
	i.mu.Unlock()

	close(f.done)
}

func (i *Initializer) await(ctx context.Context, f *flight) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, ctx.Err())
	}
}

func (i *Initializer) initialize(ctx context.Context) error {

	if err := i.ensureDatabase(ctx); err != nil {
		return err
	}

	if err := i.pingTarget(ctx); err != nil {
		return err
	}

	if err := i.migrate(ctx); err != nil {
		if isDuplicate(err) {
			// another process won the schema race
			i.log.Info(ctx, "schema already present", "db", i.cfg.DBName)
			return nil
		}
		return fmt.Errorf("%w: migration error: %v", common.ErrStoreUnavailable, err)
	}

	i.log.Info(ctx, "store initialized", "db", i.cfg.DBName)
	return nil
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ensureDatabase connects to the administrative database and creates the
// application database when it does not exist yet. Losing the creation
// race to another process is success.
func (i *Initializer) ensureDatabase(ctx context.Context) error {
	name := i.cfg.DBName
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("%w: %q", common.ErrInvalidIdentifier, name)
	}

	admin, err := i.openFn(i.cfg.AdminDSN())
	if err != nil {
		return fmt.Errorf("%w: admin connect: %v", common.ErrStoreUnavailable, err)
	}
	defer admin.Close()

	pingCtx, cancel := context.WithTimeout(ctx, i.cfg.ConnectTimeout)
	defer cancel()
	if err := admin.PingContext(pingCtx); err != nil {
		return fmt.Errorf("%w: admin connect: %v", common.ErrStoreUnavailable, err)
	}

	var one int
	lookupCtx, lookupCancel := context.WithTimeout(ctx, i.cfg.QueryTimeout)
	defer lookupCancel()
	err = admin.QueryRowContext(lookupCtx, `SELECT 1 FROM pg_database WHERE datname = $1`, name).Scan(&one)
	if err == nil {
		i.log.Debug(ctx, "database exists", "db", name)
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: database lookup: %v", common.ErrStoreUnavailable, err)
	}

	// CREATE DATABASE cannot take a bind parameter; the name passed the
	// identifier check above.
	createCtx, createCancel := context.WithTimeout(ctx, i.cfg.QueryTimeout)
	defer createCancel()
	if _, err := admin.ExecContext(createCtx, "CREATE DATABASE "+name); err != nil {
		if isDuplicate(err) {
			i.log.Info(ctx, "database created by another process", "db", name)
			return nil
		}
		return fmt.Errorf("%w: create database: %v", common.ErrStoreUnavailable, err)
	}

	i.log.Info(ctx, "database created", "db", name)
	return nil
}

func (i *Initializer) pingTarget(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, i.cfg.ConnectTimeout)
	defer cancel()
	if err := i.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("%w: connect: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

func (i *Initializer) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")

	migrateCtx, cancel := context.WithTimeout(ctx, i.cfg.QueryTimeout)
	defer cancel()

	if err := goose.UpContext(migrateCtx, i.db, "."); err != nil {
		return err
	}

	return nil
}

// Check reports whether the target database answers queries. Used by the
// health endpoint.
func (i *Initializer) Check(ctx context.Context) (string, error) {
	checkCtx, cancel := context.WithTimeout(ctx, i.cfg.QueryTimeout)
	defer cancel()

	var version string
	if err := i.db.QueryRowContext(checkCtx, `SELECT version()`).Scan(&version); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return version, nil
}

// SQLSTATE codes for duplicate definitions that concurrent processes can
// legitimately produce: duplicate_database, duplicate_table,
// duplicate_object, unique_violation.
var duplicateCodes = map[string]struct{}{
	"42P04": {},
	"42P07": {},
	"42710": {},
	"23505": {},
}

func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := duplicateCodes[pgErr.Code]
		return ok
	}
	return strings.Contains(err.Error(), "already exists")
}
