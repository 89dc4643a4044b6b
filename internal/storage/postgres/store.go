package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/storage"
)

// Ensure Store satisfies the storage.MemberStore interface at compile time.
var _ storage.MemberStore = (*Store)(nil)

const uniqueViolation = "23505"

// DB is the subset of *pgxpool.Pool the store depends on.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store provides Postgres-backed persistence for members and their records.
type Store struct {
	db  DB
	log *logrus.Logger
}

// New wraps an existing connection. Callers own the schema; see Migrate.
func New(db DB, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{db: db, log: log}
}

// Open connects to databaseURL and ensures the schema exists.
func Open(ctx context.Context, databaseURL string, log *logrus.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := New(pool, log)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"host": cfg.ConnConfig.Host,
		"db":   cfg.ConnConfig.Database,
	}).Info("connected to PostgreSQL")

	return s, nil
}

// Close releases database resources. The store reports ErrNotInitialized afterwards.
func (s *Store) Close() {
	if s.db == nil {
		return
	}
	if c, ok := s.db.(interface{ Close() }); ok {
		c.Close()
	}
	s.db = nil
}

// Migrate creates the ledger tables and indexes. It is safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS members (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL UNIQUE,
			type SMALLINT NOT NULL,
			balance NUMERIC(24,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS member_records (
			id BIGSERIAL PRIMARY KEY,
			member_id BIGINT NOT NULL,
			amount NUMERIC(24,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_members_phone ON members (phone);`,
		`CREATE INDEX IF NOT EXISTS idx_member_records_member_id ON member_records (member_id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if p, ok := db.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	_, err = db.Exec(ctx, `SELECT 1`)
	return err
}

func (s *Store) conn() (DB, error) {
	if s == nil || s.db == nil {
		return nil, storage.ErrNotInitialized
	}
	return s.db, nil
}

// inTx runs fn in a transaction, rolling back on any error from fn.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return txError("begin "+op, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.log.WithFields(logrus.Fields{
				"op":    op,
				"error": rbErr,
			}).Warn("rollback failed")
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return txError("commit "+op, err)
	}
	return nil
}

func txError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", storage.ErrTransaction, op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
