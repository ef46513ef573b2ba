// Package pg talks to a managed PostgreSQL backend directly: posts, comments
// and likes are read and written with SQL, and the backend's change
// notifications are consumed with LISTEN.
//
// The schema and the notification triggers belong to the backend; the copy
// under migrations/ is what the integration tests provision.
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/itchan-dev/blogfeed/shared/config"
	"github.com/itchan-dev/blogfeed/shared/logger"
	_ "github.com/lib/pq" // Registers the PostgreSQL driver
)

// EventsChannel is the NOTIFY channel the backend triggers publish on.
const EventsChannel = "blogfeed_events"

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ConnectionConfig holds database connection pool settings.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LightweightConnectionConfig suits a client that issues one query per user action.
func LightweightConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// ListenerConfig controls reconnection of the LISTEN connection.
type ListenerConfig struct {
	MinReconnectInterval time.Duration
	MaxReconnectInterval time.Duration
	PingInterval         time.Duration
	BufferSize           int
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		MinReconnectInterval: time.Second,
		MaxReconnectInterval: time.Minute,
		PingInterval:         90 * time.Second,
		BufferSize:           64,
	}
}

type Storage struct {
	db       *sql.DB
	connStr  string
	listener ListenerConfig
}

func ConnString(cfg config.Pg) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Dbname, cfg.SSLMode)
}

// Connect opens a pool against the managed database and verifies it with a ping.
func Connect(ctx context.Context, connStr string, connCfg ConnectionConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(connCfg.MaxOpenConns)
	db.SetMaxIdleConns(connCfg.MaxIdleConns)
	db.SetConnMaxLifetime(connCfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(connCfg.ConnMaxIdleTime)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func New(ctx context.Context, cfg config.Pg, subscription config.Subscription) (*Storage, error) {
	connStr := ConnString(cfg)
	logger.Log.Info("connecting to db", "component", "pg", "host", cfg.Host, "dbname", cfg.Dbname)
	db, err := Connect(ctx, connStr, LightweightConnectionConfig())
	if err != nil {
		return nil, err
	}

	listener := DefaultListenerConfig()
	if subscription.ReconnectInterval > 0 {
		listener.MinReconnectInterval = subscription.ReconnectInterval
	}
	if subscription.PingInterval > 0 {
		listener.PingInterval = subscription.PingInterval
	}
	if subscription.BufferSize > 0 {
		listener.BufferSize = subscription.BufferSize
	}
	return &Storage{db: db, connStr: connStr, listener: listener}, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// WithTx runs fn inside a transaction, committing when it returns nil.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if transaction is already committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
