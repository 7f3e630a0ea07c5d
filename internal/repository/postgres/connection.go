package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dtroode/identity-server/database"
	"github.com/dtroode/identity-server/internal/model"
)

var _ model.Database = (*Connection)(nil)

// Connection owns the pgx pool and a database/sql handle sharing it.
type Connection struct {
	*Store
	Pool *pgxpool.Pool
	DB   *sql.DB
}

func NewConection(ctx context.Context, dsn string) (*Connection, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		pool.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	conn := NewConnectionFromDB(db)
	conn.Pool = pool
	return conn, nil
}

// NewConnectionFromDB wraps an already opened *sql.DB.
func NewConnectionFromDB(db *sql.DB) *Connection {
	return &Connection{
		Store: NewStore(db),
		DB:    db,
	}
}

// InTx runs fn in a transaction. The transaction commits when fn returns
// nil and rolls back when fn returns an error or panics.
func (c *Connection) InTx(ctx context.Context, fn func(ctx context.Context, tx model.Store) error) (err error) {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cerr)
		}
	}()

	return fn(ctx, NewStore(tx))
}

func (c *Connection) Close() error {
	var err error
	if c.DB != nil {
		err = c.DB.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
	return err
}

func (c *Connection) Ping(ctx context.Context) error {
	if c.DB == nil {
		return fmt.Errorf("connection pool is nil")
	}
	return c.DB.PingContext(ctx)
}
