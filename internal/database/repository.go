package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrTxAborted means a savepoint could not be rolled back and the enclosing
// transaction must not commit.
var ErrTxAborted = errors.New("transaction aborted")

// Repository groups the per-table repositories over one connection, either
// the pool or a single transaction.
type Repository struct {
	db      *sql.DB
	c       conn
	dialect Dialect

	Items    *ItemRepo
	Sprints  *SprintRepo
	Activity *ActivityRepo
	Projects *ProjectRepo
}

// NewRepository creates a new Repository instance wrapping the given database connection.
func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	r := newBound(conn{q: db, dialect: dialect})
	r.db = db
	r.dialect = dialect
	return r
}

func newBound(c conn) *Repository {
	return &Repository{
		c:        c,
		dialect:  c.dialect,
		Items:    &ItemRepo{c: c},
		Sprints:  &SprintRepo{c: c},
		Activity: &ActivityRepo{c: c},
		Projects: &ProjectRepo{c: c},
	}
}

// WithTx runs fn against a Repository bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
// Calling WithTx on a transaction-bound Repository runs fn in that transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(newBound(conn{q: tx, dialect: r.dialect}))
	})
}

// Savepoint runs fn inside a savepoint of the bound transaction. When fn
// fails only its writes are undone, the transaction stays usable and fn's
// error is returned. On a pool-bound Repository fn runs directly.
func (r *Repository) Savepoint(ctx context.Context, name string, fn func() error) error {
	if r.db != nil {
		return fn()
	}
	if _, err := r.c.exec(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("%w: opening savepoint %s: %w", ErrTxAborted, name, err)
	}
	if err := fn(); err != nil {
		if _, rbErr := r.c.exec(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("%w: rolling back savepoint %s: %w", ErrTxAborted, name, errors.Join(err, rbErr))
		}
		return err
	}
	if _, err := r.c.exec(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("%w: releasing savepoint %s: %w", ErrTxAborted, name, err)
	}
	return nil
}

// DB exposes the underlying pool, nil for a transaction-bound Repository.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Ping checks connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}
