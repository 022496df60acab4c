package graph

import (
	"context"
	"time"
)

// Row is one record of a query result, keyed by the RETURN column names.
type Row map[string]interface{}

// Tx is a single unit of work against the graph store. Everything run
// through one Tx commits or rolls back together.
type Tx interface {
	// Match runs a read (or read-returning) pattern and buffers every row.
	Match(ctx context.Context, cypher string, params map[string]interface{}) ([]Row, error)
	// Execute runs a write pattern and discards its result.
	Execute(ctx context.Context, cypher string, params map[string]interface{}) error
}

// Store is the transactional capability the repository and relationship
// engine are built on. Implementations report failures as
// *errors.ErrStoreFailure with a distinct kind and never retry on their own.
type Store interface {
	Read(ctx context.Context, work func(tx Tx) error) error
	Write(ctx context.Context, work func(tx Tx) error) error
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// TxObserver receives the outcome of every store transaction.
type TxObserver interface {
	ObserveTx(mode string, elapsed time.Duration, err error)
}

const (
	modeRead  = "read"
	modeWrite = "write"
)
