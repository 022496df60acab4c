package graph

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "socialgraph/backend/pkg/errors"
	"socialgraph/backend/pkg/logger"
)

// Neo4jStore implements Store on top of the official driver. Each Read or
// Write opens a session and one explicit transaction bounded by txTimeout;
// explicit transactions are used on purpose because the driver's managed
// transactions retry transient failures.
type Neo4jStore struct {
	driver    neo4j.DriverWithContext
	database  string
	txTimeout time.Duration
	observer  TxObserver
	logger    *zap.Logger
}

// Option configures a Neo4jStore
type Option func(*Neo4jStore)

// WithDatabase selects the target database
func WithDatabase(name string) Option {
	return func(s *Neo4jStore) { s.database = name }
}

// WithTxTimeout bounds every transaction on the server side
func WithTxTimeout(d time.Duration) Option {
	return func(s *Neo4jStore) { s.txTimeout = d }
}

// WithObserver reports each transaction outcome, e.g. to metrics
func WithObserver(o TxObserver) Option {
	return func(s *Neo4jStore) { s.observer = o }
}

// NewNeo4jStore wraps an existing driver
func NewNeo4jStore(driver neo4j.DriverWithContext, opts ...Option) *Neo4jStore {
	s := &Neo4jStore{
		driver:    driver,
		txTimeout: 10 * time.Second,
		logger:    logger.Named("graph.store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect creates a driver for uri and verifies it can reach the server
func Connect(ctx context.Context, uri, user, password string, opts ...Option) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewStoreFailure(apperrors.StoreNotConnected, "create driver", err)
	}
	s := NewNeo4jStore(driver, opts...)
	if err := s.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	return s, nil
}

// Read runs work inside a read transaction
func (s *Neo4jStore) Read(ctx context.Context, work func(tx Tx) error) error {
	return s.run(ctx, neo4j.AccessModeRead, modeRead, work)
}

// Write runs work inside a write transaction
func (s *Neo4jStore) Write(ctx context.Context, work func(tx Tx) error) error {
	return s.run(ctx, neo4j.AccessModeWrite, modeWrite, work)
}

// VerifyConnectivity checks the driver can reach the server
func (s *Neo4jStore) VerifyConnectivity(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return classify("verify connectivity", err)
	}
	return nil
}

// Close closes the Neo4j driver connection
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) run(ctx context.Context, access neo4j.AccessMode, mode string, work func(tx Tx) error) (err error) {
	start := time.Now()
	defer func() {
		if s.observer != nil {
			s.observer.ObserveTx(mode, time.Since(start), err)
		}
	}()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   access,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx, neo4j.WithTxTimeout(s.txTimeout))
	if err != nil {
		return s.fail("begin "+mode+" transaction", err)
	}
	defer tx.Close(ctx)

	if err := work(&neo4jTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Warn("Rollback failed", zap.String("mode", mode), zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return s.fail("commit "+mode+" transaction", err)
	}
	return nil
}

func (s *Neo4jStore) fail(operation string, err error) error {
	classified := classify(operation, err)
	s.logger.Error("Graph store failure", zap.String("operation", operation), zap.Error(err))
	return classified
}

type neo4jTx struct {
	tx neo4j.ExplicitTransaction
}

func (t *neo4jTx) Match(ctx context.Context, cypher string, params map[string]interface{}) ([]Row, error) {
	result, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, classify("run query", err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, classify("collect records", err)
	}

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := make(Row, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = record.Values[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *neo4jTx) Execute(ctx context.Context, cypher string, params map[string]interface{}) error {
	result, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return classify("run statement", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return classify("consume result", err)
	}
	return nil
}

// classify maps driver errors onto the store failure kinds. Errors that are
// already typed (e.g. NotFound raised inside a unit of work) pass through.
func classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	if apperrors.TypeOf(err) != "" {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewStoreFailure(apperrors.StoreTimeout, operation, err)
	case neo4j.IsConnectivityError(err):
		return apperrors.NewStoreFailure(apperrors.StoreNotConnected, operation, err)
	}

	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		switch {
		case strings.Contains(neoErr.Code, "ConstraintValidationFailed"):
			return apperrors.NewStoreFailure(apperrors.StoreConstraintViolation, operation, err)
		case strings.Contains(neoErr.Code, "TransactionTimedOut"):
			return apperrors.NewStoreFailure(apperrors.StoreTimeout, operation, err)
		case strings.HasPrefix(neoErr.Code, "Neo.TransientError.General.DatabaseUnavailable"):
			return apperrors.NewStoreFailure(apperrors.StoreNotConnected, operation, err)
		}
	}
	return apperrors.NewStoreFailure(apperrors.StoreQueryFailed, operation, err)
}
