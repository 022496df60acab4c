package graph

import (
	"context"
	"testing"
)

// fakeStore scripts the graph store by Cypher statement. Every Read and
// Write shares one fakeTx so tests can inspect the statements that ran.
type fakeStore struct {
	tx        *fakeTx
	reads     int
	writes    int
	rollbacks int
}

type fakeCall struct {
	cypher string
	params map[string]interface{}
}

type fakeTx struct {
	t        *testing.T
	handlers map[string]func(params map[string]interface{}) ([]Row, error)
	calls    []fakeCall
}

func newFakeStore(t *testing.T) *fakeStore {
	return &fakeStore{tx: &fakeTx{
		t:        t,
		handlers: make(map[string]func(map[string]interface{}) ([]Row, error)),
	}}
}

// on registers the handler for a statement
func (s *fakeStore) on(cypher string, fn func(params map[string]interface{}) ([]Row, error)) *fakeStore {
	s.tx.handlers[cypher] = fn
	return s
}

// rows registers a statement that always yields rows
func (s *fakeStore) rows(cypher string, rows ...Row) *fakeStore {
	return s.on(cypher, func(map[string]interface{}) ([]Row, error) { return rows, nil })
}

// exists scripts the node count lookup of ref
func (s *fakeStore) exists(ref nodeRef, ok bool) *fakeStore {
	n := int64(0)
	if ok {
		n = 1
	}
	return s.rows(ref.count, Row{"n": n})
}

func (s *fakeStore) ran(cypher string) int {
	n := 0
	for _, c := range s.tx.calls {
		if c.cypher == cypher {
			n++
		}
	}
	return n
}

func (s *fakeStore) order() []string {
	out := make([]string, 0, len(s.tx.calls))
	for _, c := range s.tx.calls {
		out = append(out, c.cypher)
	}
	return out
}

func (s *fakeStore) Read(ctx context.Context, work func(tx Tx) error) error {
	s.reads++
	return work(s.tx)
}

func (s *fakeStore) Write(ctx context.Context, work func(tx Tx) error) error {
	s.writes++
	if err := work(s.tx); err != nil {
		s.rollbacks++
		return err
	}
	return nil
}

func (s *fakeStore) VerifyConnectivity(ctx context.Context) error { return nil }

func (s *fakeStore) Close(ctx context.Context) error { return nil }

func (tx *fakeTx) Match(ctx context.Context, cypher string, params map[string]interface{}) ([]Row, error) {
	tx.calls = append(tx.calls, fakeCall{cypher: cypher, params: params})
	fn, ok := tx.handlers[cypher]
	if !ok {
		tx.t.Fatalf("unexpected statement:\n%s", cypher)
		return nil, nil
	}
	return fn(params)
}

func (tx *fakeTx) Execute(ctx context.Context, cypher string, params map[string]interface{}) error {
	_, err := tx.Match(ctx, cypher, params)
	return err
}

func userRow(key, id, username string) Row {
	return Row{key: map[string]interface{}{
		"userId":   id,
		"username": username,
	}}
}
