package graph

import (
	"context"

	"go.uber.org/zap"

	apperrors "socialgraph/backend/pkg/errors"
	"socialgraph/backend/pkg/logger"
)

// Repository handles node-level CRUD for users, posts and comments.
// Reads return a nil projection (and no error) when the node is absent.
type Repository struct {
	store  Store
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(store Store) *Repository {
	return &Repository{
		store:  store,
		logger: logger.Named("graph.repository"),
	}
}

// nodeRef describes how a node type is addressed
type nodeRef struct {
	entity string
	count  string
}

var (
	userNode    = nodeRef{entity: "user", count: `MATCH (n:User {userId: $id}) RETURN count(n) AS n`}
	postNode    = nodeRef{entity: "post", count: `MATCH (n:Post {postId: $id}) RETURN count(n) AS n`}
	commentNode = nodeRef{entity: "comment", count: `MATCH (n:Comment {commentId: $id}) RETURN count(n) AS n`}
)

func refForKind(kind TargetKind) nodeRef {
	if kind == TargetComment {
		return commentNode
	}
	return postNode
}

func existsTx(ctx context.Context, tx Tx, ref nodeRef, id string) (bool, error) {
	rows, err := tx.Match(ctx, ref.count, map[string]interface{}{"id": id})
	if err != nil {
		return false, err
	}
	return len(rows) > 0 && rows[0].int64("n") > 0, nil
}

// requireTx fails with NotFound when the node is absent
func requireTx(ctx context.Context, tx Tx, ref nodeRef, id string) error {
	ok, err := existsTx(ctx, tx, ref, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound(ref.entity, id)
	}
	return nil
}
