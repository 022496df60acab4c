package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "socialgraph/backend/pkg/errors"
	"socialgraph/backend/pkg/logger"
)

// Relationships owns every edge write. Each exported operation is a single
// write transaction, so its preconditions and effects are atomic.
type Relationships struct {
	store  Store
	logger *zap.Logger
}

// NewRelationships creates the relationship engine over store
func NewRelationships(store Store) *Relationships {
	return &Relationships{
		store:  store,
		logger: logger.Named("graph.relationships"),
	}
}

// ============================================================================
// Authorship
// ============================================================================

const (
	cypherPostAuthorCount = `
		MATCH (:User)-[r:CREATED]->(:Post {postId: $postId})
		RETURN count(r) AS n
	`

	cypherLinkAuthor = `
		MATCH (u:User {userId: $userId}), (p:Post {postId: $postId})
		CREATE (u)-[:CREATED]->(p)
		SET p.author = u.userId
	`

	cypherLinkComment = `
		MATCH (u:User {userId: $userId}), (post:Post {postId: $postId})
		CREATE (c:Comment {
			commentId: $commentId,
			content: $content,
			likeCount: 0,
			createdAt: datetime($createdAt)
		})
		CREATE (u)-[:AUTHORED]->(c)
		CREATE (c)-[:BELONGS_TO]->(post)
		RETURN c, u.userId AS authorId, u.username AS authorUsername, post.postId AS postId
	`
)

func linkAuthorTx(ctx context.Context, tx Tx, userID, postID string) error {
	if err := requireTx(ctx, tx, userNode, userID); err != nil {
		return err
	}
	if err := requireTx(ctx, tx, postNode, postID); err != nil {
		return err
	}

	rows, err := tx.Match(ctx, cypherPostAuthorCount, map[string]interface{}{"postId": postID})
	if err != nil {
		return err
	}
	if len(rows) > 0 && rows[0].int64("n") > 0 {
		return apperrors.NewConflict(fmt.Sprintf("post %s already has an author", postID))
	}

	return tx.Execute(ctx, cypherLinkAuthor, map[string]interface{}{
		"userId": userID,
		"postId": postID,
	})
}

func linkCommentTx(ctx context.Context, tx Tx, in NewComment) (*Comment, error) {
	if err := requireTx(ctx, tx, userNode, in.AuthorID); err != nil {
		return nil, err
	}
	if err := requireTx(ctx, tx, postNode, in.PostID); err != nil {
		return nil, err
	}

	rows, err := tx.Match(ctx, cypherLinkComment, map[string]interface{}{
		"userId":    in.AuthorID,
		"postId":    in.PostID,
		"commentId": uuid.New().String(),
		"content":   in.Content,
		"createdAt": nowString(),
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewStoreFailure(apperrors.StoreQueryFailed, "create comment", nil)
	}
	return commentFromRow(rows[0]), nil
}

// LinkAuthor creates the single CREATED edge of a post and stamps its author
func (e *Relationships) LinkAuthor(ctx context.Context, userID, postID string) error {
	err := e.store.Write(ctx, func(tx Tx) error {
		return linkAuthorTx(ctx, tx, userID, postID)
	})
	if err != nil {
		return err
	}
	e.logger.Debug("Author linked", zap.String("user_id", userID), zap.String("post_id", postID))
	return nil
}

// LinkComment creates a comment together with its AUTHORED and BELONGS_TO edges
func (e *Relationships) LinkComment(ctx context.Context, in NewComment) (*Comment, error) {
	var comment *Comment
	err := e.store.Write(ctx, func(tx Tx) error {
		var err error
		comment, err = linkCommentTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Comment linked",
		zap.String("comment_id", comment.ID),
		zap.String("post_id", in.PostID),
		zap.String("author", in.AuthorID))
	return comment, nil
}
