package graph

import (
	"context"
)

// ============================================================================
// Comment Operations
// ============================================================================

// commentProjection follows a MATCH binding c and yields the columns commentFromRow reads
const commentProjection = `
		OPTIONAL MATCH (author:User)-[:AUTHORED]->(c)
		OPTIONAL MATCH (c)-[:BELONGS_TO]->(post:Post)
		RETURN c, author.userId AS authorId, author.username AS authorUsername, post.postId AS postId
	`

const (
	cypherCommentByID = `
		MATCH (c:Comment {commentId: $commentId})
	` + commentProjection

	cypherPatchComment = `
		MATCH (c:Comment {commentId: $commentId})
		SET c += $fields
		WITH c
	` + commentProjection

	cypherListComments = `
		MATCH (c:Comment)-[:BELONGS_TO]->(:Post {postId: $postId})
	` + commentProjection + `
		ORDER BY c.createdAt
	`
)

func findCommentTx(ctx context.Context, tx Tx, commentID string) (*Comment, error) {
	rows, err := tx.Match(ctx, cypherCommentByID, map[string]interface{}{"commentId": commentID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return commentFromRow(rows[0]), nil
}

// CreateComment creates the comment with its AUTHORED and BELONGS_TO edges
func (r *Repository) CreateComment(ctx context.Context, in NewComment) (*Comment, error) {
	var comment *Comment
	err := r.store.Write(ctx, func(tx Tx) error {
		var err error
		comment, err = linkCommentTx(ctx, tx, in)
		return err
	})
	return comment, err
}

// FindCommentByID returns the comment or nil when no such comment exists
func (r *Repository) FindCommentByID(ctx context.Context, commentID string) (*Comment, error) {
	var comment *Comment
	err := r.store.Read(ctx, func(tx Tx) error {
		var err error
		comment, err = findCommentTx(ctx, tx, commentID)
		return err
	})
	return comment, err
}

// PatchComment applies the non-nil fields of patch; nil when the comment is absent
func (r *Repository) PatchComment(ctx context.Context, commentID string, patch CommentPatch) (*Comment, error) {
	fields := patch.fields()
	if len(fields) == 0 {
		return r.FindCommentByID(ctx, commentID)
	}

	var comment *Comment
	err := r.store.Write(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, cypherPatchComment, map[string]interface{}{
			"commentId": commentID,
			"fields":    fields,
		})
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			comment = commentFromRow(rows[0])
		}
		return nil
	})
	return comment, err
}

// DeleteComment removes the comment and its edges
func (r *Repository) DeleteComment(ctx context.Context, commentID string) error {
	return r.store.Write(ctx, func(tx Tx) error {
		return cascadeCommentTx(ctx, tx, commentID)
	})
}

// ListCommentsForPost returns the post's comments oldest first
func (r *Repository) ListCommentsForPost(ctx context.Context, postID string) ([]Comment, error) {
	var comments []Comment
	err := r.store.Read(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, cypherListComments, map[string]interface{}{"postId": postID})
		if err != nil {
			return err
		}
		comments = make([]Comment, 0, len(rows))
		for _, row := range rows {
			if c := commentFromRow(row); c != nil {
				comments = append(comments, *c)
			}
		}
		return nil
	})
	return comments, err
}
