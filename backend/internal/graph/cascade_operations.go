package graph

import (
	"context"

	"go.uber.org/zap"
)

// ============================================================================
// Cascade deletes
// ============================================================================
//
// Each cascade removes edges explicitly before the nodes they touch, then
// deletes the node with a plain DELETE. A plain DELETE fails while any edge
// remains, so a missed edge type rolls the whole transaction back instead of
// silently detaching it.

const (
	// Comments
	cypherUnlikeComments = `
		MATCH (:User)-[l:LIKES]->(c:Comment)
		WHERE c.commentId IN $commentIds
		DELETE l
	`
	cypherDeleteCommentAuthorship = `
		MATCH (:User)-[r:AUTHORED]->(c:Comment)
		WHERE c.commentId IN $commentIds
		DELETE r
	`
	cypherDeleteCommentMembership = `
		MATCH (c:Comment)-[r:BELONGS_TO]->(:Post)
		WHERE c.commentId IN $commentIds
		DELETE r
	`
	cypherDeleteComments = `
		MATCH (c:Comment)
		WHERE c.commentId IN $commentIds
		DELETE c
	`

	// Posts
	cypherCommentsOfPosts = `
		MATCH (c:Comment)-[:BELONGS_TO]->(p:Post)
		WHERE p.postId IN $postIds
		RETURN c.commentId AS commentId
	`
	cypherUnlikePosts = `
		MATCH (:User)-[l:LIKES]->(p:Post)
		WHERE p.postId IN $postIds
		DELETE l
	`
	cypherDeletePostAuthorship = `
		MATCH (:User)-[r:CREATED]->(p:Post)
		WHERE p.postId IN $postIds
		DELETE r
	`
	cypherDeletePosts = `
		MATCH (p:Post)
		WHERE p.postId IN $postIds
		DELETE p
	`

	// Users
	cypherWithdrawLikes = `
		MATCH (:User {userId: $userId})-[l:LIKES]->(t)
		WITH t, collect(l) AS edges
		FOREACH (e IN edges | DELETE e)
		WITH t, size(edges) AS removed
		SET t.likeCount = CASE
			WHEN coalesce(t.likeCount, 0) > removed THEN t.likeCount - removed
			ELSE 0
		END
	`
	cypherCommentsByUser = `
		MATCH (:User {userId: $userId})-[:AUTHORED]->(c:Comment)
		RETURN c.commentId AS commentId
	`
	cypherPostsByUser = `
		MATCH (:User {userId: $userId})-[:CREATED]->(p:Post)
		RETURN p.postId AS postId
	`
	cypherDeleteFriendEdges = `
		MATCH (:User {userId: $userId})-[r:FRIEND]-(:User)
		DELETE r
	`
	cypherDeleteUser = `
		MATCH (u:User {userId: $userId})
		DELETE u
	`

	cypherRecountLikes = `
		MATCH (t)
		WHERE t:Post OR t:Comment
		OPTIONAL MATCH (:User)-[l:LIKES]->(t)
		WITH t, count(l) AS actual
		WHERE coalesce(t.likeCount, -1) <> actual
		SET t.likeCount = actual
		RETURN count(t) AS corrected
	`
)

func columnValues(rows []Row, column string) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if v := row.str(column); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func executeAll(ctx context.Context, tx Tx, params map[string]interface{}, statements ...string) error {
	for _, stmt := range statements {
		if err := tx.Execute(ctx, stmt, params); err != nil {
			return err
		}
	}
	return nil
}

// deleteCommentsTx deletes the comments with their LIKES, AUTHORED and
// BELONGS_TO edges. The liking users lose nothing but the edge.
func deleteCommentsTx(ctx context.Context, tx Tx, commentIDs []string) error {
	if len(commentIDs) == 0 {
		return nil
	}
	return executeAll(ctx, tx, map[string]interface{}{"commentIds": commentIDs},
		cypherUnlikeComments,
		cypherDeleteCommentAuthorship,
		cypherDeleteCommentMembership,
		cypherDeleteComments,
	)
}

// deletePostsTx deletes the posts, their comments and every edge touching either
func deletePostsTx(ctx context.Context, tx Tx, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	params := map[string]interface{}{"postIds": postIDs}

	rows, err := tx.Match(ctx, cypherCommentsOfPosts, params)
	if err != nil {
		return err
	}
	if err := deleteCommentsTx(ctx, tx, columnValues(rows, "commentId")); err != nil {
		return err
	}

	return executeAll(ctx, tx, params,
		cypherUnlikePosts,
		cypherDeletePostAuthorship,
		cypherDeletePosts,
	)
}

func cascadeCommentTx(ctx context.Context, tx Tx, commentID string) error {
	if err := requireTx(ctx, tx, commentNode, commentID); err != nil {
		return err
	}
	return deleteCommentsTx(ctx, tx, []string{commentID})
}

func cascadePostTx(ctx context.Context, tx Tx, postID string) error {
	if err := requireTx(ctx, tx, postNode, postID); err != nil {
		return err
	}
	return deletePostsTx(ctx, tx, []string{postID})
}

// cascadeUserTx removes the user's likes (decrementing the liked counters),
// the comments they wrote, the posts they created with everything under them,
// their friendships and finally the user node.
func cascadeUserTx(ctx context.Context, tx Tx, userID string) error {
	if err := requireTx(ctx, tx, userNode, userID); err != nil {
		return err
	}
	params := map[string]interface{}{"userId": userID}

	if err := tx.Execute(ctx, cypherWithdrawLikes, params); err != nil {
		return err
	}

	rows, err := tx.Match(ctx, cypherCommentsByUser, params)
	if err != nil {
		return err
	}
	if err := deleteCommentsTx(ctx, tx, columnValues(rows, "commentId")); err != nil {
		return err
	}

	rows, err = tx.Match(ctx, cypherPostsByUser, params)
	if err != nil {
		return err
	}
	if err := deletePostsTx(ctx, tx, columnValues(rows, "postId")); err != nil {
		return err
	}

	return executeAll(ctx, tx, params,
		cypherDeleteFriendEdges,
		cypherDeleteUser,
	)
}

// CascadeDeleteUser deletes a user and everything that depends on it
func (e *Relationships) CascadeDeleteUser(ctx context.Context, userID string) error {
	err := e.store.Write(ctx, func(tx Tx) error {
		return cascadeUserTx(ctx, tx, userID)
	})
	if err != nil {
		return err
	}
	e.logger.Info("User deleted", zap.String("user_id", userID))
	return nil
}

// CascadeDeletePost deletes a post, its comments and all their edges
func (e *Relationships) CascadeDeletePost(ctx context.Context, postID string) error {
	err := e.store.Write(ctx, func(tx Tx) error {
		return cascadePostTx(ctx, tx, postID)
	})
	if err != nil {
		return err
	}
	e.logger.Info("Post deleted", zap.String("post_id", postID))
	return nil
}

// CascadeDeleteComment deletes a comment and its edges
func (e *Relationships) CascadeDeleteComment(ctx context.Context, commentID string) error {
	err := e.store.Write(ctx, func(tx Tx) error {
		return cascadeCommentTx(ctx, tx, commentID)
	})
	if err != nil {
		return err
	}
	e.logger.Info("Comment deleted", zap.String("comment_id", commentID))
	return nil
}

// RecountLikes recomputes every likeCount from the LIKES edges and returns
// how many nodes were corrected
func (e *Relationships) RecountLikes(ctx context.Context) (int64, error) {
	var corrected int64
	err := e.store.Write(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, cypherRecountLikes, nil)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			corrected = rows[0].int64("corrected")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if corrected > 0 {
		e.logger.Warn("Like counters repaired", zap.Int64("corrected", corrected))
	}
	return corrected, nil
}
