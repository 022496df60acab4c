package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "socialgraph/backend/pkg/errors"
)

// ============================================================================
// Likes
// ============================================================================

// likeStatements are the Cypher statements of a toggle for one target label
type likeStatements struct {
	lock    string
	like    string
	unlike  string
	isLiked string
}

// lock takes the target's write lock before reading the edge state, so two
// toggles by the same actor on the same target serialize.
func buildLikeStatements(kind TargetKind) likeStatements {
	target := fmt.Sprintf("t:%s {%s: $targetId}", kind.label(), kind.key())
	return likeStatements{
		lock: fmt.Sprintf(`
		MATCH (%s)
		SET t._lock = true
		REMOVE t._lock
		WITH t
		OPTIONAL MATCH (:User {userId: $actorId})-[l:LIKES]->(t)
		RETURN count(l) AS likes
	`, target),
		like: fmt.Sprintf(`
		MATCH (u:User {userId: $actorId}), (%s)
		CREATE (u)-[:LIKES {createdAt: datetime($now)}]->(t)
		SET t.likeCount = coalesce(t.likeCount, 0) + 1
		RETURN t.likeCount AS likeCount
	`, target),
		unlike: fmt.Sprintf(`
		MATCH (:User {userId: $actorId})-[l:LIKES]->(%s)
		WITH t, collect(l) AS edges
		FOREACH (e IN edges | DELETE e)
		WITH t, size(edges) AS removed
		SET t.likeCount = CASE
			WHEN coalesce(t.likeCount, 0) > removed THEN t.likeCount - removed
			ELSE 0
		END
		RETURN t.likeCount AS likeCount
	`, target),
		isLiked: fmt.Sprintf(`
		MATCH (:User {userId: $actorId})-[l:LIKES]->(%s)
		RETURN count(l) AS likes
	`, target),
	}
}

var likeStatementsByKind = map[TargetKind]likeStatements{
	TargetPost:    buildLikeStatements(TargetPost),
	TargetComment: buildLikeStatements(TargetComment),
}

// ToggleLike likes the target when the actor has not liked it yet and unlikes
// it otherwise, keeping likeCount equal to the number of LIKES edges.
func (e *Relationships) ToggleLike(ctx context.Context, actorID, targetID string, kind TargetKind) (*LikeResult, error) {
	if !kind.Valid() {
		return nil, apperrors.NewValidationFailed("kind", fmt.Sprintf("cannot like a %q", kind))
	}
	stmts := likeStatementsByKind[kind]
	params := map[string]interface{}{
		"actorId":  actorID,
		"targetId": targetID,
	}

	var result *LikeResult
	err := e.store.Write(ctx, func(tx Tx) error {
		if err := requireTx(ctx, tx, userNode, actorID); err != nil {
			return err
		}
		if err := requireTx(ctx, tx, refForKind(kind), targetID); err != nil {
			return err
		}

		rows, err := tx.Match(ctx, stmts.lock, params)
		if err != nil {
			return err
		}
		liked := len(rows) > 0 && rows[0].int64("likes") > 0

		if liked {
			rows, err = tx.Match(ctx, stmts.unlike, params)
		} else {
			rows, err = tx.Match(ctx, stmts.like, map[string]interface{}{
				"actorId":  actorID,
				"targetId": targetID,
				"now":      nowString(),
			})
		}
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperrors.NewConflict(fmt.Sprintf("%s %s changed during like toggle", kind, targetID))
		}

		result = &LikeResult{Liked: !liked, LikeCount: rows[0].int64("likeCount")}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Like toggled",
		zap.String("actor", actorID),
		zap.String("target", targetID),
		zap.String("kind", string(kind)),
		zap.Bool("liked", result.Liked),
		zap.Int64("like_count", result.LikeCount))
	return result, nil
}

// IsLiked reports whether the actor currently likes the target
func (e *Relationships) IsLiked(ctx context.Context, actorID, targetID string, kind TargetKind) (bool, error) {
	if !kind.Valid() {
		return false, apperrors.NewValidationFailed("kind", fmt.Sprintf("cannot like a %q", kind))
	}

	var liked bool
	err := e.store.Read(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, likeStatementsByKind[kind].isLiked, map[string]interface{}{
			"actorId":  actorID,
			"targetId": targetID,
		})
		if err != nil {
			return err
		}
		liked = len(rows) > 0 && rows[0].int64("likes") > 0
		return nil
	})
	return liked, err
}
