package graph

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	apperrors "socialgraph/backend/pkg/errors"
)

// ============================================================================
// Friendships
// ============================================================================

const (
	cypherFriendshipParties = `
		OPTIONAL MATCH (a:User {userId: $userId})
		OPTIONAL MATCH (b:User {usernameLower: $usernameLower})
		RETURN a, b
	`

	cypherLockUser = `
		MATCH (u:User {userId: $userId})
		SET u._lock = true
		REMOVE u._lock
	`

	cypherFriendEdgeCount = `
		MATCH (:User {userId: $a})-[r:FRIEND]-(:User {userId: $b})
		RETURN count(r) AS n
	`

	cypherCreateFriendship = `
		MATCH (a:User {userId: $a}), (b:User {userId: $b})
		CREATE (a)-[:FRIEND {since: datetime($now)}]->(b)
		CREATE (b)-[:FRIEND {since: datetime($now)}]->(a)
	`

	cypherDeleteFriendship = `
		MATCH (:User {userId: $a})-[r:FRIEND]-(:User {userId: $b})
		WITH collect(r) AS edges
		FOREACH (e IN edges | DELETE e)
		RETURN size(edges) AS removed
	`

	cypherListFriends = `
		MATCH (:User {userId: $userId})-[:FRIEND]->(f:User)
		WITH DISTINCT f
		RETURN f
		ORDER BY f.usernameLower
	`
)

// lockUsersTx write-locks both users in id order so concurrent befriend and
// unfriend calls on the same pair cannot deadlock each other.
func lockUsersTx(ctx context.Context, tx Tx, a, b string) error {
	ids := []string{a, b}
	sort.Strings(ids)
	for _, id := range ids {
		if err := tx.Execute(ctx, cypherLockUser, map[string]interface{}{"userId": id}); err != nil {
			return err
		}
	}
	return nil
}

// Befriend connects userID with the user named username in both directions
// and returns the befriended user.
func (e *Relationships) Befriend(ctx context.Context, userID, username string) (*User, error) {
	var friend *User
	err := e.store.Write(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, cypherFriendshipParties, map[string]interface{}{
			"userId":        userID,
			"usernameLower": strings.ToLower(username),
		})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperrors.NewNotFound("user", userID)
		}
		a := userFromRow(rows[0], "a")
		b := userFromRow(rows[0], "b")
		if a == nil {
			return apperrors.NewNotFound("user", userID)
		}
		if b == nil {
			return apperrors.NewNotFound("user", username)
		}
		if a.ID == b.ID {
			return apperrors.NewValidationFailed("username", "cannot befriend yourself")
		}

		if err := lockUsersTx(ctx, tx, a.ID, b.ID); err != nil {
			return err
		}

		pair := map[string]interface{}{"a": a.ID, "b": b.ID}
		rows, err = tx.Match(ctx, cypherFriendEdgeCount, pair)
		if err != nil {
			return err
		}
		if len(rows) > 0 && rows[0].int64("n") > 0 {
			return apperrors.NewConflict("users are already friends")
		}

		if err := tx.Execute(ctx, cypherCreateFriendship, map[string]interface{}{
			"a":   a.ID,
			"b":   b.ID,
			"now": nowString(),
		}); err != nil {
			return err
		}
		friend = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Friendship created", zap.String("user_id", userID), zap.String("friend_id", friend.ID))
	return friend, nil
}

// Unfriend removes the FRIEND edges between the two users in both
// directions. A pair left with only one direction is repaired as well.
func (e *Relationships) Unfriend(ctx context.Context, userIDA, userIDB string) error {
	var removed int64
	err := e.store.Write(ctx, func(tx Tx) error {
		if err := requireTx(ctx, tx, userNode, userIDA); err != nil {
			return err
		}
		if err := requireTx(ctx, tx, userNode, userIDB); err != nil {
			return err
		}
		if userIDA == userIDB {
			return apperrors.NewValidationFailed("userId", "cannot unfriend yourself")
		}
		if err := lockUsersTx(ctx, tx, userIDA, userIDB); err != nil {
			return err
		}

		rows, err := tx.Match(ctx, cypherDeleteFriendship, map[string]interface{}{"a": userIDA, "b": userIDB})
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			removed = rows[0].int64("removed")
		}
		if removed == 0 {
			return apperrors.NewConflict("no such friendship")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if removed == 1 {
		e.logger.Warn("Repaired one-sided friendship",
			zap.String("user_id", userIDA),
			zap.String("friend_id", userIDB))
	}
	e.logger.Info("Friendship removed", zap.String("user_id", userIDA), zap.String("friend_id", userIDB))
	return nil
}

// ListFriends returns the users userID has a FRIEND edge to
func (e *Relationships) ListFriends(ctx context.Context, userID string) ([]User, error) {
	var friends []User
	err := e.store.Read(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, cypherListFriends, map[string]interface{}{"userId": userID})
		if err != nil {
			return err
		}
		friends = make([]User, 0, len(rows))
		for _, row := range rows {
			if f := userFromRow(row, "f"); f != nil {
				friends = append(friends, *f)
			}
		}
		return nil
	})
	return friends, err
}
