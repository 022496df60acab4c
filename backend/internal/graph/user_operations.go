package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
	"go.uber.org/zap"

	"socialgraph/backend/internal/constants"
	apperrors "socialgraph/backend/pkg/errors"
)

// ============================================================================
// User Operations
// ============================================================================

const (
	cypherUserByUsername = `
		MATCH (u:User {usernameLower: $usernameLower})
		RETURN u
		LIMIT 1
	`

	cypherUserTaken = `
		OPTIONAL MATCH (a:User {usernameLower: $usernameLower})
		WITH count(a) AS usernameTaken
		OPTIONAL MATCH (b:User {userId: $userId})
		RETURN usernameTaken, count(b) AS idTaken
	`

	cypherCreateUser = `
		CREATE (u:User {
			userId: $userId,
			username: $username,
			usernameLower: $usernameLower,
			fullName: $fullName,
			email: $email,
			passwordHash: $passwordHash,
			profilePicture: $profilePicture,
			bio: $bio,
			isAdmin: $isAdmin,
			createdAt: datetime($createdAt)
		})
		RETURN u
	`

	cypherPatchUser = `
		MATCH (u:User {userId: $userId})
		SET u += $fields
		RETURN u
	`

	cypherSearchUsernames = `
		MATCH (u:User)
		WHERE u.usernameLower CONTAINS $fragment
		RETURN u.username AS username
		ORDER BY u.usernameLower
		LIMIT $limit
	`

	cypherListUsers = `
		MATCH (u:User)
		WHERE u.userId <> $excludeId
		RETURN u
		ORDER BY u.usernameLower
	`
)

func userByIDQuery(userID string) (string, map[string]interface{}, error) {
	return gocypher.NewQueryBuilder().
		Match(gocypher.N("u", "User").WithProperties(map[string]interface{}{"userId": userID})).
		Return("u").
		Build()
}

func findUserByIDTx(ctx context.Context, tx Tx, userID string) (*User, error) {
	query, params, err := userByIDQuery(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build user lookup: %w", err)
	}
	rows, err := tx.Match(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return userFromRow(rows[0], "u"), nil
}

// FindUserByID returns the user or nil when no such user exists
func (r *Repository) FindUserByID(ctx context.Context, userID string) (*User, error) {
	var user *User
	err := r.store.Read(ctx, func(tx Tx) error {
		var err error
		user, err = findUserByIDTx(ctx, tx, userID)
		return err
	})
	return user, err
}

// FindUserByUsername matches usernames case-insensitively
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	var user *User
	err := r.store.Read(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, cypherUserByUsername, map[string]interface{}{
			"usernameLower": strings.ToLower(username),
		})
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			user = userFromRow(rows[0], "u")
		}
		return nil
	})
	return user, err
}

// ExistsUser reports whether a user with the id exists
func (r *Repository) ExistsUser(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.store.Read(ctx, func(tx Tx) error {
		var err error
		exists, err = existsTx(ctx, tx, userNode, userID)
		return err
	})
	return exists, err
}

// CreateUser registers a new user. The username must be unique ignoring case.
func (r *Repository) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	userID := uuid.New().String()
	usernameLower := strings.ToLower(in.Username)

	var user *User
	err := r.store.Write(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, cypherUserTaken, map[string]interface{}{
			"usernameLower": usernameLower,
			"userId":        userID,
		})
		if err != nil {
			return err
		}
		if len(rows) > 0 && rows[0].int64("usernameTaken") > 0 {
			return apperrors.NewConflict(fmt.Sprintf("username %q is already taken", in.Username))
		}
		if len(rows) > 0 && rows[0].int64("idTaken") > 0 {
			return apperrors.NewConflict("user id collision")
		}

		rows, err = tx.Match(ctx, cypherCreateUser, map[string]interface{}{
			"userId":         userID,
			"username":       in.Username,
			"usernameLower":  usernameLower,
			"fullName":       in.FullName,
			"email":          in.Email,
			"passwordHash":   in.PasswordHash,
			"profilePicture": in.ProfilePicture,
			"bio":            in.Bio,
			"isAdmin":        in.IsAdmin,
			"createdAt":      time.Now().UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperrors.NewStoreFailure(apperrors.StoreQueryFailed, "create user", nil)
		}
		user = userFromRow(rows[0], "u")
		return nil
	})
	if apperrors.IsStoreFailure(err, apperrors.StoreConstraintViolation) {
		// Lost a race against a concurrent registration of the same name
		return nil, apperrors.NewConflict(fmt.Sprintf("username %q is already taken", in.Username))
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("User created", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// PatchUser applies the non-nil fields of patch and returns the updated user,
// or nil when the user does not exist
func (r *Repository) PatchUser(ctx context.Context, userID string, patch UserPatch) (*User, error) {
	fields := patch.fields()
	if len(fields) == 0 {
		return r.FindUserByID(ctx, userID)
	}

	var user *User
	err := r.store.Write(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, cypherPatchUser, map[string]interface{}{
			"userId": userID,
			"fields": fields,
		})
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			user = userFromRow(rows[0], "u")
		}
		return nil
	})
	return user, err
}

// DeleteUser removes the user and everything that depends on it
func (r *Repository) DeleteUser(ctx context.Context, userID string) error {
	return r.store.Write(ctx, func(tx Tx) error {
		return cascadeUserTx(ctx, tx, userID)
	})
}

// SearchUsernames returns up to limit usernames containing fragment, ignoring case
func (r *Repository) SearchUsernames(ctx context.Context, fragment string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}
	var names []string
	err := r.store.Read(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, cypherSearchUsernames, map[string]interface{}{
			"fragment": strings.ToLower(fragment),
			"limit":    int64(limit),
		})
		if err != nil {
			return err
		}
		names = make([]string, 0, len(rows))
		for _, row := range rows {
			names = append(names, row.str("username"))
		}
		return nil
	})
	return names, err
}

// ListUsers returns every user except excludeID, ordered by username
func (r *Repository) ListUsers(ctx context.Context, excludeID string) ([]User, error) {
	var users []User
	err := r.store.Read(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, cypherListUsers, map[string]interface{}{"excludeId": excludeID})
		if err != nil {
			return err
		}
		users = make([]User, 0, len(rows))
		for _, row := range rows {
			if u := userFromRow(row, "u"); u != nil {
				users = append(users, *u)
			}
		}
		return nil
	})
	return users, err
}
