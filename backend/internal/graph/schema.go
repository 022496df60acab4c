package graph

import (
	"context"
	"fmt"
)

// schemaStatements enforce unique ids and usernames in the store itself,
// so a race between two registrations still fails one of them.
var schemaStatements = []string{
	"CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.userId IS UNIQUE",
	"CREATE CONSTRAINT user_username_unique IF NOT EXISTS FOR (u:User) REQUIRE u.usernameLower IS UNIQUE",
	"CREATE CONSTRAINT post_id_unique IF NOT EXISTS FOR (p:Post) REQUIRE p.postId IS UNIQUE",
	"CREATE CONSTRAINT comment_id_unique IF NOT EXISTS FOR (c:Comment) REQUIRE c.commentId IS UNIQUE",
	"CREATE INDEX post_created_at IF NOT EXISTS FOR (p:Post) ON (p.createdAt)",
}

// EnsureSchema creates the constraints and indexes. It is idempotent.
// Schema statements cannot share a transaction with each other, hence one Write per statement.
func EnsureSchema(ctx context.Context, store Store) error {
	for _, stmt := range schemaStatements {
		err := store.Write(ctx, func(tx Tx) error {
			return tx.Execute(ctx, stmt, nil)
		})
		if err != nil {
			return fmt.Errorf("failed to apply schema statement %q: %w", stmt, err)
		}
	}
	return nil
}
