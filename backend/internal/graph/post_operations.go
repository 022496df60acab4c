package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
	"go.uber.org/zap"

	apperrors "socialgraph/backend/pkg/errors"
)

// ============================================================================
// Post Operations
// ============================================================================

const (
	cypherCreatePost = `
		CREATE (p:Post {
			postId: $postId,
			imageURL: $imageURL,
			caption: $caption,
			likeCount: 0,
			createdAt: datetime($createdAt)
		})
		RETURN p
	`

	cypherPatchPost = `
		MATCH (p:Post {postId: $postId})
		SET p += $fields
		RETURN p
	`

	cypherListPosts = `
		MATCH (p:Post)
		RETURN p
		ORDER BY p.createdAt DESC
	`

	cypherListPostsByAuthor = `
		MATCH (:User {userId: $authorId})-[:CREATED]->(p:Post)
		RETURN p
		ORDER BY p.createdAt DESC
	`
)

func postByIDQuery(postID string) (string, map[string]interface{}, error) {
	return gocypher.NewQueryBuilder().
		Match(gocypher.N("p", "Post").WithProperties(map[string]interface{}{"postId": postID})).
		Return("p").
		Build()
}

// CreatePost creates the post node and its CREATED edge in one transaction
func (r *Repository) CreatePost(ctx context.Context, in NewPost) (*Post, error) {
	postID := uuid.New().String()

	var post *Post
	err := r.store.Write(ctx, func(tx Tx) error {
		if err := requireTx(ctx, tx, userNode, in.AuthorID); err != nil {
			return err
		}
		rows, err := tx.Match(ctx, cypherCreatePost, map[string]interface{}{
			"postId":    postID,
			"imageURL":  in.ImageURL,
			"caption":   in.Caption,
			"createdAt": time.Now().UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperrors.NewStoreFailure(apperrors.StoreQueryFailed, "create post", nil)
		}
		post = postFromRow(rows[0], "p")

		if err := linkAuthorTx(ctx, tx, in.AuthorID, postID); err != nil {
			return err
		}
		post.Author = in.AuthorID
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Post created", zap.String("post_id", post.ID), zap.String("author", post.Author))
	return post, nil
}

// FindPostByID returns the post or nil when no such post exists
func (r *Repository) FindPostByID(ctx context.Context, postID string) (*Post, error) {
	query, params, err := postByIDQuery(postID)
	if err != nil {
		return nil, fmt.Errorf("failed to build post lookup: %w", err)
	}

	var post *Post
	err = r.store.Read(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, query, params)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			post = postFromRow(rows[0], "p")
		}
		return nil
	})
	return post, err
}

// PatchPost applies the non-nil fields of patch; nil when the post is absent
func (r *Repository) PatchPost(ctx context.Context, postID string, patch PostPatch) (*Post, error) {
	fields := patch.fields()
	if len(fields) == 0 {
		return r.FindPostByID(ctx, postID)
	}

	var post *Post
	err := r.store.Write(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, cypherPatchPost, map[string]interface{}{
			"postId": postID,
			"fields": fields,
		})
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			post = postFromRow(rows[0], "p")
		}
		return nil
	})
	return post, err
}

// DeletePost removes the post with its comments and every edge touching them
func (r *Repository) DeletePost(ctx context.Context, postID string) error {
	return r.store.Write(ctx, func(tx Tx) error {
		return cascadePostTx(ctx, tx, postID)
	})
}

// ListPosts returns posts newest first
func (r *Repository) ListPosts(ctx context.Context, filter PostFilter) ([]Post, error) {
	query := cypherListPosts
	params := map[string]interface{}{}
	if filter.AuthorID != "" {
		query = cypherListPostsByAuthor
		params["authorId"] = filter.AuthorID
	}

	var posts []Post
	err := r.store.Read(ctx, func(tx Tx) error {
		rows, err := tx.Match(ctx, query, params)
		if err != nil {
			return err
		}
		posts = make([]Post, 0, len(rows))
		for _, row := range rows {
			if p := postFromRow(row, "p"); p != nil {
				posts = append(posts, *p)
			}
		}
		return nil
	})
	return posts, err
}
