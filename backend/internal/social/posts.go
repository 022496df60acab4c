package social

import (
	"context"
	"strings"

	"socialgraph/backend/internal/graph"
	apperrors "socialgraph/backend/pkg/errors"
)

// CreatePostInput carries a new post
type CreatePostInput struct {
	Caption string  `json:"caption" validate:"required,max=2200"`
	Media   *Upload `json:"-"`
}

// UpdatePostInput lists the editable post fields; nil keeps the current value
type UpdatePostInput struct {
	Caption *string `json:"caption" validate:"omitempty,min=1,max=2200"`
}

// CommentInput carries comment text for creation and edits
type CommentInput struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// CreatePost publishes media with a caption. Both are required.
func (s *Service) CreatePost(ctx context.Context, actorID string, in CreatePostInput) (*graph.Post, error) {
	in.Caption = strings.TrimSpace(in.Caption)
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.Media == nil {
		return nil, apperrors.NewValidationFailed("media", "is required")
	}
	if err := s.requireUser(ctx, actorID); err != nil {
		return nil, err
	}

	uri, err := s.store(ctx, in.Media)
	if err != nil {
		return nil, err
	}
	return s.repo.CreatePost(ctx, graph.NewPost{
		AuthorID: actorID,
		ImageURL: uri,
		Caption:  in.Caption,
	})
}

// GetPost returns the post or NotFound
func (s *Service) GetPost(ctx context.Context, postID string) (*graph.Post, error) {
	post, err := s.repo.FindPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.NewNotFound("post", postID)
	}
	return post, nil
}

// UpdatePost edits a post; only its author or an admin may do so
func (s *Service) UpdatePost(ctx context.Context, actorID, postID string, in UpdatePostInput) (*graph.Post, error) {
	if in.Caption != nil {
		trimmed := strings.TrimSpace(*in.Caption)
		in.Caption = &trimmed
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, post.Author, "edit this post"); err != nil {
		return nil, err
	}

	updated, err := s.repo.PatchPost(ctx, postID, graph.PostPatch{Caption: in.Caption})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NewNotFound("post", postID)
	}
	return updated, nil
}

// DeletePost removes a post with its comments and likes
func (s *Service) DeletePost(ctx context.Context, actorID, postID string) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actorID, post.Author, "delete this post"); err != nil {
		return err
	}
	return s.edges.CascadeDeletePost(ctx, postID)
}

// Feed lists every post, or only those of authorID when it is set, newest first
func (s *Service) Feed(ctx context.Context, authorID string) ([]graph.Post, error) {
	if authorID != "" {
		if err := s.requireUser(ctx, authorID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListPosts(ctx, graph.PostFilter{AuthorID: authorID})
}

// AddComment comments on a post as actorID
func (s *Service) AddComment(ctx context.Context, actorID, postID string, in CommentInput) (*graph.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.check(in); err != nil {
		return nil, err
	}
	return s.edges.LinkComment(ctx, graph.NewComment{
		AuthorID: actorID,
		PostID:   postID,
		Content:  in.Content,
	})
}

// ListComments returns a post's comments oldest first
func (s *Service) ListComments(ctx context.Context, postID string) ([]graph.Comment, error) {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.repo.ListCommentsForPost(ctx, postID)
}

// GetComment returns the comment or NotFound
func (s *Service) GetComment(ctx context.Context, commentID string) (*graph.Comment, error) {
	comment, err := s.repo.FindCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apperrors.NewNotFound("comment", commentID)
	}
	return comment, nil
}

// EditComment replaces the text of a comment; only its author or an admin may do so
func (s *Service) EditComment(ctx context.Context, actorID, commentID string, in CommentInput) (*graph.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.check(in); err != nil {
		return nil, err
	}
	comment, err := s.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, comment.AuthorID, "edit this comment"); err != nil {
		return nil, err
	}

	updated, err := s.repo.PatchComment(ctx, commentID, graph.CommentPatch{Content: &in.Content})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NewNotFound("comment", commentID)
	}
	return updated, nil
}

// DeleteComment removes a comment; only its author or an admin may do so
func (s *Service) DeleteComment(ctx context.Context, actorID, commentID string) error {
	comment, err := s.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actorID, comment.AuthorID, "delete this comment"); err != nil {
		return err
	}
	return s.edges.CascadeDeleteComment(ctx, commentID)
}

// Like toggles actorID's like on a post or comment
func (s *Service) Like(ctx context.Context, actorID, targetID string, kind graph.TargetKind) (*graph.LikeResult, error) {
	if !kind.Valid() {
		return nil, apperrors.NewValidationFailed("kind", "must be post or comment")
	}
	return s.edges.ToggleLike(ctx, actorID, targetID, kind)
}

// IsLiked reports whether actorID currently likes the target
func (s *Service) IsLiked(ctx context.Context, actorID, targetID string, kind graph.TargetKind) (bool, error) {
	if !kind.Valid() {
		return false, apperrors.NewValidationFailed("kind", "must be post or comment")
	}
	return s.edges.IsLiked(ctx, actorID, targetID, kind)
}
