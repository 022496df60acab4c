package social

import (
	"context"
	"io"
	"time"

	"socialgraph/backend/internal/graph"
)

// repoStub answers with the func fields that are set and zero values otherwise
type repoStub struct {
	findUserByIDFn        func(string) (*graph.User, error)
	findUserByUsernameFn  func(string) (*graph.User, error)
	existsUserFn          func(string) (bool, error)
	createUserFn          func(graph.NewUser) (*graph.User, error)
	patchUserFn           func(string, graph.UserPatch) (*graph.User, error)
	searchUsernamesFn     func(string, int) ([]string, error)
	listUsersFn           func(string) ([]graph.User, error)
	createPostFn          func(graph.NewPost) (*graph.Post, error)
	findPostByIDFn        func(string) (*graph.Post, error)
	patchPostFn           func(string, graph.PostPatch) (*graph.Post, error)
	listPostsFn           func(graph.PostFilter) ([]graph.Post, error)
	findCommentByIDFn     func(string) (*graph.Comment, error)
	patchCommentFn        func(string, graph.CommentPatch) (*graph.Comment, error)
	listCommentsForPostFn func(string) ([]graph.Comment, error)
}

func (s *repoStub) FindUserByID(_ context.Context, id string) (*graph.User, error) {
	if s.findUserByIDFn == nil {
		return nil, nil
	}
	return s.findUserByIDFn(id)
}

func (s *repoStub) FindUserByUsername(_ context.Context, username string) (*graph.User, error) {
	if s.findUserByUsernameFn == nil {
		return nil, nil
	}
	return s.findUserByUsernameFn(username)
}

func (s *repoStub) ExistsUser(_ context.Context, id string) (bool, error) {
	if s.existsUserFn == nil {
		return true, nil
	}
	return s.existsUserFn(id)
}

func (s *repoStub) CreateUser(_ context.Context, in graph.NewUser) (*graph.User, error) {
	return s.createUserFn(in)
}

func (s *repoStub) PatchUser(_ context.Context, id string, patch graph.UserPatch) (*graph.User, error) {
	return s.patchUserFn(id, patch)
}

func (s *repoStub) SearchUsernames(_ context.Context, fragment string, limit int) ([]string, error) {
	return s.searchUsernamesFn(fragment, limit)
}

func (s *repoStub) ListUsers(_ context.Context, excludeID string) ([]graph.User, error) {
	return s.listUsersFn(excludeID)
}

func (s *repoStub) CreatePost(_ context.Context, in graph.NewPost) (*graph.Post, error) {
	return s.createPostFn(in)
}

func (s *repoStub) FindPostByID(_ context.Context, id string) (*graph.Post, error) {
	if s.findPostByIDFn == nil {
		return nil, nil
	}
	return s.findPostByIDFn(id)
}

func (s *repoStub) PatchPost(_ context.Context, id string, patch graph.PostPatch) (*graph.Post, error) {
	return s.patchPostFn(id, patch)
}

func (s *repoStub) ListPosts(_ context.Context, filter graph.PostFilter) ([]graph.Post, error) {
	if s.listPostsFn == nil {
		return []graph.Post{}, nil
	}
	return s.listPostsFn(filter)
}

func (s *repoStub) FindCommentByID(_ context.Context, id string) (*graph.Comment, error) {
	if s.findCommentByIDFn == nil {
		return nil, nil
	}
	return s.findCommentByIDFn(id)
}

func (s *repoStub) PatchComment(_ context.Context, id string, patch graph.CommentPatch) (*graph.Comment, error) {
	return s.patchCommentFn(id, patch)
}

func (s *repoStub) ListCommentsForPost(_ context.Context, postID string) ([]graph.Comment, error) {
	return s.listCommentsForPostFn(postID)
}

// edgesStub records cascade calls so tests can assert nothing was deleted
type edgesStub struct {
	linkCommentFn func(graph.NewComment) (*graph.Comment, error)
	toggleLikeFn  func(string, string, graph.TargetKind) (*graph.LikeResult, error)
	isLikedFn     func(string, string, graph.TargetKind) (bool, error)
	befriendFn    func(string, string) (*graph.User, error)
	unfriendFn    func(string, string) error
	listFriendsFn func(string) ([]graph.User, error)

	deleted []string
}

func (s *edgesStub) LinkComment(_ context.Context, in graph.NewComment) (*graph.Comment, error) {
	return s.linkCommentFn(in)
}

func (s *edgesStub) ToggleLike(_ context.Context, actorID, targetID string, kind graph.TargetKind) (*graph.LikeResult, error) {
	return s.toggleLikeFn(actorID, targetID, kind)
}

func (s *edgesStub) IsLiked(_ context.Context, actorID, targetID string, kind graph.TargetKind) (bool, error) {
	return s.isLikedFn(actorID, targetID, kind)
}

func (s *edgesStub) Befriend(_ context.Context, userID, username string) (*graph.User, error) {
	return s.befriendFn(userID, username)
}

func (s *edgesStub) Unfriend(_ context.Context, a, b string) error {
	return s.unfriendFn(a, b)
}

func (s *edgesStub) ListFriends(_ context.Context, userID string) ([]graph.User, error) {
	if s.listFriendsFn == nil {
		return []graph.User{}, nil
	}
	return s.listFriendsFn(userID)
}

func (s *edgesStub) CascadeDeleteUser(_ context.Context, id string) error {
	s.deleted = append(s.deleted, "user:"+id)
	return nil
}

func (s *edgesStub) CascadeDeletePost(_ context.Context, id string) error {
	s.deleted = append(s.deleted, "post:"+id)
	return nil
}

func (s *edgesStub) CascadeDeleteComment(_ context.Context, id string) error {
	s.deleted = append(s.deleted, "comment:"+id)
	return nil
}

type mediaStub struct {
	saved []string
}

func (m *mediaStub) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	m.saved = append(m.saved, filename)
	return "/images/" + filename, nil
}

type tokensStub struct {
	revoked []string
}

func (t *tokensStub) Issue(userID string) (string, time.Time, error) {
	return "token-" + userID, time.Now().Add(time.Hour), nil
}

func (t *tokensStub) Revoke(_ context.Context, token string) error {
	t.revoked = append(t.revoked, token)
	return nil
}
