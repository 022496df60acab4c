package social

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/identity"
	apperrors "socialgraph/backend/pkg/errors"
)

type fixture struct {
	repo   *repoStub
	edges  *edgesStub
	media  *mediaStub
	tokens *tokensStub
	svc    *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:   &repoStub{},
		edges:  &edgesStub{},
		media:  &mediaStub{},
		tokens: &tokensStub{},
	}
	f.svc = NewService(f.repo, f.edges, f.media, f.tokens)
	return f
}

func users(list ...graph.User) func(string) (*graph.User, error) {
	return func(id string) (*graph.User, error) {
		for _, u := range list {
			if u.ID == id {
				u := u
				return &u, nil
			}
		}
		return nil, nil
	}
}

var (
	alice = graph.User{ID: "u1", Username: "alice"}
	bob   = graph.User{ID: "u2", Username: "bob"}
	admin = graph.User{ID: "u9", Username: "root", IsAdmin: true}
)

func validRegistration() RegisterInput {
	return RegisterInput{
		Username: "alice",
		FullName: "Alice Liddell",
		Email:    "alice@example.com",
		Password: "wonderland",
	}
}

func TestRegister(t *testing.T) {
	f := newFixture()
	var created graph.NewUser
	f.repo.createUserFn = func(in graph.NewUser) (*graph.User, error) {
		created = in
		return &graph.User{ID: "u1", Username: in.Username, ProfilePicture: in.ProfilePicture}, nil
	}

	in := validRegistration()
	in.Picture = &Upload{Filename: "me.png", Body: strings.NewReader("img")}
	user, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "/images/me.png", created.ProfilePicture)
	assert.NotEqual(t, "wonderland", created.PasswordHash)
	assert.True(t, identity.CheckPassword(created.PasswordHash, "wonderland"))
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"missing username", func(in *RegisterInput) { in.Username = "  " }, "username"},
		{"username with spaces", func(in *RegisterInput) { in.Username = "al ice" }, "username"},
		{"bad email", func(in *RegisterInput) { in.Email = "nope" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password = "123" }, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			in := validRegistration()
			tt.mutate(&in)

			_, err := f.svc.Register(context.Background(), in)
			var verr *apperrors.ErrValidationFailed
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRegister_UsernameTakenStoresNothing(t *testing.T) {
	f := newFixture()
	f.repo.findUserByUsernameFn = func(string) (*graph.User, error) { return &alice, nil }

	in := validRegistration()
	in.Picture = &Upload{Filename: "me.png", Body: strings.NewReader("img")}
	_, err := f.svc.Register(context.Background(), in)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConflict))
	assert.Empty(t, f.media.saved)
}

func TestLogin(t *testing.T) {
	f := newFixture()
	hash, err := identity.HashPassword("wonderland")
	require.NoError(t, err)
	f.repo.findUserByUsernameFn = func(string) (*graph.User, error) {
		return &graph.User{ID: "u1", Username: "alice", PasswordHash: hash}, nil
	}

	session, err := f.svc.Login(context.Background(), "Alice", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, "token-u1", session.Token)

	_, err = f.svc.Login(context.Background(), "Alice", "wrong")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUnauthenticated))
}

func TestCreatePost_RequiresCaptionAndMedia(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreatePost(context.Background(), "u1", CreatePostInput{
		Caption: "   ",
		Media:   &Upload{Filename: "a.png", Body: strings.NewReader("x")},
	})
	var verr *apperrors.ErrValidationFailed
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "caption", verr.Field)

	_, err = f.svc.CreatePost(context.Background(), "u1", CreatePostInput{Caption: "hello"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "media", verr.Field)
	assert.Empty(t, f.media.saved)
}

func TestCreatePost_UnknownActor(t *testing.T) {
	f := newFixture()
	f.repo.existsUserFn = func(string) (bool, error) { return false, nil }

	_, err := f.svc.CreatePost(context.Background(), "ghost", CreatePostInput{
		Caption: "hello",
		Media:   &Upload{Filename: "a.png", Body: strings.NewReader("x")},
	})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
	assert.Empty(t, f.media.saved)
}

func TestCreatePost(t *testing.T) {
	f := newFixture()
	f.repo.createPostFn = func(in graph.NewPost) (*graph.Post, error) {
		return &graph.Post{ID: "p1", Author: in.AuthorID, ImageURL: in.ImageURL, Caption: in.Caption}, nil
	}

	post, err := f.svc.CreatePost(context.Background(), "u1", CreatePostInput{
		Caption: " sunset ",
		Media:   &Upload{Filename: "sunset.jpg", Body: strings.NewReader("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, "sunset", post.Caption)
	assert.Equal(t, "/images/sunset.jpg", post.ImageURL)
	assert.Equal(t, "u1", post.Author)
}

func TestUpdatePost_Ownership(t *testing.T) {
	caption := "edited"
	post := &graph.Post{ID: "p1", Author: "u1"}

	t.Run("stranger is forbidden", func(t *testing.T) {
		f := newFixture()
		f.repo.findPostByIDFn = func(string) (*graph.Post, error) { return post, nil }
		f.repo.findUserByIDFn = users(alice, bob)

		_, err := f.svc.UpdatePost(context.Background(), "u2", "p1", UpdatePostInput{Caption: &caption})
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeForbidden))
	})

	t.Run("admin may edit", func(t *testing.T) {
		f := newFixture()
		f.repo.findPostByIDFn = func(string) (*graph.Post, error) { return post, nil }
		f.repo.findUserByIDFn = users(alice, admin)
		f.repo.patchPostFn = func(id string, patch graph.PostPatch) (*graph.Post, error) {
			return &graph.Post{ID: id, Author: "u1", Caption: *patch.Caption}, nil
		}

		updated, err := f.svc.UpdatePost(context.Background(), "u9", "p1", UpdatePostInput{Caption: &caption})
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Caption)
	})
}

func TestDeletePost(t *testing.T) {
	f := newFixture()
	f.repo.findPostByIDFn = func(string) (*graph.Post, error) { return &graph.Post{ID: "p1", Author: "u1"}, nil }

	require.NoError(t, f.svc.DeletePost(context.Background(), "u1", "p1"))
	assert.Equal(t, []string{"post:p1"}, f.edges.deleted)
}

func TestDeletePost_Missing(t *testing.T) {
	f := newFixture()

	err := f.svc.DeletePost(context.Background(), "u1", "p404")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
	assert.Empty(t, f.edges.deleted)
}

func TestFeed(t *testing.T) {
	f := newFixture()
	var got graph.PostFilter
	f.repo.listPostsFn = func(filter graph.PostFilter) ([]graph.Post, error) {
		got = filter
		return []graph.Post{{ID: "p2"}, {ID: "p1"}}, nil
	}

	posts, err := f.svc.Feed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, graph.PostFilter{}, got)

	_, err = f.svc.Feed(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.AuthorID)
}

func TestAddComment(t *testing.T) {
	f := newFixture()
	f.edges.linkCommentFn = func(in graph.NewComment) (*graph.Comment, error) {
		return &graph.Comment{ID: "c1", Content: in.Content, AuthorID: in.AuthorID, PostID: in.PostID}, nil
	}

	comment, err := f.svc.AddComment(context.Background(), "u2", "p1", CommentInput{Content: "nice!"})
	require.NoError(t, err)
	assert.Equal(t, "p1", comment.PostID)

	_, err = f.svc.AddComment(context.Background(), "u2", "p1", CommentInput{Content: ""})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
}

func TestDeleteComment_Forbidden(t *testing.T) {
	f := newFixture()
	f.repo.findCommentByIDFn = func(string) (*graph.Comment, error) {
		return &graph.Comment{ID: "c1", AuthorID: "u2"}, nil
	}
	f.repo.findUserByIDFn = users(alice, bob)

	err := f.svc.DeleteComment(context.Background(), "u1", "c1")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeForbidden))
	assert.Empty(t, f.edges.deleted)
}

func TestLike(t *testing.T) {
	f := newFixture()
	f.edges.toggleLikeFn = func(actor, target string, kind graph.TargetKind) (*graph.LikeResult, error) {
		return &graph.LikeResult{Liked: true, LikeCount: 1}, nil
	}

	res, err := f.svc.Like(context.Background(), "u2", "p1", graph.TargetPost)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	_, err = f.svc.Like(context.Background(), "u2", "p1", graph.TargetKind("story"))
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
}

func TestAddFriend_ReturnsActorWithFriends(t *testing.T) {
	f := newFixture()
	f.repo.findUserByIDFn = users(alice, bob)
	f.edges.befriendFn = func(userID, username string) (*graph.User, error) {
		assert.Equal(t, "bob", username)
		return &bob, nil
	}
	f.edges.listFriendsFn = func(string) ([]graph.User, error) { return []graph.User{bob}, nil }

	user, err := f.svc.AddFriend(context.Background(), "u1", " bob ")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	require.Len(t, user.Friends, 1)
	assert.Equal(t, "u2", user.Friends[0].ID)
}

func TestRemoveFriend_PropagatesConflict(t *testing.T) {
	f := newFixture()
	f.edges.unfriendFn = func(string, string) error { return apperrors.NewConflict("no such friendship") }

	_, err := f.svc.RemoveFriend(context.Background(), "u1", "u2")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConflict))
}

func TestSearch(t *testing.T) {
	f := newFixture()
	f.repo.searchUsernamesFn = func(fragment string, limit int) ([]string, error) {
		assert.Equal(t, "li", fragment)
		return []string{"alice"}, nil
	}

	names, err := f.svc.Search(context.Background(), " li ")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, names)

	names, err = f.svc.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture()
	f.repo.findUserByIDFn = users(alice, bob, admin)

	err := f.svc.DeleteAccount(context.Background(), "u2", "u1")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeForbidden))

	require.NoError(t, f.svc.DeleteAccount(context.Background(), "u9", "u1"))
	require.NoError(t, f.svc.DeleteAccount(context.Background(), "u2", "u2"))
	assert.Equal(t, []string{"user:u1", "user:u2"}, f.edges.deleted)
}

func TestProfile(t *testing.T) {
	f := newFixture()
	f.repo.findUserByIDFn = users(alice, bob)
	f.edges.listFriendsFn = func(string) ([]graph.User, error) { return []graph.User{bob}, nil }
	f.repo.listPostsFn = func(filter graph.PostFilter) ([]graph.Post, error) {
		return []graph.Post{{ID: "p1", Author: filter.AuthorID}}, nil
	}

	profile, err := f.svc.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.User.Username)
	assert.Len(t, profile.User.Friends, 1)
	assert.Equal(t, "u1", profile.Posts[0].Author)

	_, err = f.svc.Profile(context.Background(), "ghost")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestProfile_StoreFailure(t *testing.T) {
	f := newFixture()
	f.repo.findUserByIDFn = users(alice)
	f.repo.listPostsFn = func(graph.PostFilter) ([]graph.Post, error) {
		return nil, apperrors.NewStoreFailure(apperrors.StoreTimeout, "read", errors.New("slow"))
	}

	_, err := f.svc.Profile(context.Background(), "u1")
	assert.True(t, apperrors.IsStoreFailure(err, apperrors.StoreTimeout))
}

func TestLogout(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.svc.Logout(context.Background(), "abc"))
	assert.Equal(t, []string{"abc"}, f.tokens.revoked)
}
