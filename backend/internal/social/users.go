package social

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"socialgraph/backend/internal/constants"
	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/identity"
	apperrors "socialgraph/backend/pkg/errors"
)

// RegisterInput carries a new account
type RegisterInput struct {
	Username string  `json:"username" validate:"required,min=3,max=32,username"`
	FullName string  `json:"fullName" validate:"required,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Bio      string  `json:"bio" validate:"max=500"`
	Picture  *Upload `json:"-"`
}

// ProfileInput lists the profile fields a user may change; nil keeps the current value
type ProfileInput struct {
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Picture  *Upload `json:"-"`
}

// Session is the result of a successful login
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *graph.User `json:"user"`
}

// Profile is a user page: the user with friends and posts
type Profile struct {
	User  *graph.User  `json:"user"`
	Posts []graph.Post `json:"posts"`
}

// Register creates an account and returns the new user
func (s *Service) Register(ctx context.Context, in RegisterInput) (*graph.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := s.check(in); err != nil {
		return nil, err
	}

	// Checked before the upload so a taken name leaves no stray file
	existing, err := s.repo.FindUserByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflict("username " + in.Username + " is already taken")
	}

	var picture string
	if in.Picture != nil {
		if picture, err = s.store(ctx, in.Picture); err != nil {
			return nil, err
		}
	}

	hash, err := identity.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateUser(ctx, graph.NewUser{
		Username:       in.Username,
		FullName:       in.FullName,
		Email:          in.Email,
		PasswordHash:   hash,
		ProfilePicture: picture,
		Bio:            in.Bio,
	})
}

// Login checks the credentials and issues a token
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewValidationFailed("credentials", "username and password are required")
	}
	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !identity.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthenticated("invalid username or password", nil)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in", zap.String("user_id", user.ID))
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes the token
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// GetUser returns the user or NotFound
func (s *Service) GetUser(ctx context.Context, userID string) (*graph.User, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFound("user", userID)
	}
	return user, nil
}

// GetUserByUsername looks the user up ignoring case
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*graph.User, error) {
	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFound("user", username)
	}
	return user, nil
}

// ListUsers returns everyone but the actor
func (s *Service) ListUsers(ctx context.Context, actorID string) ([]graph.User, error) {
	return s.repo.ListUsers(ctx, actorID)
}

// Search returns usernames containing fragment, ignoring case
func (s *Service) Search(ctx context.Context, fragment string) ([]string, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return []string{}, nil
	}
	return s.repo.SearchUsernames(ctx, fragment, constants.DefaultSearchLimit)
}

// UpdateProfile patches the target user's profile. Only the user or an admin may do so.
func (s *Service) UpdateProfile(ctx context.Context, actorID, userID string, in ProfileInput) (*graph.User, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, userID, "update this profile"); err != nil {
		return nil, err
	}

	patch := graph.UserPatch{FullName: in.FullName, Email: in.Email, Bio: in.Bio}
	if in.Picture != nil {
		uri, err := s.store(ctx, in.Picture)
		if err != nil {
			return nil, err
		}
		patch.ProfilePicture = &uri
	}

	user, err := s.repo.PatchUser(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFound("user", userID)
	}
	return user, nil
}

// DeleteAccount removes the user with everything they created
func (s *Service) DeleteAccount(ctx context.Context, actorID, userID string) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	if err := s.authorize(ctx, actorID, userID, "delete this account"); err != nil {
		return err
	}
	return s.edges.CascadeDeleteUser(ctx, userID)
}

// Profile loads the user, their friends and their posts concurrently
func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	var (
		user    *graph.User
		friends []graph.User
		posts   []graph.Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.repo.FindUserByID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		friends, err = s.edges.ListFriends(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = s.repo.ListPosts(gctx, graph.PostFilter{AuthorID: userID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if user == nil {
		return nil, apperrors.NewNotFound("user", userID)
	}
	user.Friends = friends
	return &Profile{User: user, Posts: posts}, nil
}
