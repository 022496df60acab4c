package social

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/media"
	apperrors "socialgraph/backend/pkg/errors"
	"socialgraph/backend/pkg/logger"
)

// Repository is the node-level CRUD the service needs
type Repository interface {
	FindUserByID(ctx context.Context, userID string) (*graph.User, error)
	FindUserByUsername(ctx context.Context, username string) (*graph.User, error)
	ExistsUser(ctx context.Context, userID string) (bool, error)
	CreateUser(ctx context.Context, in graph.NewUser) (*graph.User, error)
	PatchUser(ctx context.Context, userID string, patch graph.UserPatch) (*graph.User, error)
	SearchUsernames(ctx context.Context, fragment string, limit int) ([]string, error)
	ListUsers(ctx context.Context, excludeID string) ([]graph.User, error)

	CreatePost(ctx context.Context, in graph.NewPost) (*graph.Post, error)
	FindPostByID(ctx context.Context, postID string) (*graph.Post, error)
	PatchPost(ctx context.Context, postID string, patch graph.PostPatch) (*graph.Post, error)
	ListPosts(ctx context.Context, filter graph.PostFilter) ([]graph.Post, error)

	FindCommentByID(ctx context.Context, commentID string) (*graph.Comment, error)
	PatchComment(ctx context.Context, commentID string, patch graph.CommentPatch) (*graph.Comment, error)
	ListCommentsForPost(ctx context.Context, postID string) ([]graph.Comment, error)
}

// Relationships is the edge-level engine the service needs
type Relationships interface {
	LinkComment(ctx context.Context, in graph.NewComment) (*graph.Comment, error)
	ToggleLike(ctx context.Context, actorID, targetID string, kind graph.TargetKind) (*graph.LikeResult, error)
	IsLiked(ctx context.Context, actorID, targetID string, kind graph.TargetKind) (bool, error)
	Befriend(ctx context.Context, userID, username string) (*graph.User, error)
	Unfriend(ctx context.Context, userIDA, userIDB string) error
	ListFriends(ctx context.Context, userID string) ([]graph.User, error)
	CascadeDeleteUser(ctx context.Context, userID string) error
	CascadeDeletePost(ctx context.Context, postID string) error
	CascadeDeleteComment(ctx context.Context, commentID string) error
}

// Tokens issues and revokes session tokens
type Tokens interface {
	Issue(userID string) (string, time.Time, error)
	Revoke(ctx context.Context, token string) error
}

// Upload is a file received from a client
type Upload struct {
	Filename string
	Body     io.Reader
}

// Service implements the social use-cases on top of the graph layer.
// Inputs are validated and referenced nodes checked before anything is written.
type Service struct {
	repo     Repository
	edges    Relationships
	media    media.Store
	tokens   Tokens
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService wires the service. tokens may be nil when the caller never logs users in.
func NewService(repo Repository, edges Relationships, store media.Store, tokens Tokens) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", validateUsername)

	return &Service{
		repo:     repo,
		edges:    edges,
		media:    store,
		tokens:   tokens,
		validate: v,
		logger:   logger.Named("social"),
	}
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// check runs the struct's validate tags and reports the first failure
func (s *Service) check(in interface{}) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewValidationFailed(fe.Field(), reason(fe))
	}
	return apperrors.NewValidationFailed("input", err.Error())
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "username":
		return "may only contain letters, digits, '.', '_' and '-'"
	}
	return "failed " + fe.Tag()
}

// authorize lets the owner or an admin through
func (s *Service) authorize(ctx context.Context, actorID, ownerID, action string) error {
	if actorID != "" && actorID == ownerID {
		return nil
	}
	actor, err := s.repo.FindUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if actor == nil {
		return apperrors.NewUnauthenticated("actor no longer exists", nil)
	}
	if actor.IsAdmin {
		s.logger.Info("Admin override", zap.String("actor", actorID), zap.String("action", action))
		return nil
	}
	return apperrors.NewForbidden(actorID, action)
}

func (s *Service) requireUser(ctx context.Context, userID string) error {
	exists, err := s.repo.ExistsUser(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFound("user", userID)
	}
	return nil
}

func (s *Service) store(ctx context.Context, upload *Upload) (string, error) {
	if upload == nil || upload.Body == nil || upload.Filename == "" {
		return "", apperrors.NewValidationFailed("media", "is required")
	}
	return s.media.Save(ctx, upload.Filename, upload.Body)
}
