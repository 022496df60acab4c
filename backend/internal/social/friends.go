package social

import (
	"context"
	"strings"

	"socialgraph/backend/internal/graph"
	apperrors "socialgraph/backend/pkg/errors"
)

// AddFriend befriends the user named username and returns the actor with
// their current friends
func (s *Service) AddFriend(ctx context.Context, actorID, username string) (*graph.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.NewValidationFailed("username", "is required")
	}
	if _, err := s.edges.Befriend(ctx, actorID, username); err != nil {
		return nil, err
	}
	return s.withFriends(ctx, actorID)
}

// RemoveFriend ends the friendship with friendID and returns the actor with
// their remaining friends
func (s *Service) RemoveFriend(ctx context.Context, actorID, friendID string) (*graph.User, error) {
	if friendID == "" {
		return nil, apperrors.NewValidationFailed("friendId", "is required")
	}
	if err := s.edges.Unfriend(ctx, actorID, friendID); err != nil {
		return nil, err
	}
	return s.withFriends(ctx, actorID)
}

// GetFriends lists the user's friends
func (s *Service) GetFriends(ctx context.Context, userID string) ([]graph.User, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.edges.ListFriends(ctx, userID)
}

// withFriends fills the Friends list from the FRIEND edges as they are now.
// The list belongs to this response only.
func (s *Service) withFriends(ctx context.Context, userID string) (*graph.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.edges.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Friends = friends
	return user, nil
}
