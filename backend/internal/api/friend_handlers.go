package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AddFriend handles POST /api/friends with {"username": "..."}
func (s *Server) AddFriend(c *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username"`
	}
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	user, err := s.service.AddFriend(c.Request.Context(), actorID(c), req.Username)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// RemoveFriend handles DELETE /api/friends/:friendId
func (s *Server) RemoveFriend(c *gin.Context) {
	user, err := s.service.RemoveFriend(c.Request.Context(), actorID(c), c.Param("friendId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetFriends handles GET /api/users/:userId/friends
func (s *Server) GetFriends(c *gin.Context) {
	friends, err := s.service.GetFriends(c.Request.Context(), c.Param("userId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}
