package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/social"
)

type commentRequest struct {
	Content string `form:"content" json:"content"`
}

// ListComments handles GET /api/posts/:postId/comments
func (s *Server) ListComments(c *gin.Context) {
	comments, err := s.service.ListComments(c.Request.Context(), c.Param("postId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// AddComment handles POST /api/posts/:postId/comments
func (s *Server) AddComment(c *gin.Context) {
	var req commentRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	comment, err := s.service.AddComment(c.Request.Context(), actorID(c), c.Param("postId"), social.CommentInput{Content: req.Content})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetComment handles GET /api/comments/:commentId
func (s *Server) GetComment(c *gin.Context) {
	comment, err := s.service.GetComment(c.Request.Context(), c.Param("commentId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// EditComment handles PATCH /api/comments/:commentId
func (s *Server) EditComment(c *gin.Context) {
	var req commentRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	comment, err := s.service.EditComment(c.Request.Context(), actorID(c), c.Param("commentId"), social.CommentInput{Content: req.Content})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment handles DELETE /api/comments/:commentId
func (s *Server) DeleteComment(c *gin.Context) {
	if err := s.service.DeleteComment(c.Request.Context(), actorID(c), c.Param("commentId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LikeComment handles POST /api/comments/:commentId/like
func (s *Server) LikeComment(c *gin.Context) {
	s.toggleLike(c, c.Param("commentId"), graph.TargetComment)
}

// IsCommentLiked handles GET /api/comments/:commentId/like
func (s *Server) IsCommentLiked(c *gin.Context) {
	s.isLiked(c, c.Param("commentId"), graph.TargetComment)
}
