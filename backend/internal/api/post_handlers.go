package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/social"
)

// Feed handles GET /api/posts, optionally narrowed with ?author=<userId>
func (s *Server) Feed(c *gin.Context) {
	posts, err := s.service.Feed(c.Request.Context(), c.Query("author"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// UserPosts handles GET /api/users/:userId/posts
func (s *Server) UserPosts(c *gin.Context) {
	posts, err := s.service.Feed(c.Request.Context(), c.Param("userId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// CreatePost handles POST /api/posts as multipart with "caption" and the file "media"
func (s *Server) CreatePost(c *gin.Context) {
	var req struct {
		Caption string `form:"caption" json:"caption"`
	}
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	upload, closer, err := formUpload(c, "media")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer closer.Close()

	post, err := s.service.CreatePost(c.Request.Context(), actorID(c), social.CreatePostInput{
		Caption: req.Caption,
		Media:   upload,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetPost handles GET /api/posts/:postId
func (s *Server) GetPost(c *gin.Context) {
	post, err := s.service.GetPost(c.Request.Context(), c.Param("postId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// UpdatePost handles PATCH /api/posts/:postId
func (s *Server) UpdatePost(c *gin.Context) {
	var req struct {
		Caption *string `form:"caption" json:"caption"`
	}
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	post, err := s.service.UpdatePost(c.Request.Context(), actorID(c), c.Param("postId"), social.UpdatePostInput{
		Caption: req.Caption,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/:postId
func (s *Server) DeletePost(c *gin.Context) {
	if err := s.service.DeletePost(c.Request.Context(), actorID(c), c.Param("postId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LikePost handles POST /api/posts/:postId/like
func (s *Server) LikePost(c *gin.Context) {
	s.toggleLike(c, c.Param("postId"), graph.TargetPost)
}

// IsPostLiked handles GET /api/posts/:postId/like
func (s *Server) IsPostLiked(c *gin.Context) {
	s.isLiked(c, c.Param("postId"), graph.TargetPost)
}

func (s *Server) toggleLike(c *gin.Context, targetID string, kind graph.TargetKind) {
	result, err := s.service.Like(c.Request.Context(), actorID(c), targetID, kind)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) isLiked(c *gin.Context, targetID string, kind graph.TargetKind) {
	liked, err := s.service.IsLiked(c.Request.Context(), actorID(c), targetID, kind)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}
