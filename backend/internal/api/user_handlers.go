package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialgraph/backend/internal/social"
)

type registerRequest struct {
	Username string `form:"username" json:"username"`
	FullName string `form:"fullName" json:"fullName"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Bio      string `form:"bio" json:"bio"`
}

// Register handles POST /api/auth/register. The optional profile picture
// arrives as the multipart file "picture".
func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	picture, closer, err := formUpload(c, "picture")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer closer.Close()

	user, err := s.service.Register(c.Request.Context(), social.RegisterInput{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Bio:      req.Bio,
		Picture:  picture,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username"`
		Password string `form:"password" json:"password"`
	}
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	session, err := s.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *gin.Context) {
	if err := s.service.Logout(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUsers handles GET /api/users
func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.service.ListUsers(c.Request.Context(), actorID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/users/:userId
func (s *Server) GetUser(c *gin.Context) {
	user, err := s.service.GetUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserByUsername handles GET /api/usernames/:username
func (s *Server) GetUserByUsername(c *gin.Context) {
	user, err := s.service.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Profile handles GET /api/users/:userId/profile
func (s *Server) Profile(c *gin.Context) {
	profile, err := s.service.Profile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Search handles GET /api/search?q=
func (s *Server) Search(c *gin.Context) {
	names, err := s.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, names)
}

type profileRequest struct {
	FullName *string `form:"fullName" json:"fullName"`
	Email    *string `form:"email" json:"email"`
	Bio      *string `form:"bio" json:"bio"`
}

// UpdateProfile handles PATCH /api/users/:userId
func (s *Server) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	picture, closer, err := formUpload(c, "picture")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer closer.Close()

	user, err := s.service.UpdateProfile(c.Request.Context(), actorID(c), c.Param("userId"), social.ProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
		Bio:      req.Bio,
		Picture:  picture,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteAccount handles DELETE /api/users/:userId
func (s *Server) DeleteAccount(c *gin.Context) {
	if err := s.service.DeleteAccount(c.Request.Context(), actorID(c), c.Param("userId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
