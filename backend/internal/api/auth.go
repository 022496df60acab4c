package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "socialgraph/backend/pkg/errors"
)

const (
	actorKey = "actorID"
	tokenKey = "token"
)

// requireActor resolves the bearer token and stores the actor id on the context
func (s *Server) requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			s.fail(c, apperrors.NewUnauthenticated("missing bearer token", nil))
			return
		}

		actorID, err := s.resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			s.fail(c, err)
			return
		}

		c.Set(actorKey, actorID)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func actorID(c *gin.Context) string {
	return c.GetString(actorKey)
}
