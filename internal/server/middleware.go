package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/lodgeops/lodgeops/internal/admincontext"
)

const contextAdminIDKey = "admin_id"

// AuthRequired validates the bearer token and injects the admin scope
// into the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		subject, err := s.adminSvc.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		adminID, err := snowflake.ParseString(subject)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextAdminIDKey, adminID.String())
		ctx := admincontext.WithAdminID(c.Request.Context(), adminID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
