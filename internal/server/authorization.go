package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/rentbook/internal/authorization"
	obscontext "github.com/smallbiznis/rentbook/internal/observability/context"
)

const (
	HeaderActorRole     = "X-Actor-Role"
	HeaderActorID       = "X-Actor-ID"
	HeaderActorContract = "X-Actor-Contract"

	contextActorKey = "actor"
)

// ActorRequired resolves the caller from the identity headers set by the
// upstream gateway. Requests without a role are rejected.
func (s *Server) ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := authorization.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderActorRole))))
		if role == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor := authorization.Actor{
			Role:       role,
			ID:         strings.TrimSpace(c.GetHeader(HeaderActorID)),
			ContractID: strings.TrimSpace(c.GetHeader(HeaderActorContract)),
		}
		c.Set(contextActorKey, actor)
		c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), string(actor.Role), actor.ID))
		c.Next()
	}
}

// TenantRequired restricts a route group to tenant callers bound to a contract.
func (s *Server) TenantRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := s.actorFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if actor.Role != authorization.RoleTenant {
			AbortWithError(c, ErrForbidden)
			return
		}
		if actor.ID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if contractID, err := snowflake.ParseString(actor.ContractID); err != nil || contractID <= 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := s.actorFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), actor, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) actorFromContext(c *gin.Context) (authorization.Actor, bool) {
	value, ok := c.Get(contextActorKey)
	if !ok {
		return authorization.Actor{}, false
	}
	actor, ok := value.(authorization.Actor)
	return actor, ok
}
