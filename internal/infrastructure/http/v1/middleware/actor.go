package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	appctx "rebanho/internal/core/context"
	"rebanho/pkg/logger"
)

// Actor extracts the acting user from a bearer token for audit
// attribution. Requests without a token (or with a bad one) proceed as
// "system": the service trusts its perimeter and the token only names who
// typed the document in.
func Actor(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.Next()
			return
		}

		claims := jwt.MapClaims{}
		parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
		var err error
		if jwtSecret != "" {
			_, err = parser.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
				return []byte(jwtSecret), nil
			})
		} else {
			_, _, err = parser.ParseUnverified(parts[1], claims)
		}
		if err != nil {
			logger.Warn(c.Request.Context(), "bearer token ignored", "error", err)
			c.Next()
			return
		}

		actor := &appctx.Actor{}
		if sub, ok := claims["sub"].(string); ok {
			actor.Subject = sub
		}
		if name, ok := claims["name"].(string); ok {
			actor.Name = name
		}
		if actor.Subject == "" && actor.Name == "" {
			c.Next()
			return
		}

		ctx := appctx.WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)
		c.Set("actor", appctx.ActorName(ctx))
		c.Next()
	}
}
