package middleware

import (
	"strings"

	token "anoa.com/pengaduan/internal/modules/token/service"
	"anoa.com/pengaduan/pkg/apperror"
	"anoa.com/pengaduan/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	tokens token.Service
}

func NewAuthMiddleware(tokens token.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth resolves the bearer token and stores the caller's user id and
// token id on the context. Anything else is answered with 401.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			response.ResponseError(c, apperror.ErrUnauthorized)
			return
		}

		identity, err := m.tokens.Resolve(c.Request.Context(), tokenString)
		if err != nil {
			response.ResponseError(c, err)
			return
		}

		c.Set(response.ContextUserID, identity.UserID)
		c.Set(response.ContextTokenID, identity.TokenID)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
