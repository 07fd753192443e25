package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/girmmy/gimmyai/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida el access token del header Authorization y deja los
// claims verificados en el contexto. Lo único que el resto del API necesita
// del proveedor de identidad es el id de usuario firmado.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := jwtSvc.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// bearerToken extrae el token de un header "Bearer <token>"; el esquema se
// compara sin distinguir mayúsculas.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// GetAuthClaims obtiene los claims verificados desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
