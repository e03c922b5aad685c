package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/requestdata"
)

// AuthMiddleware resolves the caller identity for every request. It accepts
// a Bearer JWT (HS256, user id in the sub claim) or, for trusted local
// clients, a bare X-User-ID header. The core re-checks ownership either way,
// so a forged header can only ever reach that user's own data.
type AuthMiddleware struct {
	log       *logger.Logger
	jwtSecret []byte
}

func NewAuthMiddleware(log *logger.Logger, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		log:       log.With("middleware", "AuthMiddleware"),
		jwtSecret: []byte(jwtSecret),
	}
}

func (am *AuthMiddleware) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := am.resolveUserID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) resolveUserID(c *gin.Context) (uuid.UUID, error) {
	if token := extractBearerToken(c); token != "" {
		return am.parseToken(token)
	}
	if header := strings.TrimSpace(c.GetHeader("X-User-ID")); header != "" {
		id, err := uuid.Parse(header)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid X-User-ID header")
		}
		return id, nil
	}
	return uuid.Nil, fmt.Errorf("missing identity")
}

func (am *AuthMiddleware) parseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return am.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, fmt.Errorf("token missing subject")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not a user id")
	}
	return id, nil
}

// extractBearerToken prefers the Authorization header. The token query
// parameter exists only because EventSource cannot set request headers, so
// browser SSE clients have no other way to present a JWT; such URLs can end
// up in access logs, which is why short-lived tokens are expected there.
func extractBearerToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
