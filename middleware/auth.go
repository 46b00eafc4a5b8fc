package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/medibook/medibook/util"
)

// Token type markers embedded in JWT claims. The bearer middleware only
// accepts access tokens; refresh tokens are exchanged at the refresh endpoint.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ParseToken validates a signed JWT and returns its claims.
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return util.GetJWTSecretByte(), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// BearerAuth authenticates requests carrying "Authorization: Bearer <token>".
// On success the caller's identity (user id, role, email) is stored in the
// request context. Missing, malformed, expired, or non-access tokens abort
// with 401.
func BearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.LogUnauthorizedAccess("", "", c.ClientIP(), c.Request.URL.Path, "missing bearer token")
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Authentication credentials were not provided",
				Err: fmt.Errorf("authorization header missing"),
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header || tokenString == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Invalid authorization header format",
				Err: fmt.Errorf("expected 'Bearer <token>'"),
			})
			c.Abort()
			return
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			util.LogUnauthorizedAccess("", "", c.ClientIP(), c.Request.URL.Path, "invalid token")
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Invalid or expired token",
				Err: err,
			})
			c.Abort()
			return
		}

		if tokenType, _ := claims["type"].(string); tokenType != TokenTypeAccess {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Invalid or expired token",
				Err: fmt.Errorf("token is not an access token"),
			})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(float64)
		if !ok || userID <= 0 {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Invalid or expired token",
				Err: fmt.Errorf("token missing user id"),
			})
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)
		email, _ := claims["email"].(string)

		c.Set(ctxKeyUserID, uint(userID))
		c.Set(ctxKeyRole, role)
		c.Set(ctxKeyEmail, email)
		c.Set(ctxKeyToken, tokenString)
		c.Next()
	}
}

// RequireRole guards a route group so only callers with the given role pass.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole, ok := GetUserRole(c)
		if !ok || callerRole != role {
			userID, _ := GetUserID(c)
			email, _ := GetUserEmail(c)
			util.LogUnauthorizedAccess(fmt.Sprintf("%d", userID), email, c.ClientIP(), c.Request.URL.Path, fmt.Sprintf("requires role %s", role))
			util.CallUserForbidden(c, util.APIErrorParams{
				Msg: fmt.Sprintf("This action requires the %s role", role),
				Err: fmt.Errorf("caller role mismatch"),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
