package middleware

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// SessionCheck reports whether the session a token references is still
// active. Revoking a session invalidates every token minted for it.
type SessionCheck func(ctx context.Context, sessionID string) bool

// JWTAuth verifies the bearer token and stamps X-User-ID / X-Session-ID
// headers for downstream handlers.
func JWTAuth(secret string, sessionActive SessionCheck, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			sessionID, _ := claims["session_id"].(string)
			if sessionActive != nil && !sessionActive(ctx, sessionID) {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			if userID, ok := claims["user_id"].(string); ok {
				ctx.Request.Header.Set("X-User-ID", userID)
			}
			ctx.Request.Header.Set("X-Session-ID", sessionID)

			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
