package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/marketflow-backend/internal/config"
)

const (
	// SessionIDKey is the context key holding the cart session id
	SessionIDKey = "session_id"
	// SessionIDHeader lets non-browser clients name their session explicitly
	SessionIDHeader = "X-Session-ID"
)

// Session resolves the cart session for the request. The id comes from the
// X-Session-ID header, then the session cookie; a new one is issued when
// neither holds a valid UUID.
func Session(cfg *config.Config) gin.HandlerFunc {
	cookieName := cfg.Cart.SessionCookie
	secure := cfg.IsProduction()

	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionIDHeader)
		if !validSessionID(sessionID) {
			sessionID, _ = c.Cookie(cookieName)
		}

		if !validSessionID(sessionID) {
			sessionID = uuid.New().String()
			c.SetCookie(cookieName, sessionID, cfg.Cart.CookieMaxAge, "/", "", secure, true)
		}

		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// GetSessionID returns the session id resolved by Session
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

func validSessionID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
