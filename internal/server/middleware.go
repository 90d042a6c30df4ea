package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/raihasa-dev/raihasa/internal/api"
	"github.com/raihasa-dev/raihasa/internal/guard"
	"github.com/raihasa-dev/raihasa/internal/models"
	"github.com/raihasa-dev/raihasa/internal/session"
	"github.com/raihasa-dev/raihasa/internal/token"
)

const (
	ctxSession   = "session"
	ctxTokens    = "tokens"
	ctxRequestID = "request_id"
)

// requestIDMiddleware tags every request with an ID for log correlation
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// sessionMiddleware attaches the visitor's session store and token store to
// the request. A missing session cookie gets a fresh ID; the store for that
// ID is created lazily and hydrated by the manager.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	secure := s.cfg.Server.SecureCookies
	return func(c *gin.Context) {
		sid, err := c.Cookie(session.CookieName)
		if err != nil || sid == "" {
			sid = s.sessions.NewID()
			// Session cookie, no expiry: lives for the browser session
			c.SetCookie(session.CookieName, sid, 0, "/", "", secure, true)
		}

		store := s.sessions.Get(c.Request.Context(), sid)
		tokens := token.NewCookieStore(c, secure)

		c.Set(ctxSession, store)
		c.Set(ctxTokens, tokens)
		c.Next()
	}
}

// guardMiddleware applies the route guard for one audience
func (s *Server) guardMiddleware(audience guard.Audience) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := currentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "No session attached"})
			return
		}

		var role models.Role
		if user := store.User(); user != nil {
			role = user.Role
		}

		decision := guard.Decide(guard.Session{
			Loading:       store.Loading(),
			Authenticated: store.Authenticated(),
			Role:          role,
		}, audience)

		switch decision.Action {
		case guard.Allow:
			c.Next()
		case guard.Defer:
			// The manager hydrates stores synchronously, so this only
			// happens for stores created outside it. Never redirect here.
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session is hydrating"})
		case guard.Redirect:
			if decision.RememberPath {
				store.RememberPath(c.Request.Context(), c.Request.URL.Path)
			}
			c.Redirect(http.StatusFound, decision.Target)
			c.Abort()
		}
	}
}

// currentSession returns the session store attached by sessionMiddleware
func currentSession(c *gin.Context) (*session.Store, bool) {
	value, exists := c.Get(ctxSession)
	if !exists {
		return nil, false
	}
	store, ok := value.(*session.Store)
	return store, ok
}

// currentTokens returns the token store attached by sessionMiddleware
func currentTokens(c *gin.Context) (token.Store, bool) {
	value, exists := c.Get(ctxTokens)
	if !exists {
		return nil, false
	}
	tokens, ok := value.(token.Store)
	return tokens, ok
}

// respondBackendError surfaces a backend rejection with its own status and
// message, and everything else (network failures included) with the generic
// fallback; no distinct handling path exists for the latter.
func (s *Server) respondBackendError(c *gin.Context, err error) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
		return
	}
	s.logger.Error().Err(err).Str("request_id", c.GetString(ctxRequestID)).Msg("Backend request failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": api.Message(err)})
}
