package auth

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/cinelog/internal/config"
	"github.com/jon4hz/cinelog/internal/database"
)

// Session keys.
const (
	sessionKeyUserID   = "user_id"
	sessionKeyLanguage = "lang"
)

const sessionContextKey = "cinelog_session"

// Session is the request-scoped view of the cookie session: the resolved
// language preference and the optional authenticated identity. It is built
// once per request by LoadSession and passed down explicitly instead of
// being read from ambient state.
type Session struct {
	User     *database.User
	Language string
}

// Authenticated reports whether the request carries a resolved identity.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// UserID returns the authenticated user's id, or nil.
func (s *Session) UserID() *uint {
	if !s.Authenticated() {
		return nil
	}
	return &s.User.ID
}

// LoadSession resolves the language preference and the optional identity
// from the cookie session into a request-scoped Session. A stale user id
// that no longer resolves is dropped from the session.
func (s *Service) LoadSession(defaultLanguage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		lang := defaultLanguage
		if v, ok := sess.Get(sessionKeyLanguage).(string); ok && v != "" {
			lang = v
		}

		result := &Session{Language: lang}

		if id, ok := sess.Get(sessionKeyUserID).(uint); ok {
			user, err := s.GetUserByID(c.Request.Context(), id)
			switch {
			case err == nil:
				result.User = user
			case errors.Is(err, database.ErrNotFound):
				sess.Delete(sessionKeyUserID)
				if err := sess.Save(); err != nil {
					log.Error("failed to drop stale session identity", "error", err)
				}
			default:
				log.Error("failed to resolve session identity", "error", err)
			}
		}

		c.Set(sessionContextKey, result)
		c.Next()
	}
}

// RequireAuth aborts requests without a resolved identity. It must run
// after LoadSession.
func (s *Service) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// CurrentSession returns the request-scoped session built by LoadSession.
func CurrentSession(c *gin.Context) *Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if sess, ok := v.(*Session); ok {
			return sess
		}
	}
	return &Session{Language: config.LanguageHungarian}
}

// SignIn persists the user's identity in the cookie session.
func SignIn(c *gin.Context, user *database.User) error {
	sess := sessions.Default(c)
	sess.Set(sessionKeyUserID, user.ID)
	return sess.Save()
}

// SignOut clears the session.
func SignOut(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	return sess.Save()
}

// SetLanguage stores the two-valued language preference in the session.
func SetLanguage(c *gin.Context, lang string) error {
	if lang != config.LanguageHungarian && lang != config.LanguageEnglish {
		lang = config.LanguageHungarian
	}
	sess := sessions.Default(c)
	sess.Set(sessionKeyLanguage, lang)
	return sess.Save()
}
