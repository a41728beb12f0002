package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/response"
	"github.com/stemsi/exstem-enroll/internal/service"
	"github.com/stemsi/exstem-enroll/internal/session"
)

const (
	// SessionCookieName holds the signed session token.
	SessionCookieName = "exstem_session"
	// ContextKeySession is the Gin context key for the loaded *session.Session.
	ContextKeySession = "session"
)

// SessionManager loads the browser session before a handler runs and saves
// it before the response is committed.
type SessionManager struct {
	auth   *service.AuthService
	store  session.Store
	secure bool
	log    zerolog.Logger
}

// NewSessionManager creates a SessionManager. secure marks the cookie HTTPS only.
func NewSessionManager(auth *service.AuthService, store session.Store, secure bool, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		auth:   auth,
		store:  store,
		secure: secure,
		log:    log.With().Str("component", "session").Logger(),
	}
}

// sessionWriter saves a dirty session the moment the handler starts writing,
// so the next request from the browser always sees it.
type sessionWriter struct {
	gin.ResponseWriter
	commit func()
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

// Middleware attaches the session to the context.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := m.load(c)
		if err != nil {
			m.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Failed to load session")
			response.ServerError(c, nil)
			c.Abort()
			return
		}
		c.Set(ContextKeySession, sess)

		commit := func() {
			current := GetSession(c)
			if current == nil || !current.Dirty() {
				return
			}
			if err := m.store.Save(c.Request.Context(), current); err != nil {
				m.log.Error().Err(err).Str("session_id", current.ID).Msg("Failed to save session")
				return
			}
			current.MarkClean()
		}

		c.Writer = &sessionWriter{ResponseWriter: c.Writer, commit: commit}
		c.Next()
		commit()
	}
}

func (m *SessionManager) load(c *gin.Context) (*session.Session, error) {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		if id, err := m.auth.ParseSessionToken(token); err == nil {
			sess, err := m.store.Get(c.Request.Context(), id)
			if err == nil {
				return sess, nil
			}
			if !errors.Is(err, session.ErrNotFound) {
				return nil, err
			}
		}
	}

	sess := session.New()
	if err := m.setCookie(c, sess.ID); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *SessionManager) setCookie(c *gin.Context, id string) error {
	token, err := m.auth.SignSessionToken(id)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(m.auth.SessionTTL().Seconds()), "/", "", m.secure, true)
	return nil
}

// Renew gives the current session a new ID and cookie, dropping the old ID.
func (m *SessionManager) Renew(c *gin.Context) error {
	sess := GetSession(c)
	if sess == nil {
		return errors.New("no session in context")
	}
	old := sess.Rotate()
	if err := m.store.Delete(c.Request.Context(), old); err != nil {
		m.log.Warn().Err(err).Str("session_id", old).Msg("Failed to delete rotated session")
	}
	return m.setCookie(c, sess.ID)
}

// Destroy logs the browser out: the stored session is removed and the
// context carries a blank one under a new ID.
func (m *SessionManager) Destroy(c *gin.Context) error {
	sess := GetSession(c)
	if sess == nil {
		return nil
	}
	sess.Clear()
	return m.Renew(c)
}

// GetSession returns the session loaded by SessionManager.Middleware.
func GetSession(c *gin.Context) *session.Session {
	v, ok := c.Get(ContextKeySession)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
