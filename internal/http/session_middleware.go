package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rango/internal/domain"
	"rango/internal/service"
)

const (
	sessionCookieName = "sessionid"
	sessionKey        = "session"
	currentUserKey    = "user"
	loginURL          = "/rango/login/"
)

// SessionMiddleware carga la sesión del cliente antes del handler y la
// persiste al terminar si fue modificada. La cookie se emite, o se renueva,
// justo antes de escribir los headers cuando la sesión es nueva o cambió.
func SessionMiddleware(logger *zap.Logger, sessions *service.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(sessionCookieName)
		sess, err := sessions.Load(c.Request.Context(), cookie)
		if err != nil {
			logger.Error("load session failed", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Set(sessionKey, sess)

		w := &sessionWriter{ResponseWriter: c.Writer, c: c, logger: logger, sessions: sessions, sess: sess}
		c.Writer = w

		c.Next()

		if !w.Written() {
			w.issueCookie()
		}
		if err := sessions.Save(c.Request.Context(), sess); err != nil {
			logger.Error("save session failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		}
	}
}

// sessionWriter renueva la cookie de sesión antes del primer write.
type sessionWriter struct {
	gin.ResponseWriter
	c        *gin.Context
	logger   *zap.Logger
	sessions *service.SessionManager
	sess     *service.Session
	issued   bool
}

func (w *sessionWriter) issueCookie() {
	if w.issued {
		return
	}
	w.issued = true
	if !w.sess.IsNew() && !w.sess.Modified() {
		return
	}
	if err := writeSessionCookie(w.c, w.sessions, w.sess); err != nil {
		w.logger.Error("sign session failed", zap.Error(err))
	}
}

func (w *sessionWriter) WriteHeader(code int) {
	w.issueCookie()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.issueCookie()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(data []byte) (int, error) {
	w.issueCookie()
	return w.ResponseWriter.Write(data)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.issueCookie()
	return w.ResponseWriter.WriteString(s)
}

// CurrentUserMiddleware resuelve el usuario autenticado de la sesión.
func CurrentUserMiddleware(logger *zap.Logger, users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil {
			c.Next()
			return
		}
		userID := sess.Get(service.SessionKeyUserID, "")
		if userID == "" {
			c.Next()
			return
		}
		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			// usuario borrado o deshabilitado: la sesión deja de estar autenticada
			if !errors.Is(err, service.ErrUserNotFound) {
				logger.Error("load session user failed", zap.Error(err))
			}
			sess.Delete(service.SessionKeyUserID)
			c.Next()
			return
		}
		if !user.IsActive {
			sess.Delete(service.SessionKeyUserID)
			c.Next()
			return
		}
		c.Set(currentUserKey, &user)
		c.Next()
	}
}

// LoginRequired redirige al login a los clientes anónimos.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetCurrentUser(c) == nil {
			c.Redirect(http.StatusFound, loginURL+"?next="+url.QueryEscape(c.Request.URL.Path))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSession obtiene la sesión desde el contexto.
func GetSession(c *gin.Context) *service.Session {
	val, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := val.(*service.Session)
	return sess
}

// GetCurrentUser devuelve nil para clientes anónimos.
func GetCurrentUser(c *gin.Context) *domain.User {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := val.(*domain.User)
	return user
}

// writeSessionCookie emite la cookie firmada reemplazando una emitida antes
// en la misma respuesta.
func writeSessionCookie(c *gin.Context, sessions *service.SessionManager, sess *service.Session) error {
	token, err := sessions.Token(sess)
	if err != nil {
		return err
	}

	header := c.Writer.Header()
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, sessionCookieName+"=") {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isHTTPS(c),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessions.TTL().Seconds()),
	})
	return nil
}

func isHTTPS(c *gin.Context) bool {
	return c.Request != nil && (c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https"))
}
