package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rango/internal/media"
	"rango/internal/service"
)

// AuthHandler mantiene dependencias para registro, login y logout.
type AuthHandler struct {
	logger   *zap.Logger
	users    *service.UserService
	sessions *service.SessionManager
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, users *service.UserService, sessions *service.SessionManager) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		users:    users,
		sessions: sessions,
	}
}

// Register maneja GET y POST /rango/register/.
func (h *AuthHandler) Register(c *gin.Context) {
	data := gin.H{
		"Title":      "Register",
		"Registered": false,
		"Form":       registerForm{},
		"Errors":     map[string]string{},
	}
	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "register.html", data)
		return
	}

	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warn("invalid register form", zap.Error(err))
		data["Form"] = form
		data["Errors"] = formErrors(err)
		render(c, http.StatusBadRequest, "register.html", data)
		return
	}
	data["Form"] = form

	var picture *multipart.FileHeader
	file, err := c.FormFile("picture")
	switch {
	case err == nil:
		picture = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.logger.Warn("invalid picture upload", zap.Error(err))
		data["Errors"] = map[string]string{"picture": "Upload a valid image."}
		render(c, http.StatusBadRequest, "register.html", data)
		return
	}

	_, _, err = h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		Website:  form.Website,
		Picture:  picture,
	})
	if err != nil {
		var field, msg string
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			field, msg = "username", "A user with that username already exists."
		case errors.Is(err, service.ErrInvalidUsername):
			field, msg = "username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
		case errors.Is(err, service.ErrPasswordRequired):
			field, msg = "password", "This field is required."
		case errors.Is(err, media.ErrUnsupportedImage), errors.Is(err, media.ErrImageTooLarge):
			field, msg = "picture", "Upload a valid image. The file you uploaded was either not an image or too large."
		default:
			renderError(c, h.logger, err, "register user failed")
			return
		}
		h.logger.Warn("register rejected", zap.Error(err), zap.String("username", form.Username))
		data["Errors"] = map[string]string{field: msg}
		render(c, http.StatusBadRequest, "register.html", data)
		return
	}

	data["Registered"] = true
	render(c, http.StatusOK, "register.html", data)
}

// Login maneja GET y POST /rango/login/.
func (h *AuthHandler) Login(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "login.html", gin.H{
			"Title":    "Login",
			"Next":     c.Query("next"),
			"Username": "",
			"Error":    "",
		})
		return
	}

	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warn("invalid login form", zap.Error(err))
		render(c, http.StatusBadRequest, "login.html", gin.H{
			"Title":    "Login",
			"Next":     "",
			"Username": "",
			"Error":    "The submitted form could not be read.",
		})
		return
	}
	data := gin.H{
		"Title":    "Login",
		"Next":     form.Next,
		"Username": form.Username,
	}

	user, err := h.users.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.logger.Info("invalid login details", zap.String("username", form.Username))
			data["Error"] = "Invalid login details supplied."
			render(c, http.StatusUnauthorized, "login.html", data)
		case errors.Is(err, service.ErrAccountDisabled):
			data["Error"] = "Your Rango account is disabled."
			render(c, http.StatusForbidden, "login.html", data)
		case errors.Is(err, service.ErrRateLimited):
			data["Error"] = "Too many login attempts. Please try again later."
			render(c, http.StatusTooManyRequests, "login.html", data)
		default:
			renderError(c, h.logger, err, "login failed")
		}
		return
	}

	sess := GetSession(c)
	if err := h.sessions.Rotate(c.Request.Context(), sess); err != nil {
		renderError(c, h.logger, err, "rotate session failed")
		return
	}
	sess.Set(service.SessionKeyUserID, user.ID)
	if err := h.sessions.Save(c.Request.Context(), sess); err != nil {
		renderError(c, h.logger, err, "save session failed")
		return
	}
	if err := writeSessionCookie(c, h.sessions, sess); err != nil {
		renderError(c, h.logger, err, "sign session failed")
		return
	}

	c.Redirect(http.StatusSeeOther, safeRedirect(form.Next))
}

// Logout maneja GET /rango/logout/.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := GetSession(c)
	if err := h.sessions.Flush(c.Request.Context(), sess); err != nil {
		renderError(c, h.logger, err, "flush session failed")
		return
	}
	if err := writeSessionCookie(c, h.sessions, sess); err != nil {
		renderError(c, h.logger, err, "sign session failed")
		return
	}
	c.Redirect(http.StatusFound, "/rango/")
}

// safeRedirect solo acepta rutas locales.
func safeRedirect(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	return "/rango/"
}
