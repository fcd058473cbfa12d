package http

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rango/internal/service"
)

// RouterOptions agrupa lo que el router necesita además de los handlers.
type RouterOptions struct {
	Templates  *template.Template
	Sessions   *service.SessionManager
	Users      *service.UserService
	MediaDir   string
	SSLEnabled bool
}

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	opts RouterOptions,
	rangoH *RangoHandler,
	authH *AuthHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y headers de seguridad.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), secureMiddleware(opts.SSLEnabled))
	r.SetHTMLTemplate(opts.Templates)

	if opts.MediaDir != "" {
		r.Static("/media", opts.MediaDir)
	}

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/rango/")
	})

	rango := r.Group("/rango")
	rango.Use(SessionMiddleware(logger, opts.Sessions), CurrentUserMiddleware(logger, opts.Users))
	rango.GET("/", rangoH.Index)
	rango.GET("/about/", rangoH.About)
	rango.GET("/category/:slug/", rangoH.ShowCategory)
	rango.GET("/register/", authH.Register)
	rango.POST("/register/", authH.Register)
	rango.GET("/login/", authH.Login)
	rango.POST("/login/", authH.Login)

	private := rango.Group("")
	private.Use(LoginRequired())
	private.GET("/add_category/", rangoH.AddCategory)
	private.POST("/add_category/", rangoH.AddCategory)
	private.GET("/category/:slug/add_page/", rangoH.AddPage)
	private.POST("/category/:slug/add_page/", rangoH.AddPage)
	private.GET("/restricted/", rangoH.Restricted)
	private.GET("/logout/", authH.Logout)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// secureMiddleware agrega headers de seguridad; los de TLS solo si la app
// termina SSL por sí misma.
func secureMiddleware(sslEnabled bool) gin.HandlerFunc {
	cfg := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
	if sslEnabled {
		cfg.SSLRedirect = true
		cfg.STSSeconds = 31536000
		cfg.STSIncludeSubdomains = true
	}
	return secure.New(cfg)
}
