package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rango/internal/service"
)

const topN = 5

// RangoHandler mantiene dependencias para las páginas públicas y de contenido.
type RangoHandler struct {
	logger     *zap.Logger
	categories *service.CategoryService
	pages      *service.PageService
	users      *service.UserService
	visits     service.VisitTracker
	now        func() time.Time
}

// NewRangoHandler crea una instancia de RangoHandler con dependencias necesarias.
func NewRangoHandler(
	logger *zap.Logger,
	categories *service.CategoryService,
	pages *service.PageService,
	users *service.UserService,
) *RangoHandler {
	return &RangoHandler{
		logger:     logger,
		categories: categories,
		pages:      pages,
		users:      users,
		now:        time.Now,
	}
}

// Index maneja GET /rango/.
func (h *RangoHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()

	categories, err := h.categories.Top(ctx, topN)
	if err != nil {
		renderError(c, h.logger, err, "list top categories failed")
		return
	}
	pages, err := h.pages.Top(ctx, topN)
	if err != nil {
		renderError(c, h.logger, err, "list top pages failed")
		return
	}

	visits, err := h.visits.Track(GetSession(c), h.now())
	if err != nil {
		renderError(c, h.logger, err, "visit counter failed")
		return
	}

	render(c, http.StatusOK, "index.html", gin.H{
		"Title":      "Home",
		"Categories": categories,
		"Pages":      pages,
		"Visits":     visits,
	})
}

// About maneja GET /rango/about/.
func (h *RangoHandler) About(c *gin.Context) {
	username := "AnonymousUser"
	if user := GetCurrentUser(c); user != nil {
		username = user.Username
	}
	h.logger.Info("about page", zap.String("method", c.Request.Method), zap.String("user", username))
	render(c, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

// ShowCategory maneja GET /rango/category/:slug/.
func (h *RangoHandler) ShowCategory(c *gin.Context) {
	ctx := c.Request.Context()
	category, err := h.categories.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			render(c, http.StatusNotFound, "category.html", gin.H{"Title": "Unknown Category"})
			return
		}
		renderError(c, h.logger, err, "get category failed")
		return
	}

	pages, err := h.pages.ListByCategory(ctx, category.ID)
	if err != nil {
		renderError(c, h.logger, err, "list category pages failed")
		return
	}

	render(c, http.StatusOK, "category.html", gin.H{
		"Title":    category.Name,
		"Category": &category,
		"Pages":    pages,
	})
}

// AddCategory maneja GET y POST /rango/add_category/.
func (h *RangoHandler) AddCategory(c *gin.Context) {
	data := gin.H{
		"Title":  "Add a Category",
		"Form":   categoryForm{},
		"Errors": map[string]string{},
	}
	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "add_category.html", data)
		return
	}

	var form categoryForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warn("invalid category form", zap.Error(err))
		data["Form"] = form
		data["Errors"] = formErrors(err)
		render(c, http.StatusBadRequest, "add_category.html", data)
		return
	}

	if _, err := h.categories.Create(c.Request.Context(), form.Name); err != nil {
		data["Form"] = form
		switch {
		case errors.Is(err, service.ErrCategoryExists):
			data["Errors"] = map[string]string{"name": "Category with this Name already exists."}
		case errors.Is(err, service.ErrCategoryName):
			data["Errors"] = map[string]string{"name": "Enter a name containing letters or digits."}
		default:
			renderError(c, h.logger, err, "create category failed")
			return
		}
		render(c, http.StatusBadRequest, "add_category.html", data)
		return
	}

	c.Redirect(http.StatusSeeOther, "/rango/")
}

// AddPage maneja GET y POST /rango/category/:slug/add_page/.
func (h *RangoHandler) AddPage(c *gin.Context) {
	data := gin.H{
		"Title":  "Add a Page",
		"Form":   pageForm{},
		"Errors": map[string]string{},
	}

	category, err := h.categories.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			render(c, http.StatusNotFound, "add_page.html", data)
			return
		}
		renderError(c, h.logger, err, "get category failed")
		return
	}
	data["Category"] = &category

	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "add_page.html", data)
		return
	}

	var form pageForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warn("invalid page form", zap.Error(err))
		data["Form"] = form
		data["Errors"] = formErrors(err)
		render(c, http.StatusBadRequest, "add_page.html", data)
		return
	}

	if _, err := h.pages.Create(c.Request.Context(), category.ID, form.Title, form.URL); err != nil {
		data["Form"] = form
		switch {
		case errors.Is(err, service.ErrPageTitle):
			data["Errors"] = map[string]string{"title": "Enter a valid title."}
		case errors.Is(err, service.ErrPageURL):
			data["Errors"] = map[string]string{"url": "Enter a valid URL."}
		default:
			renderError(c, h.logger, err, "create page failed")
			return
		}
		render(c, http.StatusBadRequest, "add_page.html", data)
		return
	}

	c.Redirect(http.StatusSeeOther, "/rango/category/"+category.Slug+"/")
}

// Restricted maneja GET /rango/restricted/.
func (h *RangoHandler) Restricted(c *gin.Context) {
	user := GetCurrentUser(c)
	profile, err := h.users.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		renderError(c, h.logger, err, "get profile failed")
		return
	}
	render(c, http.StatusOK, "restricted.html", gin.H{
		"Title":   "Restricted",
		"Profile": profile,
	})
}
