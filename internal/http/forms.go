package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type categoryForm struct {
	Name string `form:"name" binding:"required,max=128"`
}

type pageForm struct {
	Title string `form:"title" binding:"required,max=128"`
	URL   string `form:"url" binding:"required,max=200"`
}

type registerForm struct {
	Username string `form:"username" binding:"required,max=150"`
	Email    string `form:"email" binding:"omitempty,email"`
	Password string `form:"password" binding:"required"`
	Website  string `form:"website" binding:"omitempty,max=200"`
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

// formErrors traduce errores de binding a mensajes por campo.
func formErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["form"] = "The submitted form could not be read."
		return out
	}
	for _, fe := range verrs {
		out[formFieldName(fe.StructField())] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	default:
		return "Enter a valid value."
	}
}

func formFieldName(structField string) string {
	switch structField {
	case "URL":
		return "url"
	default:
		return strings.ToLower(structField)
	}
}

func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = GetCurrentUser(c)
	}
	c.HTML(status, name, data)
}

func renderError(c *gin.Context, logger *zap.Logger, err error, msg string) {
	logger.Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	render(c, http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Server Error",
		"Message": "Something went wrong while processing your request.",
	})
}
