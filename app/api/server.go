package api

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/content-calendar/app/auth"
)

const authRealm = "Content Calendar"

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"isoDate": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
	"longDate": func(t time.Time) string {
		return t.Format("Monday, January 2, 2006")
	},
	"monthTitle": func(t time.Time) string {
		return t.Format("January 2006")
	},
	"dayOfMonth": func(t time.Time) int {
		return t.Day()
	},
	"imageURL": func(name string) string {
		return "/images/" + url.PathEscape(name)
	},
	"blanks": func(n int) []struct{} {
		return make([]struct{}, n)
	},
}

// NewServer creates the HTTP server. Every route sits behind Basic auth.
func NewServer(handler *Handler, verifier auth.Verifier) *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")))

	protected := r.Group("/")
	protected.Use(basicAuthMiddleware(verifier))
	{
		protected.GET("/", handler.Index)

		protected.GET("/upload-calendar", handler.UploadCalendarForm)
		protected.POST("/upload-calendar", handler.limitBody, handler.UploadCalendar)

		protected.GET("/upload-image", handler.UploadImageForm)
		protected.POST("/upload-image", handler.limitBody, handler.UploadImage)

		protected.Static("/images", handler.resolver.Dir())

		protected.GET("/api/activity", handler.Activity)
		protected.GET("/health", handler.Health)
	}

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return r
}

func basicAuthMiddleware(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || !verifier(username, password) {
			if ok {
				slog.Warn("Authentication failed", "username", username, "client_ip", c.ClientIP())
			}
			c.Header("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", authRealm))
			c.String(http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		c.Next()
	}
}
