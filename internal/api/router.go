package api

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"ride-fare-service/internal/api/handlers"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Dependencies is everything the HTTP layer needs.
type Dependencies struct {
	handlers.Deps

	SessionTTL   time.Duration
	CookieSecure bool
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Dependencies) (http.Handler, error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
		deps.Log = log
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"deeplink": deeplink,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	r.Use(recovery(log))
	r.Use(requestID())
	r.Use(accessLog(log))

	r.GET("/health", handlers.Health)

	h := handlers.New(deps.Deps)

	web := r.Group("/", session(deps.SessionTTL, deps.CookieSecure))
	{
		web.GET("/", h.Home)
		web.POST("/results", h.Results)
		web.GET("/autocomplete", h.Autocomplete)
		web.GET("/api/estimates", h.Estimates)
		web.GET("/sample-rides", h.SampleRides)
		web.GET("/ai-prediction", handlers.AIPrediction)
		web.GET("/contact", handlers.Contact)
		web.GET("/login", h.Login)
		web.GET("/callback", h.Callback)
		web.GET("/logout", h.Logout)
	}

	return r, nil
}

// deeplink lets provider app links through html/template URL filtering.
// Unknown schemes render as "#".
func deeplink(raw string) template.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return "#"
	}
	switch u.Scheme {
	case "https", "http", "olacabs", "uber":
		return template.URL(raw)
	}
	return "#"
}
