package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/shelflife/internal/http/auth"
	"github.com/MrJamesThe3rd/shelflife/internal/http/cooked"
	"github.com/MrJamesThe3rd/shelflife/internal/http/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/http/export"
	"github.com/MrJamesThe3rd/shelflife/internal/http/importcsv"
	"github.com/MrJamesThe3rd/shelflife/internal/http/items"
	"github.com/MrJamesThe3rd/shelflife/internal/http/products"
	"github.com/MrJamesThe3rd/shelflife/internal/http/sessions"
)

type Options struct {
	AllowedOrigins []string
	// AuthSecret enables bearer-token auth on /api/v1 when set.
	AuthSecret string
	Timeout    time.Duration
}

// Handlers groups the v1 route handlers.
type Handlers struct {
	Expiry   *expiry.Handler
	Items    *items.Handler
	Sessions *sessions.Handler
	Products *products.Handler
	Import   *importcsv.Handler
	Export   *export.Handler
	Cooked   *cooked.Handler
}

func New(opts Options, v1 Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.AuthSecret))

		r.Route("/expiry", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Expiry.Routes(r)
		})

		r.Route("/items", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Items.Routes(r)
		})

		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Products.Routes(r)
		})

		r.Route("/sessions", v1.Sessions.Routes)
		r.Route("/import", v1.Import.Routes)
		r.Route("/export", v1.Export.Routes)
		r.Route("/cooked", v1.Cooked.Routes)
	})

	return router
}
