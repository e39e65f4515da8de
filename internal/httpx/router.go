package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/grubdash/internal/httpx/middlewares"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	AllowedOrigins []string

	// TracerProvider defaults to the global provider when nil.
	TracerProvider trace.TracerProvider
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.NameSpanByRoute)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/healthz", handler.Health)

	r.Route("/dishes", func(r chi.Router) {
		r.Get("/", handler.serve(handler.dishes.List))
		r.Post("/", handler.serve(handler.dishes.Create))
		r.Get("/{dishId}", handler.serve(handler.dishes.Read, "dishId"))
		r.Put("/{dishId}", handler.serve(handler.dishes.Update, "dishId"))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", handler.serve(handler.orders.List))
		r.Post("/", handler.serve(handler.orders.Create))
		r.Get("/{orderId}", handler.serve(handler.orders.Read, "orderId"))
		r.Put("/{orderId}", handler.serve(handler.orders.Update, "orderId"))
		r.Delete("/{orderId}", handler.serve(handler.orders.Delete, "orderId"))
	})

	otelOpts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method
		}),
	}
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
	}
	return otelhttp.NewHandler(r, "grubdash", otelOpts...)
}
