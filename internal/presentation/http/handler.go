package httppresentation

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/delus-studio/storefront/internal/application"
	appcart "github.com/delus-studio/storefront/internal/application/cart"
	appcatalog "github.com/delus-studio/storefront/internal/application/catalog"
	appcheckout "github.com/delus-studio/storefront/internal/application/checkout"
	appfulfillment "github.com/delus-studio/storefront/internal/application/fulfillment"
	"github.com/delus-studio/storefront/internal/domain/cart"
	"github.com/delus-studio/storefront/internal/observability"
	"github.com/spf13/afero"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	headerStripeSig      = "Stripe-Signature"

	defaultMaxUploadBytes = 64 << 20
	maxWebhookBytes       = 65536
)

// CartStore persists the cart between requests of one client session.
type CartStore interface {
	Load(r *http.Request) (*cart.Cart, error)
	Save(w http.ResponseWriter, r *http.Request, c *cart.Cart) error
}

type (
	UploadTrack   = application.UseCase[appcatalog.UploadTrackInput, *appcatalog.UploadTrackResult]
	AddToCart     = application.UseCase[appcart.AddToCartInput, *appcart.AddToCartResult]
	CreateSession = application.UseCase[appcheckout.CreateSessionInput, *appcheckout.CreateSessionResult]
	HandleWebhook = application.UseCase[appfulfillment.WebhookInput, *appfulfillment.WebhookResult]
)

type Deps struct {
	Catalog       *appcatalog.Service
	UploadTrack   UploadTrack
	AddToCart     AddToCart
	CreateSession CreateSession
	Success       *appcheckout.SuccessService
	HandleWebhook HandleWebhook
	Carts         CartStore
}

type Options struct {
	PublishableKey string
	// BaseURL overrides the origin derived from the request when building absolute URLs.
	BaseURL        string
	StaticFS       afero.Fs
	StaticDir      string
	MaxUploadBytes int64
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

type Handler struct {
	deps Deps
	opts Options
	log  observability.Logger
	tel  observability.Observability
}

func NewHandler(deps Deps, opts Options, logger observability.Logger, tel observability.Observability) *Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if tel == nil {
		tel = observability.Nop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.StaticFS == nil {
		opts.StaticFS = afero.NewOsFs()
	}
	if opts.StaticDir == "" {
		opts.StaticDir = "static"
	}
	return &Handler{
		deps: deps,
		opts: opts,
		log:  logger.With(observability.F("component", componentHTTPHandler)),
		tel:  tel,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// trace, request logger, metrics, access log, recover, handler
	h.muxHandle(mux, http.MethodGet, "/{$}", h.handleHome)
	h.muxHandle(mux, http.MethodGet, "/api/products", h.handleProducts)
	h.muxHandle(mux, http.MethodGet, "/api/playlist", h.handlePlaylist)
	h.muxHandle(mux, http.MethodPost, "/upload-track", h.handleUploadTrack)

	h.muxHandle(mux, http.MethodPost, "/add-to-cart/{productId}", h.handleAddToCart)
	h.muxHandle(mux, http.MethodGet, "/cart", h.handleViewCart)
	h.muxHandle(mux, http.MethodPost, "/remove-from-cart/{productId}", h.handleRemoveFromCart)

	h.muxHandle(mux, http.MethodPost, "/create-checkout-session", h.handleCreateCheckoutSession)
	h.muxHandle(mux, http.MethodGet, "/success", h.handleSuccess)
	h.muxHandle(mux, http.MethodPost, "/webhook", h.handleWebhook)
	h.muxHandle(mux, http.MethodGet, "/config", h.handleConfig)

	h.muxHandle(mux, http.MethodGet, "/sitemap.xml", h.handleSitemap)
	h.muxHandle(mux, http.MethodGet, "/robots.txt", h.handleRobots)
	h.muxHandle(mux, http.MethodGet, "/health", h.handleHealth)

	static := http.StripPrefix("/static/", http.FileServer(afero.NewHttpFs(h.opts.StaticFS).Dir(h.opts.StaticDir)))
	h.muxHandle(mux, http.MethodGet, "/static/", static.ServeHTTP)

	if h.opts.Metrics != nil {
		mux.Handle("GET /metrics", h.opts.Metrics)
	}
	return mux
}

func (h *Handler) muxHandle(mux *http.ServeMux, method, route string, handler http.HandlerFunc) {
	label := method + " " + strings.TrimSuffix(route, "{$}")
	wrapped := h.withTrace(
		ObservabilityMiddleware(
			h.log,
			func(r *http.Request) string { return r.Header.Get(headerRequestID) },
		)(
			h.withHTTPMetrics(
				h.withAccessLog(h.withRecover(handler)),
			),
		),
	)
	mux.Handle(method+" "+route, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// stable route template keeps metric labels low-cardinality
		wrapped.ServeHTTP(w, r.WithContext(contextWithRoute(r.Context(), label)))
	}))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publishableKey": h.opts.PublishableKey})
}

// baseURL returns the externally visible origin with a trailing slash.
func (h *Handler) baseURL(r *http.Request) string {
	if h.opts.BaseURL != "" {
		return strings.TrimRight(h.opts.BaseURL, "/") + "/"
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + r.Host + "/"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type (
	routeKey     struct{}
	requestIDKey struct{}
)

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// requestIDFromContext returns the id assigned by ObservabilityMiddleware, or "".
func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
