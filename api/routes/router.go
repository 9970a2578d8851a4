package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmattyV/scentra-backend/api/controllers"
	"github.com/mmattyV/scentra-backend/api/middleware"
	cartsvc "github.com/mmattyV/scentra-backend/internal/cart"
	checkoutsvc "github.com/mmattyV/scentra-backend/internal/checkout"
	fragrancesvc "github.com/mmattyV/scentra-backend/internal/fragrances"
	listingsvc "github.com/mmattyV/scentra-backend/internal/listings"
	mediasvc "github.com/mmattyV/scentra-backend/internal/media"
	ordersvc "github.com/mmattyV/scentra-backend/internal/orders"
	"github.com/mmattyV/scentra-backend/internal/statussync"
	"github.com/mmattyV/scentra-backend/pkg/config"
	"github.com/mmattyV/scentra-backend/pkg/db"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	"github.com/mmattyV/scentra-backend/pkg/logger"
	"github.com/mmattyV/scentra-backend/pkg/redis"
	"github.com/mmattyV/scentra-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	registry *prometheus.Registry,
	fragranceService fragrancesvc.Service,
	listingService listingsvc.Service,
	statusSync *statussync.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	orderService ordersvc.Service,
	mediaService mediasvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.RateLimit.CheckoutWindow,
		cfg.RateLimit.CheckoutIPLimit,
		cfg.RateLimit.CheckoutUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": dbP,
			"redis":    redisClient,
			"gcs":      gcsClient,
		}))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	// Browse surfaces stay public; everything that acts on behalf of a
	// user sits behind the token.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/listings", controllers.ListingBrowse(listingService, logg))
		r.Get("/listings/{listingId}", controllers.ListingGet(listingService, logg))
		r.Get("/fragrances", controllers.FragranceSearch(fragranceService, logg))
		r.Get("/fragrances/{fragranceId}", controllers.FragranceGet(fragranceService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.With(middleware.RequireRole(enums.UserRoleSeller, logg)).Group(func(r chi.Router) {
				r.Post("/listings", controllers.ListingCreate(listingService, logg))
				r.Patch("/listings/{listingId}", controllers.ListingUpdate(listingService, logg))
				r.Post("/listings/{listingId}/status", controllers.ListingStatusChange(statusSync, logg))
				r.Get("/seller/listings", controllers.SellerListings(listingService, logg))
			})

			r.With(middleware.RequireRole(enums.UserRoleBuyer, logg)).Group(func(r chi.Router) {
				r.Get("/cart", controllers.CartGet(cartService, logg))
				r.Post("/cart/items", controllers.CartAdd(cartService, logg))
				r.Delete("/cart/items/{listingId}", controllers.CartRemove(cartService, logg))
				r.Delete("/cart", controllers.CartClear(cartService, logg))
				r.Post("/cart/validate", controllers.CartValidate(cartService, logg))

				r.With(middleware.RateLimit(checkoutPolicy, redisClient, logg)).
					Post("/checkout", controllers.Checkout(checkoutService, logg))

				r.Get("/orders", controllers.OrderList(orderService, logg))
				r.Post("/orders/{orderId}/cancel", controllers.OrderCancel(orderService, logg))
			})

			r.Get("/orders/{orderId}", controllers.OrderGet(orderService, logg))

			r.Post("/media/presign", controllers.MediaPresign(mediaService, logg))
			r.Get("/media/url", controllers.MediaReadURL(mediaService, logg))

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))

				r.Post("/fragrances", controllers.FragranceCreate(fragranceService, logg))
				r.Get("/orders", controllers.AdminOrderList(orderService, logg))
				r.Post("/orders/{orderId}/status", controllers.AdminOrderSetStatus(orderService, logg))
				r.Post("/orders/{orderId}/payment-status", controllers.AdminOrderSetPaymentStatus(orderService, logg))
			})
		})
	})

	return r
}
