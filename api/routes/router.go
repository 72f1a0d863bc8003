package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-engine/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-engine/api/controllers/cart"
	checkoutcontrollers "github.com/angelmondragon/storefront-engine/api/controllers/checkout"
	"github.com/angelmondragon/storefront-engine/api/middleware"
	cartstore "github.com/angelmondragon/storefront-engine/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-engine/internal/checkout"
	"github.com/angelmondragon/storefront-engine/pkg/config"
	"github.com/angelmondragon/storefront-engine/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	cart *cartstore.Store,
	checkout *checkoutsvc.Machine,
	readiness ...controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Identity(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness...))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", cartcontrollers.GetCart(cart, logg))
		r.Delete("/", cartcontrollers.ClearCart(cart, logg))
		r.Post("/items", cartcontrollers.AddItem(cart, logg))
		r.Put("/items", cartcontrollers.UpdateItem(cart, logg))
		r.Delete("/items/{productID}", cartcontrollers.RemoveItem(cart, logg))
		r.Post("/validate", cartcontrollers.ValidateCart(cart, logg))
		r.Post("/sync", cartcontrollers.SyncCart(cart, logg))
		r.Post("/merge", cartcontrollers.MergeCart(cart, logg))
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Get("/", checkoutcontrollers.GetCheckout(checkout, logg))
		r.Post("/shipping-address", checkoutcontrollers.SetShippingAddress(checkout, logg))
		r.Get("/shipping-rates", checkoutcontrollers.GetShippingRates(checkout, cart, logg))
		r.Post("/shipping-rate", checkoutcontrollers.SetShippingRate(checkout, cart, logg))
		r.Post("/payment-method", checkoutcontrollers.SetPaymentMethod(checkout, logg))
		r.Post("/navigate", checkoutcontrollers.Navigate(checkout, logg))
		r.Post("/order", checkoutcontrollers.ConfirmOrder(checkout, cart, logg))
		r.Post("/promo", checkoutcontrollers.ApplyPromo(checkout, cart, logg))
		r.Post("/reset", checkoutcontrollers.Reset(checkout, logg))
	})

	return r
}
