package checkout

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-engine/api/responses"
	"github.com/angelmondragon/storefront-engine/api/validators"
	cartstore "github.com/angelmondragon/storefront-engine/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-engine/internal/checkout"
	"github.com/angelmondragon/storefront-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
	"github.com/angelmondragon/storefront-engine/pkg/logger"
)

// GetCheckout returns the flow state plus the gate for the current step.
func GetCheckout(machine *checkoutsvc.Machine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if machine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}
		responses.WriteSuccess(w, newStateResponse(machine))
	}
}

// SetShippingAddress validates and records the shipping address. A dead
// address validator does not block the step.
func SetShippingAddress(machine *checkoutsvc.Machine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if machine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		var payload checkoutsvc.ShippingAddress
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := machine.SetShippingAddress(r.Context(), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newStateResponse(machine))
	}
}

// GetShippingRates lists the catalog priced against the live cart
// subtotal, so free-shipping promotions show through.
func GetShippingRates(machine *checkoutsvc.Machine, cart *cartstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if machine == nil || cart == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}
		responses.WriteSuccess(w, ratesResponse{Rates: machine.Rates(cart.SubtotalCents())})
	}
}

// SetShippingRate selects a rate by id.
func SetShippingRate(machine *checkoutsvc.Machine, cart *cartstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if machine == nil || cart == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		var payload selectRateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rate, ok := machine.RateByID(payload.RateID, cart.SubtotalCents())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping rate"))
			return
		}

		machine.SetShippingRate(r.Context(), rate)
		responses.WriteSuccess(w, newStateResponse(machine))
	}
}

// SetPaymentMethod records the masked payment selection.
func SetPaymentMethod(machine *checkoutsvc.Machine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if machine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		var payload checkoutsvc.PaymentMethod
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := machine.SetPaymentMethod(r.Context(), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newStateResponse(machine))
	}
}

// Navigate moves the flow to the named step. Navigation is advisory:
// the UI may jump anywhere, gating lives in CanProceedToNext.
func Navigate(machine *checkoutsvc.Machine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if machine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		var payload navigateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		step, err := enums.ParseCheckoutStep(payload.Step)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid step"))
			return
		}

		if err := machine.NavigateToStep(r.Context(), step); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newStateResponse(machine))
	}
}

// CartClearer is the slice of the cart the confirmation step consumes.
type CartClearer interface {
	ClearCart(ctx context.Context) error
}

// ConfirmOrder completes the flow: assigns the order its id, moves to the
// confirmation step, and empties the cart. The order id is generated
// here, never taken from the caller.
func ConfirmOrder(machine *checkoutsvc.Machine, cart CartClearer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if machine == nil || cart == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		if !machine.CanProceedToNext() || machine.State().CurrentStep != enums.CheckoutStepReview {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not ready to confirm"))
			return
		}

		machine.SetOrderID(r.Context(), uuid.NewString())
		if err := machine.NavigateToStep(r.Context(), enums.CheckoutStepConfirm); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := cart.ClearCart(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newStateResponse(machine))
	}
}

// ApplyPromo resolves a promo code against the live cart subtotal.
func ApplyPromo(machine *checkoutsvc.Machine, cart *cartstore.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if machine == nil || cart == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		var payload promoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := machine.PromoDiscountCents(payload.Code, cart.SubtotalCents())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, promoResponse{Code: payload.Code, DiscountCents: discount})
	}
}

// Reset returns the flow to a fresh shipping step and purges the session.
func Reset(machine *checkoutsvc.Machine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if machine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		if err := machine.Reset(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newStateResponse(machine))
	}
}
