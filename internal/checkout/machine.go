package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront-engine/pkg/authority"
	"github.com/angelmondragon/storefront-engine/pkg/config"
	"github.com/angelmondragon/storefront-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
	"github.com/angelmondragon/storefront-engine/pkg/logger"
	"github.com/angelmondragon/storefront-engine/pkg/persistence"
)

// State is the full checkout snapshot: the current step and everything
// collected so far. It is serialized to the session store after every
// mutation so a reload resumes exactly where the shopper left off.
type State struct {
	CurrentStep     enums.CheckoutStep `json:"current_step"`
	ShippingAddress *ShippingAddress   `json:"shipping_address,omitempty"`
	ShippingRate    *ShippingRate      `json:"shipping_rate,omitempty"`
	PaymentMethod   *PaymentMethod     `json:"payment_method,omitempty"`
	IsGuest         bool               `json:"is_guest"`
	OrderID         string             `json:"order_id,omitempty"`
}

func defaultState(isGuest bool) State {
	return State{CurrentStep: enums.CheckoutStepShipping, IsGuest: isGuest}
}

// AddressValidator is the slice of the remote authority the machine
// consumes for address checks.
type AddressValidator interface {
	ValidateAddress(ctx context.Context, address authority.Address) error
}

// Params bundles the dependencies for NewMachine.
type Params struct {
	Persist   persistence.Store[State]
	Addresses AddressValidator
	Logger    *logger.Logger
	Config    config.CheckoutConfig
	Promo     config.PromoConfig
	// Guest reports whether the caller's session is unauthenticated. It is
	// re-evaluated against the request context on reset so a sign-in
	// mid-checkout is picked up.
	Guest func(ctx context.Context) bool
}

// Machine tracks progress through the linear checkout flow.
//
// Navigation is deliberately advisory: NavigateToStep records whatever
// step the caller asks for, and CanProceedToNext is the gate the UI is
// expected to consult before moving forward. The machine records intent;
// policy stays with the caller. Hardening out-of-order navigation into an
// error is a product decision, not a bug fix.
type Machine struct {
	mu    sync.Mutex
	state State

	persist   persistence.Store[State]
	addresses AddressValidator
	logg      *logger.Logger
	cfg       config.CheckoutConfig
	promo     config.PromoConfig
	guest     func(ctx context.Context) bool
	rates     []ShippingRate
}

// NewMachine builds a checkout machine backed by the provided stack.
func NewMachine(params Params) (*Machine, error) {
	if params.Persist == nil {
		return nil, fmt.Errorf("checkout persistence required")
	}
	if params.Addresses == nil {
		return nil, fmt.Errorf("address validator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	guest := params.Guest
	if guest == nil {
		guest = func(context.Context) bool { return true }
	}
	return &Machine{
		state:     defaultState(guest(context.Background())),
		persist:   params.Persist,
		addresses: params.Addresses,
		logg:      params.Logger,
		cfg:       params.Config,
		promo:     params.Promo,
		guest:     guest,
		rates:     defaultRateCatalog,
	}, nil
}

// Restore loads the persisted session snapshot. Corrupt or foreign-shaped
// data falls back to the default initial state; the shopper never sees it.
func (m *Machine) Restore(ctx context.Context) error {
	snapshot, found, err := m.persist.Load(ctx)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeStateCorruption) {
			m.logg.Warn(ctx, "checkout snapshot corrupt, resetting")
			if clearErr := m.persist.Clear(ctx); clearErr != nil {
				m.logg.Error(ctx, "failed to clear corrupt checkout snapshot", clearErr)
			}
			return nil
		}
		return err
	}
	if !found {
		return nil
	}
	if !snapshot.CurrentStep.IsValid() {
		// Shape-mismatched data: treat like corruption.
		m.logg.Warn(ctx, "checkout snapshot has unknown step, resetting")
		if clearErr := m.persist.Clear(ctx); clearErr != nil {
			m.logg.Error(ctx, "failed to clear invalid checkout snapshot", clearErr)
		}
		return nil
	}

	m.mu.Lock()
	m.state = snapshot
	m.mu.Unlock()
	return nil
}

// SetShippingAddress validates the address schema, asks the authority to
// check it, and merges it into state. Authority failures do not block
// checkout: the address is accepted unvalidated and the failure is logged.
func (m *Machine) SetShippingAddress(ctx context.Context, address ShippingAddress) error {
	if err := address.ValidateSchema(); err != nil {
		return err
	}

	if err := m.addresses.ValidateAddress(ctx, address.toWire()); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			return err
		}
		// Fail open: an unreachable validator must not strand the shopper.
		m.logg.Warn(ctx, "address validation unavailable, proceeding unvalidated: "+err.Error())
	}

	m.mu.Lock()
	m.state.ShippingAddress = &address
	m.persistLocked(ctx)
	m.mu.Unlock()
	return nil
}

// SetShippingRate records the selected rate. Pure local merge; the caller
// composes set-then-navigate.
func (m *Machine) SetShippingRate(ctx context.Context, rate ShippingRate) {
	m.mu.Lock()
	m.state.ShippingRate = &rate
	m.persistLocked(ctx)
	m.mu.Unlock()
}

// SetPaymentMethod records the selected payment method after shape
// validation.
func (m *Machine) SetPaymentMethod(ctx context.Context, method PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.state.PaymentMethod = &method
	m.persistLocked(ctx)
	m.mu.Unlock()
	return nil
}

// SetOrderID records the order produced at confirmation.
func (m *Machine) SetOrderID(ctx context.Context, orderID string) {
	m.mu.Lock()
	m.state.OrderID = orderID
	m.persistLocked(ctx)
	m.mu.Unlock()
}

// NavigateToStep records the requested step. Any valid step is accepted,
// including backward and out-of-order jumps; gating is the caller's job
// via CanProceedToNext.
func (m *Machine) NavigateToStep(ctx context.Context, step enums.CheckoutStep) error {
	if !step.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown checkout step")
	}

	m.mu.Lock()
	m.state.CurrentStep = step
	m.persistLocked(ctx)
	m.mu.Unlock()
	return nil
}

// CanProceedToNext evaluates the gating table against the current step
// only: shipping needs address and rate, payment needs a method, review
// needs all three, confirm needs an order id.
func (m *Machine) CanProceedToNext() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state.CurrentStep {
	case enums.CheckoutStepShipping:
		return m.state.ShippingAddress != nil && m.state.ShippingRate != nil
	case enums.CheckoutStepPayment:
		return m.state.PaymentMethod != nil
	case enums.CheckoutStepReview:
		return m.state.ShippingAddress != nil && m.state.ShippingRate != nil && m.state.PaymentMethod != nil
	case enums.CheckoutStepConfirm:
		return m.state.OrderID != ""
	default:
		return false
	}
}

// Reset clears all collected data back to the shipping step, re-evaluates
// guest status from the current auth context, and purges the persisted
// session snapshot.
func (m *Machine) Reset(ctx context.Context) error {
	m.mu.Lock()
	m.state = defaultState(m.guest(ctx))
	m.mu.Unlock()

	if err := m.persist.Clear(ctx); err != nil {
		return fmt.Errorf("purge checkout snapshot: %w", err)
	}
	return nil
}

// State returns a copy of the current checkout state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// persistLocked writes the session snapshot through on every mutation so
// a reload resumes mid-flow. Persistence failures are logged, not fatal:
// the in-memory state remains authoritative for this session.
func (m *Machine) persistLocked(ctx context.Context) {
	if err := m.persist.Save(ctx, m.state); err != nil {
		m.logg.Warn(ctx, "checkout snapshot save failed: "+err.Error())
	}
}
