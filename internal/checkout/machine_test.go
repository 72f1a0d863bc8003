package checkout

import (
	"context"
	"io"
	"testing"

	"github.com/angelmondragon/storefront-engine/pkg/authority"
	"github.com/angelmondragon/storefront-engine/pkg/config"
	"github.com/angelmondragon/storefront-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
	"github.com/angelmondragon/storefront-engine/pkg/logger"
	"github.com/angelmondragon/storefront-engine/pkg/persistence"
)

type stubAddressValidator struct {
	err   error
	calls int
}

func (s *stubAddressValidator) ValidateAddress(_ context.Context, _ authority.Address) error {
	s.calls++
	return s.err
}

func testAddress() ShippingAddress {
	return ShippingAddress{
		Email:      "jo@example.com",
		FirstName:  "Jo",
		LastName:   "Doe",
		Address1:   "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62704",
		Country:    "US",
		Phone:      "555-0100",
	}
}

func newTestMachine(t *testing.T, opts ...func(*Params)) (*Machine, *persistence.Memory[State]) {
	t.Helper()
	persist := persistence.NewMemory[State]()
	params := Params{
		Persist:   persist,
		Addresses: &stubAddressValidator{},
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Config:    config.CheckoutConfig{FreeShippingThresholdCents: 10000},
		Promo:     config.PromoConfig{StubEnabled: true, StubPercent: 0.10},
	}
	for _, opt := range opts {
		opt(&params)
	}
	machine, err := NewMachine(params)
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}
	return machine, persist
}

func TestGatingTable(t *testing.T) {
	machine, _ := newTestMachine(t)
	ctx := context.Background()

	// shipping: address alone is not enough.
	if machine.CanProceedToNext() {
		t.Fatal("empty shipping step must not proceed")
	}
	if err := machine.SetShippingAddress(ctx, testAddress()); err != nil {
		t.Fatalf("set address failed: %v", err)
	}
	if machine.CanProceedToNext() {
		t.Fatal("address without rate must not proceed")
	}
	machine.SetShippingRate(ctx, ShippingRate{ID: "standard", Name: "Standard", PriceCents: 599, EstimatedDays: 7})
	if !machine.CanProceedToNext() {
		t.Fatal("address plus rate must proceed from shipping")
	}

	// payment: needs a method.
	if err := machine.NavigateToStep(ctx, enums.CheckoutStepPayment); err != nil {
		t.Fatalf("navigate failed: %v", err)
	}
	if machine.CanProceedToNext() {
		t.Fatal("payment step without method must not proceed")
	}
	if err := machine.SetPaymentMethod(ctx, PaymentMethod{Type: enums.PaymentMethodTypePayPal}); err != nil {
		t.Fatalf("set payment failed: %v", err)
	}
	if !machine.CanProceedToNext() {
		t.Fatal("payment step with method must proceed")
	}

	// review: everything collected.
	_ = machine.NavigateToStep(ctx, enums.CheckoutStepReview)
	if !machine.CanProceedToNext() {
		t.Fatal("review with full state must proceed")
	}

	// confirm: order id required.
	_ = machine.NavigateToStep(ctx, enums.CheckoutStepConfirm)
	if machine.CanProceedToNext() {
		t.Fatal("confirm without order id must not proceed")
	}
	machine.SetOrderID(ctx, "ord-123")
	if !machine.CanProceedToNext() {
		t.Fatal("confirm with order id must proceed")
	}
}

func TestNavigateIsAdvisory(t *testing.T) {
	machine, _ := newTestMachine(t)
	ctx := context.Background()

	// Out-of-order jumps are recorded verbatim; gating is the caller's
	// job. Hardening this is a product decision, not a bug fix.
	if err := machine.NavigateToStep(ctx, enums.CheckoutStepReview); err != nil {
		t.Fatalf("out-of-order navigation must be accepted: %v", err)
	}
	if machine.State().CurrentStep != enums.CheckoutStepReview {
		t.Fatalf("expected review, got %s", machine.State().CurrentStep)
	}

	if err := machine.NavigateToStep(ctx, enums.CheckoutStepShipping); err != nil {
		t.Fatalf("backward navigation must be accepted: %v", err)
	}

	if err := machine.NavigateToStep(ctx, "warehouse"); err == nil {
		t.Fatal("unknown steps must be rejected")
	}
}

func TestReloadRestoration(t *testing.T) {
	machine, persist := newTestMachine(t)
	ctx := context.Background()

	addr := testAddress()
	if err := machine.SetShippingAddress(ctx, addr); err != nil {
		t.Fatalf("set address failed: %v", err)
	}
	_ = machine.NavigateToStep(ctx, enums.CheckoutStepPayment)

	// A fresh instance over the same session store resumes mid-flow.
	restored, err := NewMachine(Params{
		Persist:   persist,
		Addresses: &stubAddressValidator{},
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	state := restored.State()
	if state.CurrentStep != enums.CheckoutStepPayment {
		t.Fatalf("expected payment step restored, got %s", state.CurrentStep)
	}
	if state.ShippingAddress == nil || state.ShippingAddress.Email != addr.Email {
		t.Fatalf("expected address restored, got %+v", state.ShippingAddress)
	}
}

type corruptCheckoutStore struct {
	*persistence.Memory[State]
}

func (corruptCheckoutStore) Load(context.Context) (State, bool, error) {
	return State{}, false, pkgerrors.New(pkgerrors.CodeStateCorruption, "decode snapshot")
}

func TestCorruptSnapshotFallsBackToDefaults(t *testing.T) {
	machine, err := NewMachine(Params{
		Persist:   corruptCheckoutStore{persistence.NewMemory[State]()},
		Addresses: &stubAddressValidator{},
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}

	if err := machine.Restore(context.Background()); err != nil {
		t.Fatalf("corrupt snapshot must recover silently, got %v", err)
	}
	state := machine.State()
	if state.CurrentStep != enums.CheckoutStepShipping || state.ShippingAddress != nil {
		t.Fatalf("expected default initial state, got %+v", state)
	}
}

func TestForeignShapedSnapshotFallsBackToDefaults(t *testing.T) {
	persist := persistence.NewMemory[State]()
	// A snapshot with an unknown step is foreign-shaped data.
	if err := persist.Save(context.Background(), State{CurrentStep: "wizard"}); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	machine, _ := newTestMachine(t, func(p *Params) { p.Persist = persist })
	if err := machine.Restore(context.Background()); err != nil {
		t.Fatalf("foreign snapshot must recover silently, got %v", err)
	}
	if machine.State().CurrentStep != enums.CheckoutStepShipping {
		t.Fatalf("expected default step, got %s", machine.State().CurrentStep)
	}
}

func TestResetPreservesRecomputedGuest(t *testing.T) {
	authenticated := false
	machine, persist := newTestMachine(t, func(p *Params) {
		p.Guest = func(context.Context) bool { return !authenticated }
	})
	ctx := context.Background()

	if err := machine.SetShippingAddress(ctx, testAddress()); err != nil {
		t.Fatalf("set address failed: %v", err)
	}
	machine.SetOrderID(ctx, "ord-1")
	if !machine.State().IsGuest {
		t.Fatal("expected guest session before sign-in")
	}

	// Shopper signs in, then resets.
	authenticated = true
	if err := machine.Reset(ctx); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	state := machine.State()
	if state.CurrentStep != enums.CheckoutStepShipping || state.ShippingAddress != nil || state.OrderID != "" {
		t.Fatalf("expected cleared state, got %+v", state)
	}
	if state.IsGuest {
		t.Fatal("reset must recompute guest status from the auth context")
	}
	if _, found, _ := persist.Load(ctx); found {
		t.Fatal("reset must purge the persisted snapshot")
	}
}

func TestSetShippingAddressSchemaRejection(t *testing.T) {
	validator := &stubAddressValidator{}
	machine, _ := newTestMachine(t, func(p *Params) { p.Addresses = validator })

	bad := testAddress()
	bad.Email = "not-an-email"
	err := machine.SetShippingAddress(context.Background(), bad)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if validator.calls != 0 {
		t.Fatal("schema failures must not reach the remote validator")
	}
	if machine.State().ShippingAddress != nil {
		t.Fatal("rejected address must not enter state")
	}
}

func TestSetShippingAddressFailsOpenOnNetworkError(t *testing.T) {
	machine, _ := newTestMachine(t, func(p *Params) {
		p.Addresses = &stubAddressValidator{err: pkgerrors.New(pkgerrors.CodeNetwork, "validator down")}
	})

	if err := machine.SetShippingAddress(context.Background(), testAddress()); err != nil {
		t.Fatalf("network failure must not block checkout, got %v", err)
	}
	if machine.State().ShippingAddress == nil {
		t.Fatal("address must be accepted unvalidated")
	}
}

func TestSetShippingAddressAuthorityRejection(t *testing.T) {
	machine, _ := newTestMachine(t, func(p *Params) {
		p.Addresses = &stubAddressValidator{err: pkgerrors.New(pkgerrors.CodeValidation, "postal code unknown")}
	})

	err := machine.SetShippingAddress(context.Background(), testAddress())
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("authority rejection must surface, got %v", err)
	}
	if machine.State().ShippingAddress != nil {
		t.Fatal("rejected address must not enter state")
	}
}

func TestWriteThroughPersistence(t *testing.T) {
	machine, persist := newTestMachine(t)
	ctx := context.Background()

	machine.SetShippingRate(ctx, ShippingRate{ID: "express", Name: "Express", PriceCents: 1299, EstimatedDays: 3})

	snapshot, found, err := persist.Load(ctx)
	if err != nil || !found {
		t.Fatalf("every mutation must write through, found=%v err=%v", found, err)
	}
	if snapshot.ShippingRate == nil || snapshot.ShippingRate.ID != "express" {
		t.Fatalf("unexpected persisted state %+v", snapshot)
	}
}

func TestPaymentMethodValidation(t *testing.T) {
	machine, _ := newTestMachine(t)
	ctx := context.Background()

	if err := machine.SetPaymentMethod(ctx, PaymentMethod{Type: "bitcoin"}); err == nil {
		t.Fatal("unknown payment type must be rejected")
	}
	if err := machine.SetPaymentMethod(ctx, PaymentMethod{Type: enums.PaymentMethodTypeCard}); err == nil {
		t.Fatal("card payments require card details")
	}
	if err := machine.SetPaymentMethod(ctx, PaymentMethod{
		Type: enums.PaymentMethodTypePayPal,
		Card: &CardDetails{Last4: "4242", ExpMonth: 12, ExpYear: 2030},
	}); err == nil {
		t.Fatal("non-card payments must not carry card details")
	}

	err := machine.SetPaymentMethod(ctx, PaymentMethod{
		Type: enums.PaymentMethodTypeCard,
		Card: &CardDetails{Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030, SaveCard: true},
	})
	if err != nil {
		t.Fatalf("masked card details must be accepted: %v", err)
	}
}

type ctxUserKey struct{}

func TestResetReadsIdentityFromContext(t *testing.T) {
	machine, _ := newTestMachine(t, func(p *Params) {
		p.Guest = func(ctx context.Context) bool { return ctx.Value(ctxUserKey{}) == nil }
	})

	// Anonymous context resets to a guest session.
	if err := machine.Reset(context.Background()); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !machine.State().IsGuest {
		t.Fatal("expected guest session for anonymous context")
	}

	signedIn := context.WithValue(context.Background(), ctxUserKey{}, "u-1")
	if err := machine.Reset(signedIn); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if machine.State().IsGuest {
		t.Fatal("reset must derive guest status from the request context")
	}
}
