package enums

import "testing"

func TestCheckoutStepOrder(t *testing.T) {
	t.Parallel()

	steps := CheckoutSteps()
	want := []CheckoutStep{CheckoutStepShipping, CheckoutStepPayment, CheckoutStepReview, CheckoutStepConfirm}
	if len(steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(steps))
	}
	for i, step := range want {
		if steps[i] != step {
			t.Fatalf("expected step %d to be %s, got %s", i, step, steps[i])
		}
		if step.Index() != i {
			t.Fatalf("expected %s index %d, got %d", step, i, step.Index())
		}
	}
}

func TestCheckoutStepNext(t *testing.T) {
	t.Parallel()

	next, ok := CheckoutStepShipping.Next()
	if !ok || next != CheckoutStepPayment {
		t.Fatalf("expected payment after shipping, got %s (ok=%v)", next, ok)
	}

	if _, ok := CheckoutStepConfirm.Next(); ok {
		t.Fatal("confirm must be the terminal step")
	}

	if _, ok := CheckoutStep("bogus").Next(); ok {
		t.Fatal("unknown step must not advance")
	}
}

func TestParseCheckoutStep(t *testing.T) {
	t.Parallel()

	step, err := ParseCheckoutStep("review")
	if err != nil || step != CheckoutStepReview {
		t.Fatalf("expected review, got %s (err=%v)", step, err)
	}
	if _, err := ParseCheckoutStep("Review"); err == nil {
		t.Fatal("parsing is case sensitive")
	}
}
