package enums

import "fmt"

// CheckoutStep is one stage of the linear checkout flow. The declaration
// order is the canonical progression.
type CheckoutStep string

const (
	CheckoutStepShipping CheckoutStep = "shipping"
	CheckoutStepPayment  CheckoutStep = "payment"
	CheckoutStepReview   CheckoutStep = "review"
	CheckoutStepConfirm  CheckoutStep = "confirm"
)

var orderedCheckoutSteps = []CheckoutStep{
	CheckoutStepShipping,
	CheckoutStepPayment,
	CheckoutStepReview,
	CheckoutStepConfirm,
}

// String implements fmt.Stringer.
func (c CheckoutStep) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c CheckoutStep) IsValid() bool {
	for _, candidate := range orderedCheckoutSteps {
		if candidate == c {
			return true
		}
	}
	return false
}

// Index returns the step's position in the flow, or -1 for unknown values.
func (c CheckoutStep) Index() int {
	for i, candidate := range orderedCheckoutSteps {
		if candidate == c {
			return i
		}
	}
	return -1
}

// Next returns the following step and true, or the same step and false when
// already at the end of the flow.
func (c CheckoutStep) Next() (CheckoutStep, bool) {
	idx := c.Index()
	if idx < 0 || idx >= len(orderedCheckoutSteps)-1 {
		return c, false
	}
	return orderedCheckoutSteps[idx+1], true
}

// CheckoutSteps returns the canonical ordered flow.
func CheckoutSteps() []CheckoutStep {
	steps := make([]CheckoutStep, len(orderedCheckoutSteps))
	copy(steps, orderedCheckoutSteps)
	return steps
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range orderedCheckoutSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
