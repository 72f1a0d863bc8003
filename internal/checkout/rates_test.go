package checkout

import "testing"

func TestRatesBelowFreeShippingThreshold(t *testing.T) {
	machine, _ := newTestMachine(t)

	rates := machine.Rates(9999)
	if len(rates) != 3 {
		t.Fatalf("expected 3 rates, got %d", len(rates))
	}
	for _, rate := range rates {
		if rate.PriceCents <= 0 {
			t.Fatalf("rate %s must keep its list price below the threshold", rate.ID)
		}
	}
}

func TestRatesFreeStandardShipping(t *testing.T) {
	machine, _ := newTestMachine(t)

	rates := machine.Rates(10000)
	for _, rate := range rates {
		switch rate.ID {
		case "standard":
			if rate.PriceCents != 0 {
				t.Fatalf("standard must be free at the threshold, got %d", rate.PriceCents)
			}
		default:
			if rate.PriceCents == 0 {
				t.Fatalf("rate %s must never be discounted", rate.ID)
			}
		}
	}

	// The transform works on copies, never the catalog.
	again := machine.Rates(500)
	for _, rate := range again {
		if rate.ID == "standard" && rate.PriceCents != 599 {
			t.Fatalf("catalog mutated, standard now %d", rate.PriceCents)
		}
	}
}

func TestRateByID(t *testing.T) {
	machine, _ := newTestMachine(t)

	rate, ok := machine.RateByID("express", 20000)
	if !ok || rate.PriceCents != 1299 {
		t.Fatalf("expected express at full price, got %+v ok=%v", rate, ok)
	}

	rate, ok = machine.RateByID("standard", 20000)
	if !ok || rate.PriceCents != 0 {
		t.Fatalf("expected free standard above threshold, got %+v ok=%v", rate, ok)
	}

	if _, ok := machine.RateByID("drone", 0); ok {
		t.Fatal("unknown rate id must not resolve")
	}
}
