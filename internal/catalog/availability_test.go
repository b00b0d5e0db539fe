package catalog

import (
	"testing"
	"time"
)

func TestComputeAvailability(t *testing.T) {
	products := []Product{
		{ID: 1, Price: f64(500), Quantity: intp(3)},
		{ID: 2, Price: f64(900), Discount: 25},
		{ID: 3, MadeToOrder: true},
	}
	ranges := ComputeRanges(products)

	a := availabilityAt(testNow, products, ranges)

	if !a.InStock {
		t.Error("in-stock should be available (product 1 has quantity)")
	}
	if a.HotOffer {
		t.Error("hot-offer should be unavailable (no hot offers)")
	}
	if !a.WithDiscount {
		t.Error("discount should be available (product 2)")
	}
	if !a.MadeToOrder {
		t.Error("made-to-order should be available (product 3)")
	}
	if !a.NewItems {
		t.Error("new-items should be available (id-rank fallback keeps at least one)")
	}
}

func TestComputeAvailabilityPriceBands(t *testing.T) {
	// All prices cluster at the low end: the high band has no takers only
	// when the spread is wide enough to separate them. With two far-apart
	// prices every band boundary lands between them.
	products := []Product{
		{ID: 1, Price: f64(100)},
		{ID: 2, Price: f64(10000)},
	}
	ranges := ComputeRanges(products)

	a := availabilityAt(testNow, products, ranges)
	if !a.PriceLow || !a.PriceHigh {
		t.Errorf("expected low and high bands available, got %+v", a)
	}
	if a.PriceMedium {
		t.Errorf("no product sits in the medium band for this spread, got %+v", a)
	}
}

func TestNormalizeDeactivatesIneligibleFilters(t *testing.T) {
	// After a refresh that removed all hot offers and discounts, active
	// toggles for them must reset instead of producing an empty result.
	products := []Product{
		{ID: 1, Price: f64(500), Quantity: intp(1)},
	}
	ranges := ComputeRanges(products)
	a := availabilityAt(testNow, products, ranges)

	state := FilterState{
		InStock:      true,
		HotOffer:     true,
		WithDiscount: true,
		MadeToOrder:  true,
		NewItems:     true,
		Search:       "ring",
		SortBy:       SortPriceAsc,
	}
	got := state.Normalize(a)

	if !got.InStock {
		t.Error("in-stock is still eligible and must stay active")
	}
	if got.HotOffer || got.WithDiscount || got.MadeToOrder {
		t.Errorf("ineligible toggles must reset, got %+v", got)
	}
	if !got.NewItems {
		t.Error("new-items stays eligible via the id-rank fallback")
	}
	if got.Search != "ring" || got.SortBy != SortPriceAsc {
		t.Error("normalize must not touch search or sort")
	}
}

func TestNormalizeResetsUnavailableBand(t *testing.T) {
	a := Availability{PriceLow: true, PriceHigh: true}

	got := FilterState{Price: BandMedium}.Normalize(a)
	if got.Price != BandAll {
		t.Errorf("unavailable band should reset to all, got %q", got.Price)
	}

	got = FilterState{Price: BandLow}.Normalize(a)
	if got.Price != BandLow {
		t.Errorf("available band must survive, got %q", got.Price)
	}
}

func TestAvailabilityNewItemsWindow(t *testing.T) {
	old := testNow.Add(-60 * 24 * time.Hour)
	products := []Product{
		{ID: 1, CreatedAt: &old},
		{ID: 2, CreatedAt: &old},
	}
	ranges := ComputeRanges(products)

	a := availabilityAt(testNow, products, ranges)
	if a.NewItems {
		t.Error("new-items should be unavailable when every product is old")
	}
}
