// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package catalog

import "time"

// Availability records, per filter dimension, whether at least one product
// in the full snapshot satisfies that predicate on its own. The UI uses it
// to hide toggles that could only ever produce an empty result.
type Availability struct {
	InStock      bool `json:"inStock"`
	HotOffer     bool `json:"hotOffer"`
	WithDiscount bool `json:"withDiscount"`
	MadeToOrder  bool `json:"madeToOrder"`
	NewItems     bool `json:"newItems"`
	PriceLow     bool `json:"priceLow"`
	PriceMedium  bool `json:"priceMedium"`
	PriceHigh    bool `json:"priceHigh"`
}

// ComputeAvailability evaluates each filter dimension in isolation against
// the full product list.
func ComputeAvailability(products []Product, ranges Ranges) Availability {
	return availabilityAt(time.Now(), products, ranges)
}

func availabilityAt(now time.Time, products []Product, ranges Ranges) Availability {
	recent := recentByID(products)

	var a Availability
	for _, p := range products {
		if inStock(p) {
			a.InStock = true
		}
		if p.HotOffer {
			a.HotOffer = true
		}
		if p.Discount > 0 {
			a.WithDiscount = true
		}
		if p.MadeToOrder && !p.ForSale {
			a.MadeToOrder = true
		}
		if isNew(now, p, recent) {
			a.NewItems = true
		}
		if price, ok := EffectivePrice(p); ok {
			if ranges.InBand(BandLow, price) {
				a.PriceLow = true
			}
			if ranges.InBand(BandMedium, price) {
				a.PriceMedium = true
			}
			if ranges.InBand(BandHigh, price) {
				a.PriceHigh = true
			}
		}
	}
	return a
}

// band reports availability of a single price bucket.
func (a Availability) band(b Band) bool {
	switch b {
	case BandLow:
		return a.PriceLow
	case BandMedium:
		return a.PriceMedium
	case BandHigh:
		return a.PriceHigh
	default:
		return true
	}
}

// Normalize resets any active filter that has become ineligible for the
// current snapshot — after a data refresh a stale toggle is deactivated
// rather than left silently producing an empty result. Returns the
// adjusted copy.
func (s FilterState) Normalize(a Availability) FilterState {
	if s.InStock && !a.InStock {
		s.InStock = false
	}
	if s.HotOffer && !a.HotOffer {
		s.HotOffer = false
	}
	if s.WithDiscount && !a.WithDiscount {
		s.WithDiscount = false
	}
	if s.MadeToOrder && !a.MadeToOrder {
		s.MadeToOrder = false
	}
	if s.NewItems && !a.NewItems {
		s.NewItems = false
	}
	if s.Price != "" && s.Price != BandAll && !a.band(s.Price) {
		s.Price = BandAll
	}
	return s
}
