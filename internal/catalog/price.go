// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package catalog

import "math"

// Default bucket boundaries applied when the snapshot has no priced products.
const (
	defaultLowMax  = 1000
	defaultHighMin = 5000
)

// uniformSpread is the price spread below which the shop's prices are
// considered effectively uniform and all buckets collapse to the midpoint.
const uniformSpread = 100

// Ranges holds the adaptive low/medium/high price buckets derived from the
// current product snapshot. Adjacent buckets share their boundary value, so
// a product priced exactly on a boundary falls into both buckets — this
// overlap is the documented behavior, matched by the ≤/≥ predicates below.
type Ranges struct {
	LowMax    float64 `json:"lowMax"`
	MediumMin float64 `json:"mediumMin"`
	MediumMax float64 `json:"mediumMax"`
	HighMin   float64 `json:"highMin"`
}

// EffectivePrice returns the discount-applied price for a product, and
// false when the product has no usable price (nil, zero, or negative).
// A non-zero discount rounds to the nearest whole unit.
func EffectivePrice(p Product) (float64, bool) {
	if p.Price == nil || *p.Price <= 0 {
		return 0, false
	}
	if p.Discount > 0 {
		return math.Round(*p.Price * (1 - float64(p.Discount)/100)), true
	}
	return *p.Price, true
}

// ComputeRanges derives the three price buckets from the distribution of
// effective prices in the product list. It must be re-run whenever the
// product list changes.
func ComputeRanges(products []Product) Ranges {
	min := math.Inf(1)
	max := math.Inf(-1)
	priced := false
	for _, p := range products {
		price, ok := EffectivePrice(p)
		if !ok {
			continue
		}
		priced = true
		if price < min {
			min = price
		}
		if price > max {
			max = price
		}
	}

	if !priced {
		return Ranges{
			LowMax:    defaultLowMax,
			MediumMin: defaultLowMax,
			MediumMax: defaultHighMin,
			HighMin:   defaultHighMin,
		}
	}

	// Effectively uniform prices: collapse every boundary to the midpoint.
	if max-min < uniformSpread {
		mid := (min + max) / 2
		return Ranges{LowMax: mid, MediumMin: mid, MediumMax: mid, HighMin: mid}
	}

	// Split the observed range into thirds at the 33%/67% marks, then round
	// the cut points up to a magnitude-appropriate step so boundaries read
	// naturally (600 rather than 582.5).
	span := max - min
	b1 := roundUpTo(min+span*0.33, niceStep(min+span*0.33))
	b2 := roundUpTo(min+span*0.67, niceStep(min+span*0.67))

	return Ranges{LowMax: b1, MediumMin: b1, MediumMax: b2, HighMin: b2}
}

// InBand reports whether an effective price falls into the selected bucket.
// BandAll always matches.
func (r Ranges) InBand(band Band, price float64) bool {
	switch band {
	case BandLow:
		return price <= r.LowMax
	case BandMedium:
		return price >= r.MediumMin && price <= r.MediumMax
	case BandHigh:
		return price >= r.HighMin
	default:
		return true
	}
}

// niceStep picks the rounding step for a boundary value by its magnitude.
func niceStep(v float64) float64 {
	switch {
	case v < 100:
		return 10
	case v < 1000:
		return 50
	case v < 5000:
		return 100
	case v < 20000:
		return 500
	case v < 100000:
		return 1000
	case v < 500000:
		return 5000
	default:
		return 10000
	}
}

// roundUpTo rounds v up to the next multiple of step.
func roundUpTo(v, step float64) float64 {
	return math.Ceil(v/step) * step
}
