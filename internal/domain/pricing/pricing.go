package pricing

import (
	"staybeyond/internal/domain/shared/money"
)

const (
	serviceFeePercent = 12
	taxFeePercent     = 18
)

// PriceQuote is the full nightly-rate breakdown shown next to the booking
// form. It is derived on every evaluation and never stored.
type PriceQuote struct {
	Nights     int
	Nightly    money.Money
	Subtotal   money.Money
	ServiceFee money.Money
	TaxFee     money.Money
	Total      money.Money
}

// Quote computes the breakdown for a stay of the given length. It is pure and
// has no failure modes: an incomplete range quotes zero nights and therefore
// zero amounts, and negative nights are prevented upstream by the date
// selection invariant.
//
// Service and tax fees are each rounded to the nearest whole currency unit
// independently, not after summing.
func Quote(nights int, nightly money.Money) PriceQuote {
	if nights < 0 {
		nights = 0
	}
	subtotal := nightly.Multiply(int64(nights))
	serviceFee := subtotal.PercentRounded(serviceFeePercent)
	taxFee := subtotal.PercentRounded(taxFeePercent)
	total := subtotal
	total, _ = total.Add(serviceFee)
	total, _ = total.Add(taxFee)
	return PriceQuote{
		Nights:     nights,
		Nightly:    nightly,
		Subtotal:   subtotal,
		ServiceFee: serviceFee,
		TaxFee:     taxFee,
		Total:      total,
	}
}
