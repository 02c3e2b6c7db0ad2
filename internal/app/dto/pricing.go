package dto

import (
	"staybeyond/internal/domain/pricing"
	"staybeyond/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type PriceQuoteDTO struct {
	Nights     int      `json:"nights"`
	Nightly    MoneyDTO `json:"nightly"`
	Subtotal   MoneyDTO `json:"subtotal"`
	ServiceFee MoneyDTO `json:"service_fee"`
	TaxFee     MoneyDTO `json:"tax_fee"`
	Total      MoneyDTO `json:"total"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Currency: value.Currency,
	}
}

func MapPriceQuote(q pricing.PriceQuote) PriceQuoteDTO {
	return PriceQuoteDTO{
		Nights:     q.Nights,
		Nightly:    MapMoney(q.Nightly),
		Subtotal:   MapMoney(q.Subtotal),
		ServiceFee: MapMoney(q.ServiceFee),
		TaxFee:     MapMoney(q.TaxFee),
		Total:      MapMoney(q.Total),
	}
}
