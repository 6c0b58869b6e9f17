package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Quote is the result of one price resolution. Nil price fields mean
// "queried, no pool/oracle data", which is distinct from a failed call:
// failures surface as errors and never produce a Quote.
type Quote struct {
	Token            common.Address `json:"token"`
	PriceInReference *float64       `json:"priceInReferenceAsset"`
	PriceInFiat      *float64       `json:"priceInFiat"`
	Timestamp        time.Time      `json:"timestamp"`
}

// NewQuote creates an empty quote for the token, timestamped now.
func NewQuote(token common.Address) Quote {
	return Quote{Token: token, Timestamp: time.Now()}
}

// HasReferencePrice reports whether a pool under either design was found.
func (q Quote) HasReferencePrice() bool {
	return q.PriceInReference != nil
}

// ReferenceString renders the reference-asset price for display, or "-"
// when absent.
func (q Quote) ReferenceString() string {
	return formatPrice(q.PriceInReference)
}

// FiatString renders the fiat price for display, or "-" when absent.
func (q Quote) FiatString() string {
	return formatPrice(q.PriceInFiat)
}

func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return decimal.NewFromFloat(*p).String()
}
