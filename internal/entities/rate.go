package entities

import (
	"cloud.google.com/go/civil"
	"fmt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"slices"
	"strings"
)

type ExchangeRate struct {
	ID           uuid.UUID
	Date         civil.Date
	Currency     string
	SaleRate     decimal.Decimal
	PurchaseRate decimal.Decimal
}

func NewRate(date civil.Date, currency string, sale, purchase decimal.Decimal) ExchangeRate {
	return ExchangeRate{
		ID:           uuid.New(),
		Date:         date,
		Currency:     strings.ToUpper(currency),
		SaleRate:     sale,
		PurchaseRate: purchase,
	}
}

// CurrencySet is the configured list of tracked currency codes.
type CurrencySet []string

func NewCurrencySet(codes ...string) CurrencySet {
	set := make(CurrencySet, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || slices.Contains(set, code) {
			continue
		}
		set = append(set, code)
	}
	return set
}

func (s CurrencySet) Contains(code string) bool {
	return slices.Contains(s, strings.ToUpper(code))
}

// CurrencyFilter selects either one supported currency or the whole supported set.
type CurrencyFilter struct {
	supported CurrencySet
	code      string
}

// NewCurrencyFilter resolves a requested code against the supported set.
// An empty code selects every supported currency.
func NewCurrencyFilter(supported CurrencySet, code string) (CurrencyFilter, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code != "" && !supported.Contains(code) {
		return CurrencyFilter{}, fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, code)
	}

	return CurrencyFilter{supported: supported, code: code}, nil
}

func AllCurrencies(supported CurrencySet) CurrencyFilter {
	return CurrencyFilter{supported: supported}
}

func (f CurrencyFilter) IsAll() bool {
	return f.code == ""
}

func (f CurrencyFilter) Codes() []string {
	if f.IsAll() {
		return slices.Clone(f.supported)
	}
	return []string{f.code}
}

func (f CurrencyFilter) Match(code string) bool {
	if f.IsAll() {
		return f.supported.Contains(code)
	}
	return strings.EqualFold(f.code, code)
}

func (f CurrencyFilter) String() string {
	if f.IsAll() {
		return strings.Join(f.supported, ",")
	}
	return f.code
}

// SortRates orders records by date, then by currency code.
func SortRates(rates []ExchangeRate) {
	slices.SortStableFunc(rates, func(a, b ExchangeRate) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return strings.Compare(a.Currency, b.Currency)
	})
}

// GroupByCurrency splits records per currency keeping their order.
func GroupByCurrency(rates []ExchangeRate) map[string][]ExchangeRate {
	grouped := make(map[string][]ExchangeRate)
	for _, rate := range rates {
		grouped[rate.Currency] = append(grouped[rate.Currency], rate)
	}
	return grouped
}
