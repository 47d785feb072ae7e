package service

import (
	"cloud.google.com/go/civil"
	"github.com/langowen/currency-archive/internal/entities"
)

// MissingDays lists, ascending, the days of dates that have no stored record matching filter.
// One matching record is enough to cover a day, even when the filter spans several currencies.
func MissingDays(dates entities.DateRange, filter entities.CurrencyFilter, stored []entities.ExchangeRate) []civil.Date {
	covered := make(map[civil.Date]struct{}, len(stored))
	for _, rate := range stored {
		if filter.Match(rate.Currency) {
			covered[rate.Date] = struct{}{}
		}
	}

	var missing []civil.Date
	for _, d := range dates.Days() {
		if _, ok := covered[d]; !ok {
			missing = append(missing, d)
		}
	}

	return missing
}
