package service_test

import (
	"cloud.google.com/go/civil"
	"testing"
	"time"

	"github.com/langowen/currency-archive/internal/api_service/service"
	"github.com/langowen/currency-archive/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingDays(t *testing.T) {
	dates := march(1, 5)
	usd, err := entities.NewCurrencyFilter(supported, "USD")
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter entities.CurrencyFilter
		stored []entities.ExchangeRate
		want   []civil.Date
	}{
		{
			name:   "nothing stored",
			filter: entities.AllCurrencies(supported),
			want:   []civil.Date{mar(1), mar(2), mar(3), mar(4), mar(5)},
		},
		{
			name:   "first three stored",
			filter: entities.AllCurrencies(supported),
			stored: append(sheet(mar(1)), append(sheet(mar(2)), sheet(mar(3))...)...),
			want:   []civil.Date{mar(4), mar(5)},
		},
		{
			name:   "holes in the middle",
			filter: entities.AllCurrencies(supported),
			stored: append(sheet(mar(1)), sheet(mar(5))...),
			want:   []civil.Date{mar(2), mar(3), mar(4)},
		},
		{
			name:   "one currency covers the day for all",
			filter: entities.AllCurrencies(supported),
			stored: []entities.ExchangeRate{rec(mar(2), "EUR")},
			want:   []civil.Date{mar(1), mar(3), mar(4), mar(5)},
		},
		{
			name:   "other currency does not cover a single filter",
			filter: usd,
			stored: []entities.ExchangeRate{rec(mar(2), "EUR"), rec(mar(3), "USD")},
			want:   []civil.Date{mar(1), mar(2), mar(4), mar(5)},
		},
		{
			name:   "records outside the range are ignored",
			filter: entities.AllCurrencies(supported),
			stored: sheet(mar(9)),
			want:   []civil.Date{mar(1), mar(2), mar(3), mar(4), mar(5)},
		},
		{
			name:   "everything stored",
			filter: entities.AllCurrencies(supported),
			stored: storedSheets(1, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.MissingDays(dates, tt.filter, tt.stored))
		})
	}
}

// Every subset of a short range must come back as its exact complement, ascending.
func TestMissingDaysComplement(t *testing.T) {
	dates := march(1, 6)
	days := dates.Days()

	for mask := 0; mask < 1<<len(days); mask++ {
		var stored []entities.ExchangeRate
		var want []civil.Date
		for i, d := range days {
			if mask&(1<<i) != 0 {
				stored = append(stored, rec(d, "USD"))
			} else {
				want = append(want, d)
			}
		}

		got := service.MissingDays(dates, entities.AllCurrencies(supported), stored)
		require.Equal(t, want, got, "mask %b", mask)
	}
}

func TestMissingDaysSingleDay(t *testing.T) {
	dates, err := entities.NewDateRange(mar(29), mar(29))
	require.NoError(t, err)

	got := service.MissingDays(dates, entities.AllCurrencies(supported), nil)
	assert.Equal(t, []civil.Date{{Year: 2024, Month: time.March, Day: 29}}, got)
}
