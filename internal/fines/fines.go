// Package fines computes overdue penalties from whole days late.
package fines

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"libralend/internal/membership"
)

// Tariff names a daily fine rate.
type Tariff string

const (
	TariffStandard Tariff = "standard"
	TariffStudent  Tariff = "student"
	TariffPremium  Tariff = "premium"
)

var ErrUnknownTariff = errors.New("unknown fine tariff")

var dailyRates = map[Tariff]decimal.Decimal{
	TariffStandard: decimal.RequireFromString("1.00"),
	TariffStudent:  decimal.RequireFromString("0.50"),
	TariffPremium:  decimal.RequireFromString("0.20"),
}

// Calculator maps days overdue to a fine. daysLate must not be negative.
type Calculator interface {
	Calculate(daysLate int) decimal.Decimal
	Tariff() Tariff
}

// DailyRate charges a fixed amount per day late.
type DailyRate struct {
	tariff Tariff
	rate   decimal.Decimal
}

func Standard() DailyRate { return DailyRate{tariff: TariffStandard, rate: dailyRates[TariffStandard]} }

func Student() DailyRate { return DailyRate{tariff: TariffStudent, rate: dailyRates[TariffStudent]} }

func Premium() DailyRate { return DailyRate{tariff: TariffPremium, rate: dailyRates[TariffPremium]} }

// ForTariff looks up a calculator by tariff name.
func ForTariff(name string) (Calculator, error) {
	tariff := Tariff(strings.ToLower(strings.TrimSpace(name)))
	rate, ok := dailyRates[tariff]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownTariff)
	}
	return DailyRate{tariff: tariff, rate: rate}, nil
}

// ForTier picks the tariff that applies to a membership tier.
func ForTier(tier membership.Tier) (Calculator, error) {
	switch tier {
	case membership.TierBasic:
		return Standard(), nil
	case membership.TierStudent:
		return Student(), nil
	case membership.TierPremium:
		return Premium(), nil
	default:
		return nil, fmt.Errorf("no tariff for tier %q: %w", tier, ErrUnknownTariff)
	}
}

func (d DailyRate) Calculate(daysLate int) decimal.Decimal {
	return d.rate.Mul(decimal.NewFromInt(int64(daysLate)))
}

func (d DailyRate) Tariff() Tariff { return d.tariff }

// Rate is the amount charged per day late.
func (d DailyRate) Rate() decimal.Decimal { return d.rate }
