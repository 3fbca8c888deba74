package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OddsRecord is a closing-market row as stored by the data layer. Lines and
// prices are NUMERIC in the fact store, so they are carried as decimals and
// converted to float64 only at the model boundary.
type OddsRecord struct {
	GameID     uuid.UUID           `db:"game_id" json:"game_id"`
	MarketType MarketType          `db:"market_type" json:"market_type"`
	Line       decimal.NullDecimal `db:"line" json:"line"`
	PriceHome  decimal.NullDecimal `db:"price_home" json:"price_home"`
	PriceAway  decimal.NullDecimal `db:"price_away" json:"price_away"`
	PriceOver  decimal.NullDecimal `db:"price_over" json:"price_over"`
	PriceUnder decimal.NullDecimal `db:"price_under" json:"price_under"`
	RecordedAt time.Time           `db:"recorded_at" json:"recorded_at"`
}

// FloatPtr converts a nullable decimal column to a float pointer.
func FloatPtr(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f, _ := d.Decimal.Float64()
	return &f
}

// ApplyTo overlays the record's closing numbers onto a game's derived
// metrics. Absent columns stay absent.
func (o *OddsRecord) ApplyTo(derived *DerivedMetrics) {
	switch o.MarketType {
	case MarketSpread:
		derived.ClosingSpread = FloatPtr(o.Line)
		derived.ClosingSpreadOddsHome = FloatPtr(o.PriceHome)
		derived.ClosingSpreadOddsAway = FloatPtr(o.PriceAway)
	case MarketTotal:
		derived.ClosingTotal = FloatPtr(o.Line)
		derived.ClosingTotalOddsOver = FloatPtr(o.PriceOver)
		derived.ClosingTotalOddsUnder = FloatPtr(o.PriceUnder)
	case MarketMoneyline:
		derived.MoneylineHome = FloatPtr(o.PriceHome)
		derived.MoneylineAway = FloatPtr(o.PriceAway)
	}
}
