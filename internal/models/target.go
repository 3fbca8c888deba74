package models

// TargetClass distinguishes pure statistical targets from market-outcome
// targets.
type TargetClass string

const (
	TargetClassStat   TargetClass = "stat"
	TargetClassMarket TargetClass = "market"
)

// MetricType is the shape of the resolved label.
type MetricType string

const (
	MetricNumeric MetricType = "numeric"
	MetricBinary  MetricType = "binary"
)

// MarketType identifies the betting market a market target settles against.
type MarketType string

const (
	MarketSpread    MarketType = "spread"
	MarketTotal     MarketType = "total"
	MarketMoneyline MarketType = "moneyline"
)

// MarketSide is the side of the market the theory takes.
type MarketSide string

const (
	SideHome  MarketSide = "home"
	SideAway  MarketSide = "away"
	SideOver  MarketSide = "over"
	SideUnder MarketSide = "under"
)

// TargetDefinition describes what the theory predicts. Immutable per
// evaluation run; validated before any computation starts.
type TargetDefinition struct {
	TargetClass  TargetClass `json:"target_class" validate:"required,oneof=stat market"`
	TargetName   string      `json:"target_name" validate:"required"`
	MetricType   MetricType  `json:"metric_type" validate:"required,oneof=numeric binary"`
	MarketType   MarketType  `json:"market_type,omitempty"`
	Side         MarketSide  `json:"side,omitempty"`
	OddsRequired bool        `json:"odds_required"`
}

// IsMarket reports whether the target settles against a betting market.
func (t TargetDefinition) IsMarket() bool {
	return t.TargetClass == TargetClassMarket
}

// Validate rejects invalid target/market/side combinations before any
// computation starts.
func (t TargetDefinition) Validate() error {
	switch t.TargetClass {
	case TargetClassStat, TargetClassMarket:
	default:
		return NewValidationError("invalid_target_class", "target_class must be stat or market")
	}
	if t.TargetName == "" {
		return NewValidationError("missing_target_name", "target_name is required")
	}
	if !t.IsMarket() {
		return nil
	}
	switch t.MarketType {
	case MarketSpread, MarketMoneyline:
		if t.Side != SideHome && t.Side != SideAway {
			return NewValidationError("invalid_market_side", "spread and moneyline targets require side home or away")
		}
	case MarketTotal:
		if t.Side != SideOver && t.Side != SideUnder {
			return NewValidationError("invalid_market_side", "total targets require side over or under")
		}
	default:
		return NewValidationError("missing_market_type", "market targets must carry a market_type")
	}
	return nil
}
