package models

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StatLine holds one side's raw box-score stats as delivered by the data
// layer. Values are numeric or string ("34:12" minute totals survive as
// strings until the cleaning stage coerces them).
type StatLine map[string]any

// Float looks up a stat and coerces it to float64.
func (s StatLine) Float(key string) (float64, bool) {
	v, ok := s[key]
	if !ok {
		return 0, false
	}
	return CoerceNumeric(v)
}

// Game represents one completed game plus its derived metrics and market
// snapshot. Instances are read-only once loaded.
type Game struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	GameDate       time.Time       `db:"game_date" json:"game_date" validate:"required"`
	Season         string          `db:"season" json:"season"`
	HomeTeam       string          `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam       string          `db:"away_team" json:"away_team" validate:"required"`
	HomeConference string          `db:"home_conference" json:"home_conference"`
	AwayConference string          `db:"away_conference" json:"away_conference"`
	HomeStats      StatLine        `json:"home_stats"`
	AwayStats      StatLine        `json:"away_stats"`
	Derived        DerivedMetrics  `json:"derived"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// DerivedMetrics carries scores, results, and closing market numbers for a
// game. Pointer fields are nil when the underlying fact was never recorded;
// absence is never replaced with a fabricated value.
type DerivedMetrics struct {
	HomePoints  *float64 `json:"home_points"`
	AwayPoints  *float64 `json:"away_points"`
	TotalPoints *float64 `json:"total_points"`
	Margin      *float64 `json:"margin"`
	HomeWin     *bool    `json:"home_win"`

	ClosingSpread         *float64 `json:"closing_spread"` // home line
	ClosingSpreadOddsHome *float64 `json:"closing_spread_odds_home"`
	ClosingSpreadOddsAway *float64 `json:"closing_spread_odds_away"`
	ClosingTotal          *float64 `json:"closing_total"`
	ClosingTotalOddsOver  *float64 `json:"closing_total_odds_over"`
	ClosingTotalOddsUnder *float64 `json:"closing_total_odds_under"`
	MoneylineHome         *float64 `json:"moneyline_home"`
	MoneylineAway         *float64 `json:"moneyline_away"`

	HomeCovered *bool `json:"home_covered"`
	WentOver    *bool `json:"went_over"`
	SpreadPush  *bool `json:"spread_push"`
	TotalPush   *bool `json:"total_push"`
}

// Completed reports whether the game has a final score on both sides.
func (g *Game) Completed() bool {
	return g.Derived.HomePoints != nil && g.Derived.AwayPoints != nil
}

// TeamSide returns "home" or "away" for the given team, or "" if the team
// did not play in this game.
func (g *Game) TeamSide(team string) string {
	switch team {
	case g.HomeTeam:
		return "home"
	case g.AwayTeam:
		return "away"
	}
	return ""
}

// StatsFor returns the stat line for the given team.
func (g *Game) StatsFor(team string) (StatLine, bool) {
	switch team {
	case g.HomeTeam:
		return g.HomeStats, true
	case g.AwayTeam:
		return g.AwayStats, true
	}
	return nil, false
}

// CoerceNumeric converts an arbitrary stat value to float64. Strings
// containing ':' are parsed as minute:second durations and returned as
// fractional minutes. NaN and infinities are rejected.
func CoerceNumeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case bool:
		if t {
			return 1.0, true
		}
		return 0.0, true
	case string:
		return coerceString(t)
	}
	return 0, false
}

func coerceString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ":") {
		return parseMinuteSeconds(s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func parseMinuteSeconds(s string) (float64, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	minutes, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, false
	}
	return finite(minutes + seconds/60.0)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// SanitizeFloat converts NaN/Infinity to nil so they are never reported
// externally.
func SanitizeFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	if math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	return f
}
