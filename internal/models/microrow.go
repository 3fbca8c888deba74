package models

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the settled result of a micro-row against its market.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// RowMeta carries the calendar and side context of a micro-row. The exposure
// controller groups by the calendar day of GameDate.
type RowMeta struct {
	GameDate time.Time  `json:"game_date"`
	Season   string     `json:"season"`
	Month    string     `json:"month"`
	Side     MarketSide `json:"side,omitempty"`
}

// MicroRow is the atomic unit of evaluation: one (game, target) pair with the
// label, market context, model probability, and the trigger decision.
// Created once during evaluation; only SelectedBet is annotated afterwards,
// by the exposure controller.
type MicroRow struct {
	GameID         uuid.UUID `json:"game_id"`
	TargetName     string    `json:"target_name"`
	TargetValue    float64   `json:"target_value"`
	ClosingLine    *float64  `json:"closing_line"`
	ClosingOdds    *float64  `json:"closing_odds"` // American
	ImpliedProb    *float64  `json:"implied_prob"`
	ModelProb      *float64  `json:"model_prob"`
	EdgeVsImplied  *float64  `json:"edge_vs_implied"`
	Outcome        *Outcome  `json:"outcome"`
	PnLUnits       *float64  `json:"pnl_units"`
	TriggerFlag    bool      `json:"trigger_flag"`
	TriggerReasons []string  `json:"trigger_reasons"`
	SelectedBet    *bool     `json:"selected_bet,omitempty"`

	Meta  RowMeta            `json:"meta"`
	Extra map[string]float64 `json:"extra,omitempty"` // ad hoc diagnostic attachments
}

// Day returns the calendar day of the row's game in UTC.
func (m *MicroRow) Day() time.Time {
	d := m.Meta.GameDate.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// AddReason appends a trigger reason and forces the trigger off.
func (m *MicroRow) AddReason(reason string) {
	m.TriggerReasons = append(m.TriggerReasons, reason)
	m.TriggerFlag = false
}

// Sanitize strips non-finite floats from externally reported fields.
func (m *MicroRow) Sanitize() {
	m.ClosingLine = SanitizeFloat(m.ClosingLine)
	m.ClosingOdds = SanitizeFloat(m.ClosingOdds)
	m.ImpliedProb = SanitizeFloat(m.ImpliedProb)
	m.ModelProb = SanitizeFloat(m.ModelProb)
	m.EdgeVsImplied = SanitizeFloat(m.EdgeVsImplied)
	m.PnLUnits = SanitizeFloat(m.PnLUnits)
}
