package theory

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/yourusername/theory-engine/internal/models"
)

// TriggerDefinition holds the thresholds a micro-row must clear to qualify
// as an actionable bet.
type TriggerDefinition struct {
	ProbThreshold    float64 `json:"prob_threshold"`
	ConfidenceBand   float64 `json:"confidence_band"`
	MinEdgeVsImplied float64 `json:"min_edge_vs_implied"`
}

// BuildMicroRows constructs one evaluation row per kept (game, target) pair.
// modelProbs may be nil when no model ran. Trigger evaluation is a
// short-circuiting checklist; each failed check appends a reason and forces
// the trigger off.
func BuildMicroRows(
	games []*models.Game,
	keptIDs []uuid.UUID,
	targets map[uuid.UUID]float64,
	def models.TargetDefinition,
	trigger TriggerDefinition,
	modelProbs map[uuid.UUID]float64,
) []*models.MicroRow {
	byID := make(map[uuid.UUID]*models.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}

	rows := make([]*models.MicroRow, 0, len(keptIDs))
	for _, id := range keptIDs {
		game, ok := byID[id]
		if !ok {
			continue
		}
		target, ok := targets[id]
		if !ok {
			continue
		}
		var modelProb *float64
		if p, ok := modelProbs[id]; ok {
			modelProb = &p
		}
		rows = append(rows, buildRow(game, target, def, trigger, modelProb))
	}
	return rows
}

func buildRow(game *models.Game, target float64, def models.TargetDefinition, trigger TriggerDefinition, modelProb *float64) *models.MicroRow {
	row := &models.MicroRow{
		GameID:      game.ID,
		TargetName:  def.TargetName,
		TargetValue: target,
		TriggerFlag: true,
		Meta: models.RowMeta{
			GameDate: game.GameDate,
			Season:   game.Season,
			Month:    game.GameDate.UTC().Format("2006-01"),
			Side:     def.Side,
		},
		Extra: map[string]float64{},
	}

	if !def.IsMarket() {
		row.AddReason("stat target: triggers disabled")
		return row
	}

	attachMarket(row, game, def)
	settle(row, game, def)
	evaluateTrigger(row, trigger, modelProb)
	return row
}

// attachMarket pulls the matching closing line and American odds. A missing
// market snapshot is recorded as a reason, never replaced with a fabricated
// probability.
func attachMarket(row *models.MicroRow, game *models.Game, def models.TargetDefinition) {
	d := game.Derived
	switch def.MarketType {
	case models.MarketSpread:
		row.ClosingLine = d.ClosingSpread
		if def.Side == models.SideHome {
			row.ClosingOdds = d.ClosingSpreadOddsHome
		} else {
			row.ClosingOdds = d.ClosingSpreadOddsAway
		}
	case models.MarketTotal:
		row.ClosingLine = d.ClosingTotal
		if def.Side == models.SideOver {
			row.ClosingOdds = d.ClosingTotalOddsOver
		} else {
			row.ClosingOdds = d.ClosingTotalOddsUnder
		}
	case models.MarketMoneyline:
		if def.Side == models.SideHome {
			row.ClosingOdds = d.MoneylineHome
		} else {
			row.ClosingOdds = d.MoneylineAway
		}
	}

	if row.ClosingOdds != nil {
		implied := ImpliedProbability(*row.ClosingOdds)
		row.ImpliedProb = &implied
	}
}

// settle assigns the outcome and flat-stake P&L. Wins pay decimal odds minus
// one, losses lose the unit, pushes return it.
func settle(row *models.MicroRow, game *models.Game, def models.TargetDefinition) {
	if isPush(game.Derived, def) {
		outcome := models.OutcomePush
		zero := 0.0
		row.Outcome = &outcome
		row.PnLUnits = &zero
		return
	}

	outcome := models.OutcomeLoss
	if row.TargetValue == 1.0 {
		outcome = models.OutcomeWin
	}
	row.Outcome = &outcome

	if row.ClosingOdds == nil {
		return
	}
	pnl := -1.0
	if outcome == models.OutcomeWin {
		pnl = DecimalOdds(*row.ClosingOdds) - 1.0
	}
	row.PnLUnits = &pnl
}

func isPush(d models.DerivedMetrics, def models.TargetDefinition) bool {
	switch def.MarketType {
	case models.MarketSpread:
		return d.SpreadPush != nil && *d.SpreadPush
	case models.MarketTotal:
		return d.TotalPush != nil && *d.TotalPush
	}
	return false
}

// evaluateTrigger runs the checklist in order; the first failure explains
// itself and every later check still records its own reason trail entry via
// short circuit.
func evaluateTrigger(row *models.MicroRow, trigger TriggerDefinition, modelProb *float64) {
	// The model probability is recorded whenever one exists; only the edge
	// depends on the market snapshot.
	row.ModelProb = modelProb
	if row.ImpliedProb == nil {
		row.AddReason("no market snapshot: implied probability unavailable")
		return
	}
	if modelProb == nil {
		row.AddReason("no model probability available")
		return
	}
	p := *modelProb
	edge := p - *row.ImpliedProb
	row.EdgeVsImplied = &edge

	if p < trigger.ProbThreshold {
		row.AddReason(fmt.Sprintf("model probability %.3f below threshold %.3f", p, trigger.ProbThreshold))
		return
	}
	if math.Abs(p-0.5) < trigger.ConfidenceBand {
		row.AddReason(fmt.Sprintf("model probability %.3f within confidence band %.3f of coin flip", p, trigger.ConfidenceBand))
		return
	}
	if edge < trigger.MinEdgeVsImplied {
		row.AddReason(fmt.Sprintf("edge %.3f below minimum %.3f", edge, trigger.MinEdgeVsImplied))
		return
	}
	row.TriggerReasons = append(row.TriggerReasons, "all trigger checks passed")
}

// ImpliedProbability converts American odds to the win probability the price
// implies, ignoring the bookmaker's margin.
func ImpliedProbability(american float64) float64 {
	if american > 0 {
		return 100.0 / (american + 100.0)
	}
	return -american / (-american + 100.0)
}

// DecimalOdds converts American odds to decimal odds.
func DecimalOdds(american float64) float64 {
	if american > 0 {
		return 1.0 + american/100.0
	}
	return 1.0 + 100.0/-american
}
