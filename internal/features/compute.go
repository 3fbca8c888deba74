package features

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/models"
)

// Computer joins feature descriptors against the per-game fact store and
// produces one row per game. It holds no mutable state across Compute calls.
type Computer struct {
	layers   []LayerBuilder
	approved map[string]struct{}
	logger   *logrus.Logger
}

// ComputerOption configures a Computer.
type ComputerOption func(*Computer)

// WithLayer registers an optional layer builder.
func WithLayer(layer LayerBuilder) ComputerOption {
	return func(c *Computer) { c.layers = append(c.layers, layer) }
}

// WithApprovedLayerFeatures pre-approves layer output names that may be
// admitted even when not explicitly requested.
func WithApprovedLayerFeatures(names ...string) ComputerOption {
	return func(c *Computer) {
		for _, n := range names {
			c.approved[n] = struct{}{}
		}
	}
}

// NewComputer creates a feature computation engine.
func NewComputer(logger *logrus.Logger, opts ...ComputerOption) *Computer {
	if logger == nil {
		logger = logrus.New()
	}
	c := &Computer{approved: map[string]struct{}{}, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute produces one FeatureRow per game with every requested feature
// populated or absent. Values that cannot be computed are left out, never
// zero-filled. Output order follows the input game order.
func (c *Computer) Compute(games []*models.Game, requested []models.FeatureDescriptor) []models.FeatureRow {
	history := buildTeamHistory(games)
	requestedNames := make(map[string]struct{}, len(requested))
	for _, d := range requested {
		requestedNames[d.Name] = struct{}{}
	}

	rows := make([]models.FeatureRow, 0, len(games))
	for _, game := range games {
		row := models.FeatureRow{GameID: game.ID, Values: make(map[string]any, len(requested))}
		for _, d := range requested {
			if v, ok := c.computeOne(game, d, history); ok {
				row.Values[d.Name] = v
			}
		}
		c.applyLayers(game, requestedNames, row.Values)
		rows = append(rows, row)
	}
	return rows
}

// computeOne derives a single feature value per its category. The switch is
// exhaustive over the closed category set.
func (c *Computer) computeOne(game *models.Game, d models.FeatureDescriptor, history teamHistory) (any, bool) {
	switch d.Category {
	case models.CategoryRaw:
		return computeRaw(game, d)
	case models.CategoryDifferential:
		return computePair(game, d, func(h, a float64) float64 { return h - a })
	case models.CategoryCombined:
		return computePair(game, d, func(h, a float64) float64 { return h + a })
	case models.CategorySituational:
		return computeSituational(game, d, history)
	case models.CategoryRolling:
		return computeRolling(game, d, history)
	case models.CategoryEngineered:
		return computePair(game, d, func(h, a float64) float64 { return h - a })
	}
	return nil, false
}

func computeRaw(game *models.Game, d models.FeatureDescriptor) (any, bool) {
	stat, side, ok := splitSidedName(d.Name)
	if !ok {
		return nil, false
	}
	line := game.HomeStats
	if side == "away" {
		line = game.AwayStats
	}
	v, ok := line[stat]
	return v, ok
}

func computePair(game *models.Game, d models.FeatureDescriptor, combine func(h, a float64) float64) (any, bool) {
	if len(d.Requires) == 0 {
		return nil, false
	}
	stat := d.Requires[0]
	h, okH := game.HomeStats.Float(stat)
	a, okA := game.AwayStats.Float(stat)
	if !okH || !okA {
		return nil, false
	}
	return combine(h, a), true
}

func computeSituational(game *models.Game, d models.FeatureDescriptor, history teamHistory) (any, bool) {
	switch d.Name {
	case "is_conference_game":
		if game.HomeConference == "" || game.AwayConference == "" {
			return nil, false
		}
		if game.HomeConference == game.AwayConference {
			return 1.0, true
		}
		return 0.0, true
	case "home_rest_days":
		return restDays(game, game.HomeTeam, history)
	case "away_rest_days":
		return restDays(game, game.AwayTeam, history)
	case "rest_diff":
		h, okH := restDays(game, game.HomeTeam, history)
		a, okA := restDays(game, game.AwayTeam, history)
		if !okH || !okA {
			return nil, false
		}
		return h.(float64) - a.(float64), true
	case "pace_estimate":
		return paceEstimate(game)
	}
	return nil, false
}

// paceEstimate applies the standard possessions formula to each side and
// averages. Computed from the same game's box score, so post_game by policy.
func paceEstimate(game *models.Game) (any, bool) {
	home, okH := sidePace(game.HomeStats)
	away, okA := sidePace(game.AwayStats)
	if !okH || !okA {
		return nil, false
	}
	return (home + away) / 2.0, true
}

func sidePace(line models.StatLine) (float64, bool) {
	fga, ok1 := line.Float("fga")
	oreb, ok2 := line.Float("oreb")
	tov, ok3 := line.Float("tov")
	fta, ok4 := line.Float("fta")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0, false
	}
	return fga - oreb + tov + 0.475*fta, true
}

func restDays(game *models.Game, team string, history teamHistory) (any, bool) {
	prior := history.priorGame(team, game.GameDate)
	if prior == nil {
		return nil, false
	}
	days := game.GameDate.Sub(prior.GameDate).Hours() / 24.0
	return days, true
}

// computeRolling averages a named stat over the team's last N games played
// strictly before the current game's date. A game never sees itself or
// future games.
func computeRolling(game *models.Game, d models.FeatureDescriptor, history teamHistory) (any, bool) {
	stat, window, side, ok := parseRollingName(d.Name)
	if !ok {
		return nil, false
	}
	switch side {
	case "home":
		return rollingAverage(history, game.HomeTeam, game.GameDate, stat, window)
	case "away":
		return rollingAverage(history, game.AwayTeam, game.GameDate, stat, window)
	case "diff":
		h, okH := rollingAverage(history, game.HomeTeam, game.GameDate, stat, window)
		a, okA := rollingAverage(history, game.AwayTeam, game.GameDate, stat, window)
		if !okH || !okA {
			return nil, false
		}
		return h.(float64) - a.(float64), true
	}
	return nil, false
}

func rollingAverage(history teamHistory, team string, before time.Time, stat string, window int) (any, bool) {
	prior := history.priorGames(team, before, window)
	if len(prior) == 0 {
		return nil, false
	}
	sum := 0.0
	count := 0
	for _, g := range prior {
		line, ok := g.StatsFor(team)
		if !ok {
			continue
		}
		if v, ok := line.Float(stat); ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return nil, false
	}
	return sum / float64(count), true
}

// applyLayers runs each optional layer builder and admits only requested or
// pre-approved outputs. Layer failures are logged and swallowed; they never
// abort the primary computation.
func (c *Computer) applyLayers(game *models.Game, requested map[string]struct{}, values map[string]any) {
	for _, layer := range c.layers {
		result, err := layer.Build(game)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"layer":   layer.Name(),
				"game_id": game.ID,
			}).WithError(err).Warn("Layer builder failed; continuing without it")
			continue
		}
		for name, v := range result.Values {
			if _, ok := requested[name]; !ok {
				if _, approved := c.approved[name]; !approved {
					continue
				}
			}
			values[name] = v
		}
	}
}

// splitSidedName splits "home_fga" into ("fga", "home"). Names that carry no
// side prefix are not raw lookups.
func splitSidedName(name string) (stat, side string, ok bool) {
	switch {
	case strings.HasPrefix(name, "home_"):
		return strings.TrimPrefix(name, "home_"), "home", true
	case strings.HasPrefix(name, "away_"):
		return strings.TrimPrefix(name, "away_"), "away", true
	}
	return "", "", false
}

// parseRollingName splits "rolling_<stat>_<window>_<side>".
func parseRollingName(name string) (stat string, window int, side string, ok bool) {
	if !strings.HasPrefix(name, "rolling_") {
		return "", 0, "", false
	}
	parts := strings.Split(strings.TrimPrefix(name, "rolling_"), "_")
	if len(parts) < 3 {
		return "", 0, "", false
	}
	side = parts[len(parts)-1]
	window, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil || window <= 0 {
		return "", 0, "", false
	}
	stat = strings.Join(parts[:len(parts)-2], "_")
	return stat, window, side, stat != ""
}

// teamHistory indexes each team's games in ascending date order.
type teamHistory map[string][]*models.Game

func buildTeamHistory(games []*models.Game) teamHistory {
	history := make(teamHistory)
	for _, g := range games {
		history[g.HomeTeam] = append(history[g.HomeTeam], g)
		history[g.AwayTeam] = append(history[g.AwayTeam], g)
	}
	for team := range history {
		list := history[team]
		sort.SliceStable(list, func(i, j int) bool { return list[i].GameDate.Before(list[j].GameDate) })
	}
	return history
}

// priorGame returns the team's most recent completed game strictly before
// the given date.
func (h teamHistory) priorGame(team string, before time.Time) *models.Game {
	prior := h.priorGames(team, before, 1)
	if len(prior) == 0 {
		return nil
	}
	return prior[0]
}

// priorGames returns up to n completed games strictly before the given date,
// most recent first.
func (h teamHistory) priorGames(team string, before time.Time, n int) []*models.Game {
	list := h[team]
	out := make([]*models.Game, 0, n)
	for i := len(list) - 1; i >= 0 && len(out) < n; i-- {
		g := list[i]
		if !g.GameDate.Before(before) {
			continue
		}
		if !g.Completed() {
			continue
		}
		out = append(out, g)
	}
	return out
}
