// Package rating implements a TrueSkill-style Bayesian skill rating: each
// (player, game type) pair carries a belief distribution (mu, sigma) over
// that player's true skill, updated after every game that had at least one
// human player.
package rating

import (
	"fmt"
	"math"
	"sort"

	"playpalace/internal/gameframework"
)

const (
	defaultMu           = 25.0
	defaultSigma        = defaultMu / 3
	beta                = defaultSigma / 2 // skill-class width
	dynamicsFactor      = defaultSigma / 100
	drawProbabilityZero = 0.0 // this framework's games have no draws
)

// Store persists and retrieves ratings; internal/persistence implements
// this against the player_ratings table.
type Store interface {
	GetRating(playerID, gameType string) (mu, sigma float64, found bool, err error)
	SetRating(playerID, gameType string, mu, sigma float64) error
}

// Engine computes and stores rating updates.
type Engine struct {
	store Store
}

func New(store Store) *Engine {
	return &Engine{store: store}
}

// Rating is one player's current belief distribution.
type Rating struct {
	Mu    float64
	Sigma float64
}

// Ordinal is a conservative skill estimate (mu - 3*sigma) used for ranking
// and display: a new player with high uncertainty ranks lower than their mu
// alone would suggest, until they've played enough to narrow sigma.
func (r Rating) Ordinal() float64 {
	return r.Mu - 3*r.Sigma
}

func (e *Engine) get(playerID, gameType string) Rating {
	mu, sigma, found, err := e.store.GetRating(playerID, gameType)
	if err != nil || !found {
		return Rating{Mu: defaultMu, Sigma: defaultSigma}
	}
	return Rating{Mu: mu, Sigma: sigma}
}

// GetRating returns a player's current rating for a game type, or the
// default prior if they have never played it.
func (e *Engine) GetRating(playerID, gameType string) Rating {
	return e.get(playerID, gameType)
}

// UpdateRatings applies one game's outcome: rankings is an ordered list of
// tiers, winner's tier first, each tier a list of player ids tied with each
// other. Each player's mu is compared only with the adjacent tiers: it rises
// against the tier directly below (players they beat) and falls against the
// tier directly above (players who beat them).
func (e *Engine) UpdateRatings(rankings [][]string, gameType string) {
	if len(rankings) < 2 {
		return
	}

	ratings := make(map[string]Rating)
	for _, tier := range rankings {
		for _, id := range tier {
			ratings[id] = e.get(id, gameType)
		}
	}

	for rank, tier := range rankings {
		for _, id := range tier {
			r := ratings[id]

			// Compare against the tier immediately above (lost to) and the
			// tier immediately below (beaten), each contributing a
			// symmetric nudge proportional to surprise.
			if rank > 0 {
				for _, opp := range rankings[rank-1] {
					r = nudge(r, ratings[opp], -1)
				}
			}
			if rank < len(rankings)-1 {
				for _, opp := range rankings[rank+1] {
					r = nudge(r, ratings[opp], 1)
				}
			}

			r.Sigma = math.Max(math.Sqrt(r.Sigma*r.Sigma-dynamicsFactor*dynamicsFactor), beta/2)
			if err := e.store.SetRating(id, gameType, r.Mu, r.Sigma); err != nil {
				continue
			}
		}
	}
}

// nudge moves r's mu toward separating it from opponent, in direction dir
// (+1 beat them, -1 lost to them), scaled by how surprising that result was
// under the current logistic win-probability curve: beating a much
// stronger opponent moves mu further than beating a much weaker one.
func nudge(r, opponent Rating, dir float64) Rating {
	actual := 0.0
	if dir > 0 {
		actual = 1.0
	}
	k := r.Sigma * r.Sigma / (r.Sigma*r.Sigma + opponent.Sigma*opponent.Sigma + 2*beta*beta)
	r.Mu += k * (actual - winProbability(r, opponent))
	return r
}

// winProbability is the symmetric logistic prediction: for any pair (a, b),
// winProbability(a, b) + winProbability(b, a) == 1.
func winProbability(a, b Rating) float64 {
	denom := math.Sqrt(2*beta*beta + a.Sigma*a.Sigma + b.Sigma*b.Sigma)
	return 1 / (1 + math.Exp(-(a.Mu-b.Mu)/denom))
}

// PredictWinProbability exposes the same symmetric prediction used
// internally, for the "predict outcomes" action.
func (e *Engine) PredictWinProbability(playerA, playerB, gameType string) float64 {
	return winProbability(e.get(playerA, gameType), e.get(playerB, gameType))
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	PlayerID string
	Ordinal  float64
}

// OutcomePredictor adapts Engine to gameframework.Predictor, so the "predict
// outcomes" action can be wired without gameframework depending on rating.
type OutcomePredictor struct {
	Engine *Engine
}

// PredictOutcomes ranks every human player at the table by rating ordinal
// and returns a header line plus one "N. name" line per player in that
// order. No win probabilities are included.
func (p *OutcomePredictor) PredictOutcomes(gameType string, players []*gameframework.Player) []string {
	type scored struct {
		name    string
		ordinal float64
	}
	var humans []scored
	for _, pl := range players {
		if pl.IsBot {
			continue
		}
		humans = append(humans, scored{name: pl.Name, ordinal: p.Engine.GetRating(pl.ID, gameType).Ordinal()})
	}
	if len(humans) < 2 {
		return []string{"At least two human players are needed to predict outcomes."}
	}

	sort.SliceStable(humans, func(i, j int) bool { return humans[i].ordinal > humans[j].ordinal })

	lines := make([]string, 0, len(humans)+1)
	lines = append(lines, "Predicted outcomes:")
	for i, h := range humans {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, h.name))
	}
	return lines
}
