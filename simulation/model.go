package simulation

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/Dosada05/cup-simulator/models"
)

const (
	regulationMinutes = 90
	extraTimeMinutes  = 30

	// expected goals for two equally rated teams over 90 minutes
	baseExpectedGoals = 1.35
	// per rating point of difference, applied symmetrically to both sides
	ratingGoalFactor  = 0.025
	maxExpectedGoals  = 4.5
	minExpectedGoals  = 0.15
	eloScale          = 40.0
	extraTimeDecisive = 0.5

	penaltyBaseConversion = 0.75
	penaltyRatingTilt     = 0.10
	penaltyRegularKicks   = 5
	penaltyMaxRounds      = 30
)

// positionWeight biases goal attribution toward attacking players.
var positionWeight = map[models.Position]int{
	models.PositionForward:    6,
	models.PositionMidfielder: 3,
	models.PositionDefender:   1,
	models.PositionGoalkeeper: 0,
}

type side int

const (
	side1 side = 1
	side2 side = 2
)

type goal struct {
	side   side
	player models.Player
	minute int
}

// outcome is the canonical result of the probability model. Both simulation
// modes are rendered from it, so they share one score distribution.
type outcome struct {
	goals1, goals2 int
	decidedBy      models.DecidedBy
	winner         side
	penalties      *[2]int
	goals          []goal // ordered by minute
}

// ExpectedGoals returns the Poisson means for team1 and team2 over regulation time.
func ExpectedGoals(rating1, rating2 int) (float64, float64) {
	diff := float64(rating1 - rating2)
	return clampGoals(baseExpectedGoals * math.Exp(ratingGoalFactor*diff)),
		clampGoals(baseExpectedGoals * math.Exp(-ratingGoalFactor*diff))
}

// WinProbability is the Elo-style chance that team1 wins a decisive contest
// (extra-time winner, penalty tilt).
func WinProbability(rating1, rating2 int) float64 {
	return 1 / (1 + math.Pow(10, -float64(rating1-rating2)/eloScale))
}

func clampGoals(v float64) float64 {
	return math.Max(minExpectedGoals, math.Min(maxExpectedGoals, v))
}

func decide(rng *rand.Rand, team1, team2 *models.Team) outcome {
	lambda1, lambda2 := ExpectedGoals(team1.Rating, team2.Rating)
	out := outcome{
		goals1: poisson(rng, lambda1),
		goals2: poisson(rng, lambda2),
	}

	for i := 0; i < out.goals1; i++ {
		out.goals = append(out.goals, goal{side: side1, player: pickScorer(rng, team1), minute: 1 + rng.IntN(regulationMinutes)})
	}
	for i := 0; i < out.goals2; i++ {
		out.goals = append(out.goals, goal{side: side2, player: pickScorer(rng, team2), minute: 1 + rng.IntN(regulationMinutes)})
	}

	switch {
	case out.goals1 > out.goals2:
		out.decidedBy, out.winner = models.DecidedByRegulation, side1
	case out.goals2 > out.goals1:
		out.decidedBy, out.winner = models.DecidedByRegulation, side2
	case rng.Float64() < extraTimeDecisive:
		out.decidedBy = models.DecidedByExtraTime
		out.winner = side2
		scorer := team2
		if rng.Float64() < WinProbability(team1.Rating, team2.Rating) {
			out.winner, scorer = side1, team1
		}
		minute := regulationMinutes + 1 + rng.IntN(extraTimeMinutes)
		out.goals = append(out.goals, goal{side: out.winner, player: pickScorer(rng, scorer), minute: minute})
		if out.winner == side1 {
			out.goals1++
		} else {
			out.goals2++
		}
	default:
		out.decidedBy = models.DecidedByPenalties
		score := shootout(rng, team1.Rating, team2.Rating)
		out.penalties = &score
		out.winner = side1
		if score[1] > score[0] {
			out.winner = side2
		}
	}

	sort.SliceStable(out.goals, func(i, j int) bool {
		return out.goals[i].minute < out.goals[j].minute
	})
	return out
}

// poisson draws from Poisson(lambda) with Knuth's multiplication method,
// fine for the small means used here.
func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k
}

func pickScorer(rng *rand.Rand, team *models.Team) models.Player {
	total := 0
	for _, p := range team.Squad {
		total += positionWeight[p.Position]
	}
	if total == 0 {
		return team.Squad[rng.IntN(len(team.Squad))]
	}
	n := rng.IntN(total)
	for _, p := range team.Squad {
		n -= positionWeight[p.Position]
		if n < 0 {
			return p
		}
	}
	return team.Squad[len(team.Squad)-1]
}

// shootout plays five kicks each with early finish, then sudden death.
// It always returns unequal scores.
func shootout(rng *rand.Rand, rating1, rating2 int) [2]int {
	tilt := penaltyRatingTilt * (WinProbability(rating1, rating2) - 0.5)
	conv := [2]float64{penaltyBaseConversion + tilt, penaltyBaseConversion - tilt}
	var score [2]int

	for kick := 0; kick < penaltyRegularKicks; kick++ {
		for s := 0; s < 2; s++ {
			if rng.Float64() < conv[s] {
				score[s]++
			}
			taken := [2]int{kick + 1, kick}
			if s == 1 {
				taken[1] = kick + 1
			}
			left0 := penaltyRegularKicks - taken[0]
			left1 := penaltyRegularKicks - taken[1]
			if score[0]+left0 < score[1] || score[1]+left1 < score[0] {
				return score
			}
		}
	}

	for round := 0; score[0] == score[1]; round++ {
		if round >= penaltyMaxRounds {
			// keeps the shootout finite; the coin still leans toward the better side
			if rng.Float64() < WinProbability(rating1, rating2) {
				score[0]++
			} else {
				score[1]++
			}
			break
		}
		hit0 := rng.Float64() < conv[0]
		hit1 := rng.Float64() < conv[1]
		if hit0 {
			score[0]++
		}
		if hit1 {
			score[1]++
		}
	}
	return score
}
