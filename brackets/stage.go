package brackets

import "github.com/Dosada05/cup-simulator/models"

// Stage derives the tournament stage from the matches of the current run.
func Stage(matches []*models.Match) models.TournamentStage {
	latest, ok := LatestRound(matches)
	if !ok {
		return models.StageEmpty
	}
	if latest == models.RoundFinal {
		for _, m := range matches {
			if m.Round == models.RoundFinal && m.IsCompleted() {
				return models.StageCompleted
			}
		}
	}
	return models.ActiveStage(latest)
}

// LatestRound returns the furthest round that has at least one match.
func LatestRound(matches []*models.Match) (models.Round, bool) {
	idx := -1
	for _, m := range matches {
		for i, r := range models.Rounds {
			if m.Round == r && i > idx {
				idx = i
			}
		}
	}
	if idx < 0 {
		return "", false
	}
	return models.Rounds[idx], true
}

// RoundComplete reports whether every match of round exists and has a result.
func RoundComplete(round models.Round, matches []*models.Match) bool {
	n := 0
	for _, m := range matches {
		if m.Round != round {
			continue
		}
		if !m.IsCompleted() {
			return false
		}
		n++
	}
	return n == round.MatchCount()
}

// ChampionID returns the winner of the completed final.
func ChampionID(matches []*models.Match) (int, bool) {
	for _, m := range matches {
		if m.Round == models.RoundFinal && m.IsCompleted() {
			return m.Result.WinnerID, true
		}
	}
	return 0, false
}
