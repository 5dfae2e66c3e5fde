package models

type DashboardStats struct {
	TeamsTotal       int             `json:"teams_total"`
	MatchesTotal     int             `json:"matches_total"`
	MatchesCompleted int             `json:"matches_completed"`
	GoalsTotal       int             `json:"goals_total"`
	PenaltyShootouts int             `json:"penalty_shootouts"`
	Stage            TournamentStage `json:"stage"`
	TopScorer        *ScorerStanding `json:"top_scorer,omitempty"`
}
