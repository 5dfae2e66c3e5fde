package models

// ScorerStanding is one golden boot row.
type ScorerStanding struct {
	Rank    int    `json:"rank"`
	Player  string `json:"player"`
	TeamID  int    `json:"team_id"`
	Team    string `json:"team"`
	Goals   int    `json:"goals"`
	Matches int    `json:"matches"`
}

type TeamSummary struct {
	Played         int      `json:"played"`
	Wins           int      `json:"wins"`
	Losses         int      `json:"losses"`
	GoalsFor       int      `json:"goals_for"`
	GoalsAgainst   int      `json:"goals_against"`
	GoalDifference int      `json:"goal_difference"`
	RecentForm     []string `json:"recent_form"`
}

type TeamScorer struct {
	Player string `json:"player"`
	Goals  int    `json:"goals"`
}

type OpponentRecord struct {
	OpponentID   int    `json:"opponent_id"`
	Opponent     string `json:"opponent"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
}

type TeamAnalytics struct {
	Team             *Team            `json:"team"`
	Summary          TeamSummary      `json:"summary"`
	TopScorers       []TeamScorer     `json:"top_scorers"`
	RecordByOpponent []OpponentRecord `json:"record_by_opponent"`
}
