package models

import "time"

type Round string

const (
	RoundQuarterfinal Round = "quarterfinal"
	RoundSemifinal    Round = "semifinal"
	RoundFinal        Round = "final"
)

// Rounds lists the bracket rounds in playing order.
var Rounds = []Round{RoundQuarterfinal, RoundSemifinal, RoundFinal}

// MatchCount returns how many matches the round holds.
func (r Round) MatchCount() int {
	switch r {
	case RoundQuarterfinal:
		return 4
	case RoundSemifinal:
		return 2
	case RoundFinal:
		return 1
	}
	return 0
}

// Next returns the round that follows r. The final has no successor.
func (r Round) Next() (Round, bool) {
	switch r {
	case RoundQuarterfinal:
		return RoundSemifinal, true
	case RoundSemifinal:
		return RoundFinal, true
	}
	return "", false
}

// Prefix is the short code used in bracket slot ids, e.g. "QF2".
func (r Round) Prefix() string {
	switch r {
	case RoundQuarterfinal:
		return "QF"
	case RoundSemifinal:
		return "SF"
	case RoundFinal:
		return "F"
	}
	return "R"
}

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
)

type DecidedBy string

const (
	DecidedByRegulation DecidedBy = "regulation"
	DecidedByExtraTime  DecidedBy = "extra_time"
	DecidedByPenalties  DecidedBy = "penalties"
)

type SimulationMode string

const (
	ModeQuick SimulationMode = "quick"
	ModeFull  SimulationMode = "full"
)

type EventType string

const (
	EventKickOff      EventType = "kick_off"
	EventGoal         EventType = "goal"
	EventCard         EventType = "card"
	EventSubstitution EventType = "substitution"
	EventHalfTime     EventType = "half_time"
	EventFullTime     EventType = "full_time"
	EventExtraTime    EventType = "extra_time"
	EventPenalties    EventType = "penalties"
)

// MatchEvent is one line of a full-mode timeline. Team-less events (kick off,
// half time) carry TeamID 0.
type MatchEvent struct {
	Minute int       `json:"minute"`
	Type   EventType `json:"type"`
	Player string    `json:"player,omitempty"`
	TeamID int       `json:"team_id,omitempty"`
	Team   string    `json:"team,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

type GoalScorer struct {
	Player string `json:"player"`
	TeamID int    `json:"team_id"`
	Team   string `json:"team"`
	Minute int    `json:"minute"`
}

// MatchResult is written once when a match completes and never changes afterwards.
type MatchResult struct {
	Team1Goals   int            `json:"team1_goals"`
	Team2Goals   int            `json:"team2_goals"`
	WinnerID     int            `json:"winner_id"`
	DecidedBy    DecidedBy      `json:"decided_by"`
	PenaltyScore *string        `json:"penalty_score,omitempty"`
	Mode         SimulationMode `json:"mode"`
	Events       []MatchEvent   `json:"events,omitempty"`
	GoalScorers  []GoalScorer   `json:"goal_scorers"`
	Commentary   []string       `json:"commentary,omitempty"`
}

// Match is a single bracket fixture between two registered teams.
type Match struct {
	ID          int          `json:"id" db:"id"`
	RunID       string       `json:"run_id" db:"run_id"`
	Round       Round        `json:"round" db:"round"`
	Slot        int          `json:"slot" db:"slot"`
	BracketUID  string       `json:"bracket_uid" db:"bracket_uid"`
	Team1ID     int          `json:"team1_id" db:"team1_id"`
	Team2ID     int          `json:"team2_id" db:"team2_id"`
	Status      MatchStatus  `json:"status" db:"status"`
	Result      *MatchResult `json:"result,omitempty" db:"result"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
	ReportKey   *string      `json:"-" db:"report_key"`
	ReportURL   *string      `json:"report_url,omitempty" db:"-"`

	Team1 *Team `json:"team1,omitempty" db:"-"`
	Team2 *Team `json:"team2,omitempty" db:"-"`
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted && m.Result != nil
}

func (m *Match) Involves(teamID int) bool {
	return m.Team1ID == teamID || m.Team2ID == teamID
}

// Opponent returns the id of the other side, or 0 when teamID did not play.
func (m *Match) Opponent(teamID int) int {
	switch teamID {
	case m.Team1ID:
		return m.Team2ID
	case m.Team2ID:
		return m.Team1ID
	}
	return 0
}

// Goals returns goals scored and conceded by teamID in a completed match.
func (m *Match) Goals(teamID int) (scored, conceded int) {
	if m.Result == nil {
		return 0, 0
	}
	if teamID == m.Team1ID {
		return m.Result.Team1Goals, m.Result.Team2Goals
	}
	return m.Result.Team2Goals, m.Result.Team1Goals
}
