package models

// TournamentStage is the bracket-level state. Transitions only move forward:
// empty → quarterfinal_active → semifinal_active → final_active → completed.
type TournamentStage string

const (
	StageEmpty              TournamentStage = "empty"
	StageQuarterfinalActive TournamentStage = "quarterfinal_active"
	StageSemifinalActive    TournamentStage = "semifinal_active"
	StageFinalActive        TournamentStage = "final_active"
	StageCompleted          TournamentStage = "completed"
)

// ActiveStage maps a round to the stage in which it is being played.
func ActiveStage(r Round) TournamentStage {
	switch r {
	case RoundQuarterfinal:
		return StageQuarterfinalActive
	case RoundSemifinal:
		return StageSemifinalActive
	case RoundFinal:
		return StageFinalActive
	}
	return StageEmpty
}

// IsActive reports whether a bracket exists and is still being played.
func (s TournamentStage) IsActive() bool {
	return s == StageQuarterfinalActive || s == StageSemifinalActive || s == StageFinalActive
}

// Tournament представляет текущее состояние сетки для отображения.
type Tournament struct {
	RunID         string          `json:"run_id,omitempty"`
	Stage         TournamentStage `json:"stage"`
	Quarterfinals []Match         `json:"quarterfinals"`
	Semifinals    []Match         `json:"semifinals"`
	Final         []Match         `json:"final"`
	ChampionID    *int            `json:"champion_id,omitempty"`
	Champion      *Team           `json:"champion,omitempty"`
}
