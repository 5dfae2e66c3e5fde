package models

import "time"

type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DF"
	PositionMidfielder Position = "MF"
	PositionForward    Position = "FW"
)

// Player is a generated squad member. Players exist only inside their team's squad.
type Player struct {
	Name     string   `json:"name" yaml:"name"`
	Position Position `json:"position" yaml:"position"`
	Number   int      `json:"number" yaml:"number"`
	// Rating в естественной позиции игрока.
	Rating  int  `json:"rating" yaml:"rating"`
	Captain bool `json:"captain,omitempty" yaml:"captain,omitempty"`
}

// Team представляет зарегистрированную национальную сборную.
type Team struct {
	ID             int       `json:"id" db:"id"`
	Country        string    `json:"country" db:"country"`
	Manager        string    `json:"manager" db:"manager"`
	Representative string    `json:"representative" db:"representative"`
	Contact        string    `json:"contact" db:"contact"`
	Rating         int       `json:"rating" db:"rating"`
	Squad          []Player  `json:"squad" db:"squad"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// PlayerByName returns the squad member with the given name.
func (t *Team) PlayerByName(name string) (Player, bool) {
	for _, p := range t.Squad {
		if p.Name == name {
			return p, true
		}
	}
	return Player{}, false
}
