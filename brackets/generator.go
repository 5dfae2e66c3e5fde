package brackets

import (
	"context"
	"errors"
)

var (
	ErrWrongTeamCount  = errors.New("bracket needs exactly 8 teams")
	ErrDuplicateEntry  = errors.New("team appears twice in the bracket")
	ErrRoundIncomplete = errors.New("round has matches without a result")
	ErrNoNextRound     = errors.New("final has no next round")
)

// BracketSize is the number of teams that enter the quarterfinals.
const BracketSize = 8

type GenerateBracketParams struct {
	// TeamIDs in registration order. Adjacent pairs meet in the quarterfinals.
	TeamIDs []int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}
