package brackets

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/cup-simulator/models"
)

// BracketMatch is one fixture of the plan. Later-round fixtures start as
// placeholders that point at the two matches whose winners fill them.
type BracketMatch struct {
	UID   string
	Round models.Round
	Slot  int

	Team1ID *int
	Team2ID *int

	SourceMatch1UID *string
	SourceMatch2UID *string

	IsPlaceholder bool
}

// UID builds the bracket slot id, e.g. "SF2".
func UID(round models.Round, slot int) string {
	return fmt.Sprintf("%s%d", round.Prefix(), slot)
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket returns the whole 7-match plan: four concrete quarterfinals
// (1v2, 3v4, 5v6, 7v8) followed by semifinal and final placeholders.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	ids := params.TeamIDs
	if len(ids) != BracketSize {
		return nil, fmt.Errorf("%w: got %d", ErrWrongTeamCount, len(ids))
	}
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: team %d", ErrDuplicateEntry, id)
		}
		seen[id] = struct{}{}
	}

	plan := make([]*BracketMatch, 0, BracketSize-1)
	for i := 0; i < len(ids); i += 2 {
		slot := i/2 + 1
		t1, t2 := ids[i], ids[i+1]
		plan = append(plan, &BracketMatch{
			UID:     UID(models.RoundQuarterfinal, slot),
			Round:   models.RoundQuarterfinal,
			Slot:    slot,
			Team1ID: &t1,
			Team2ID: &t2,
		})
	}

	for round, ok := models.RoundQuarterfinal.Next(); ok; round, ok = round.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prev := previousRound(round)
		for slot := 1; slot <= round.MatchCount(); slot++ {
			src1 := UID(prev, 2*slot-1)
			src2 := UID(prev, 2*slot)
			plan = append(plan, &BracketMatch{
				UID:             UID(round, slot),
				Round:           round,
				Slot:            slot,
				SourceMatch1UID: &src1,
				SourceMatch2UID: &src2,
				IsPlaceholder:   true,
			})
		}
	}
	return plan, nil
}

// NextRound pairs the winners of a fully completed round. Winners of slots
// 2k-1 and 2k meet in slot k of the following round.
func NextRound(round models.Round, matches []*models.Match) ([]*BracketMatch, error) {
	next, ok := round.Next()
	if !ok {
		return nil, ErrNoNextRound
	}

	inRound := make([]*models.Match, 0, round.MatchCount())
	for _, m := range matches {
		if m.Round == round {
			inRound = append(inRound, m)
		}
	}
	if len(inRound) != round.MatchCount() {
		return nil, fmt.Errorf("%w: %s has %d of %d matches", ErrRoundIncomplete, round, len(inRound), round.MatchCount())
	}
	sort.Slice(inRound, func(i, j int) bool { return inRound[i].Slot < inRound[j].Slot })

	for _, m := range inRound {
		if !m.IsCompleted() {
			return nil, fmt.Errorf("%w: match %d (%s)", ErrRoundIncomplete, m.ID, m.BracketUID)
		}
	}

	out := make([]*BracketMatch, 0, next.MatchCount())
	for slot := 1; slot <= next.MatchCount(); slot++ {
		a, b := inRound[2*slot-2], inRound[2*slot-1]
		w1, w2 := a.Result.WinnerID, b.Result.WinnerID
		src1, src2 := a.BracketUID, b.BracketUID
		out = append(out, &BracketMatch{
			UID:             UID(next, slot),
			Round:           next,
			Slot:            slot,
			Team1ID:         &w1,
			Team2ID:         &w2,
			SourceMatch1UID: &src1,
			SourceMatch2UID: &src2,
		})
	}
	return out, nil
}

func previousRound(r models.Round) models.Round {
	prev := models.Rounds[0]
	for _, candidate := range models.Rounds {
		if candidate == r {
			return prev
		}
		prev = candidate
	}
	return prev
}
