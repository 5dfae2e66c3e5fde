package brackets

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/cup-simulator/models"
)

func TestGenerateBracketPairsRegistrationOrder(t *testing.T) {
	g := NewSingleEliminationGenerator()
	plan, err := g.GenerateBracket(context.Background(), GenerateBracketParams{TeamIDs: []int{1, 2, 3, 4, 5, 6, 7, 8}})
	if err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}
	if len(plan) != 7 {
		t.Fatalf("plan has %d matches, want 7", len(plan))
	}

	wantQF := [][2]int{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	for i, want := range wantQF {
		m := plan[i]
		if m.Round != models.RoundQuarterfinal || m.Slot != i+1 || m.IsPlaceholder {
			t.Fatalf("plan[%d] = %+v, want concrete QF%d", i, m, i+1)
		}
		if *m.Team1ID != want[0] || *m.Team2ID != want[1] {
			t.Errorf("QF%d = %d v %d, want %d v %d", i+1, *m.Team1ID, *m.Team2ID, want[0], want[1])
		}
	}

	sf2 := plan[5]
	if sf2.UID != "SF2" || *sf2.SourceMatch1UID != "QF3" || *sf2.SourceMatch2UID != "QF4" {
		t.Errorf("SF2 = %+v", sf2)
	}
	final := plan[6]
	if final.UID != "F1" || *final.SourceMatch1UID != "SF1" || *final.SourceMatch2UID != "SF2" || !final.IsPlaceholder {
		t.Errorf("final = %+v", final)
	}
}

func TestGenerateBracketRejectsBadInput(t *testing.T) {
	g := NewSingleEliminationGenerator()
	tests := []struct {
		name string
		ids  []int
		want error
	}{
		{"seven teams", []int{1, 2, 3, 4, 5, 6, 7}, ErrWrongTeamCount},
		{"nine teams", []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, ErrWrongTeamCount},
		{"duplicate", []int{1, 2, 3, 4, 5, 6, 7, 7}, ErrDuplicateEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.GenerateBracket(context.Background(), GenerateBracketParams{TeamIDs: tt.ids})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func completed(id int, round models.Round, slot, t1, t2, winner int) *models.Match {
	return &models.Match{
		ID: id, Round: round, Slot: slot, BracketUID: UID(round, slot),
		Team1ID: t1, Team2ID: t2, Status: models.MatchStatusCompleted,
		Result: &models.MatchResult{WinnerID: winner},
	}
}

func TestNextRoundPairsWinnersBySlot(t *testing.T) {
	qf := []*models.Match{
		completed(3, models.RoundQuarterfinal, 3, 5, 6, 6),
		completed(1, models.RoundQuarterfinal, 1, 1, 2, 1),
		completed(4, models.RoundQuarterfinal, 4, 7, 8, 7),
		completed(2, models.RoundQuarterfinal, 2, 3, 4, 4),
	}
	semis, err := NextRound(models.RoundQuarterfinal, qf)
	if err != nil {
		t.Fatalf("NextRound: %v", err)
	}
	if len(semis) != 2 {
		t.Fatalf("got %d semifinals", len(semis))
	}
	if *semis[0].Team1ID != 1 || *semis[0].Team2ID != 4 {
		t.Errorf("SF1 = %d v %d, want 1 v 4", *semis[0].Team1ID, *semis[0].Team2ID)
	}
	if *semis[1].Team1ID != 6 || *semis[1].Team2ID != 7 {
		t.Errorf("SF2 = %d v %d, want 6 v 7", *semis[1].Team1ID, *semis[1].Team2ID)
	}

	sf := []*models.Match{
		completed(5, models.RoundSemifinal, 1, 1, 4, 4),
		completed(6, models.RoundSemifinal, 2, 6, 7, 6),
	}
	final, err := NextRound(models.RoundSemifinal, append(qf, sf...))
	if err != nil {
		t.Fatalf("NextRound(semifinal): %v", err)
	}
	if len(final) != 1 || *final[0].Team1ID != 4 || *final[0].Team2ID != 6 || final[0].UID != "F1" {
		t.Fatalf("final = %+v", final[0])
	}

	if _, err := NextRound(models.RoundFinal, nil); !errors.Is(err, ErrNoNextRound) {
		t.Fatalf("NextRound(final) err = %v", err)
	}
}

func TestNextRoundRequiresCompletedRound(t *testing.T) {
	qf := []*models.Match{
		completed(1, models.RoundQuarterfinal, 1, 1, 2, 1),
		completed(2, models.RoundQuarterfinal, 2, 3, 4, 3),
		completed(3, models.RoundQuarterfinal, 3, 5, 6, 5),
		{ID: 4, Round: models.RoundQuarterfinal, Slot: 4, Team1ID: 7, Team2ID: 8, Status: models.MatchStatusScheduled},
	}
	if _, err := NextRound(models.RoundQuarterfinal, qf); !errors.Is(err, ErrRoundIncomplete) {
		t.Fatalf("err = %v, want ErrRoundIncomplete", err)
	}
	if _, err := NextRound(models.RoundQuarterfinal, qf[:3]); !errors.Is(err, ErrRoundIncomplete) {
		t.Fatalf("short round err = %v, want ErrRoundIncomplete", err)
	}
}

func TestStage(t *testing.T) {
	scheduledFinal := &models.Match{Round: models.RoundFinal, Slot: 1, Status: models.MatchStatusScheduled}
	tests := []struct {
		name    string
		matches []*models.Match
		want    models.TournamentStage
	}{
		{"no matches", nil, models.StageEmpty},
		{"quarterfinals", []*models.Match{completed(1, models.RoundQuarterfinal, 1, 1, 2, 1)}, models.StageQuarterfinalActive},
		{"semifinals", []*models.Match{
			completed(1, models.RoundQuarterfinal, 1, 1, 2, 1),
			{Round: models.RoundSemifinal, Slot: 1, Status: models.MatchStatusScheduled},
		}, models.StageSemifinalActive},
		{"final scheduled", []*models.Match{scheduledFinal}, models.StageFinalActive},
		{"final played", []*models.Match{completed(7, models.RoundFinal, 1, 1, 5, 5)}, models.StageCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stage(tt.matches); got != tt.want {
				t.Fatalf("Stage = %q, want %q", got, tt.want)
			}
		})
	}

	if id, ok := ChampionID([]*models.Match{completed(7, models.RoundFinal, 1, 1, 5, 5)}); !ok || id != 5 {
		t.Fatalf("ChampionID = %d, %v", id, ok)
	}
}
