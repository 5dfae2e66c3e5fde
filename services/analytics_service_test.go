package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Dosada05/cup-simulator/models"
)

func scored(id, t1, t2, g1, g2 int, scorers ...models.GoalScorer) *models.Match {
	winner := t1
	if g2 > g1 {
		winner = t2
	}
	return &models.Match{
		ID: id, Team1ID: t1, Team2ID: t2, Status: models.MatchStatusCompleted,
		Result: &models.MatchResult{
			Team1Goals: g1, Team2Goals: g2, WinnerID: winner,
			DecidedBy: models.DecidedByRegulation, GoalScorers: scorers,
		},
	}
}

func goals(player string, teamID int, team string, n int) []models.GoalScorer {
	out := make([]models.GoalScorer, n)
	for i := range out {
		out[i] = models.GoalScorer{Player: player, TeamID: teamID, Team: team, Minute: 10 + i}
	}
	return out
}

func TestStandingsTieBreakOrder(t *testing.T) {
	// P1 (T1): 5 goals in 3 matches, P2 (T2): 5 goals in 2 matches, P3 (T1): 3 goals in 1 match
	var matches []*models.Match
	matches = append(matches, scored(1, 1, 3, 2, 0, goals("P1", 1, "T1", 2)...))
	matches = append(matches, scored(2, 1, 4, 2, 0, goals("P1", 1, "T1", 2)...))
	matches = append(matches, scored(3, 1, 5, 4, 0, append(goals("P1", 1, "T1", 1), goals("P3", 1, "T1", 3)...)...))
	matches = append(matches, scored(4, 2, 6, 3, 0, goals("P2", 2, "T2", 3)...))
	matches = append(matches, scored(5, 2, 7, 2, 0, goals("P2", 2, "T2", 2)...))

	got := buildStandings(matches)
	var order []string
	for _, row := range got {
		order = append(order, row.Player)
	}
	if !reflect.DeepEqual(order, []string{"P2", "P1", "P3"}) {
		t.Fatalf("order = %v, want [P2 P1 P3]", order)
	}
	if got[0].Goals != 5 || got[0].Matches != 2 || got[1].Matches != 3 || got[2].Rank != 3 {
		t.Fatalf("rows = %+v", got)
	}
}

func TestStandingsSeparatesSameNameAcrossTeams(t *testing.T) {
	matches := []*models.Match{
		scored(1, 1, 2, 1, 2, append(goals("Silva", 1, "Brazil", 1), goals("Silva", 2, "Portugal", 2)...)...),
		{ID: 2, Team1ID: 1, Team2ID: 2, Status: models.MatchStatusScheduled},
	}
	got := buildStandings(matches)
	if len(got) != 2 || got[0].Team != "Portugal" || got[1].Team != "Brazil" {
		t.Fatalf("standings = %+v", got)
	}
}

func TestBuildTeamAnalytics(t *testing.T) {
	team := &models.Team{ID: 1, Country: "Brazil"}
	teams := map[int]*models.Team{1: team, 2: {ID: 2, Country: "Spain"}, 3: {ID: 3, Country: "Chile"}}
	matches := []*models.Match{
		scored(1, 1, 2, 2, 0, append(goals("Neto", 1, "Brazil", 1), goals("Alves", 1, "Brazil", 1)...)...),
		scored(2, 3, 1, 1, 0, goals("Vidal", 3, "Chile", 1)...),
		scored(3, 2, 1, 1, 3, goals("Alves", 1, "Brazil", 3)...),
		scored(4, 2, 3, 1, 0),
	}

	got := buildTeamAnalytics(team, matches, teams)
	want := models.TeamSummary{
		Played: 3, Wins: 2, Losses: 1, GoalsFor: 5, GoalsAgainst: 2, GoalDifference: 3,
		RecentForm: []string{"W", "L", "W"},
	}
	if !reflect.DeepEqual(got.Summary, want) {
		t.Fatalf("summary = %+v, want %+v", got.Summary, want)
	}
	wantScorers := []models.TeamScorer{{Player: "Alves", Goals: 4}, {Player: "Neto", Goals: 1}}
	if !reflect.DeepEqual(got.TopScorers, wantScorers) {
		t.Fatalf("top scorers = %+v", got.TopScorers)
	}
	if len(got.RecordByOpponent) != 2 {
		t.Fatalf("record by opponent = %+v", got.RecordByOpponent)
	}
	spain, chile := got.RecordByOpponent[0], got.RecordByOpponent[1]
	if spain.Opponent != "Spain" || spain.Played != 2 || spain.Wins != 2 || spain.GoalsFor != 5 || spain.GoalsAgainst != 1 {
		t.Fatalf("vs Spain = %+v", spain)
	}
	if chile.Opponent != "Chile" || chile.Losses != 1 || chile.GoalsAgainst != 1 {
		t.Fatalf("vs Chile = %+v", chile)
	}
}

func TestRecentFormKeepsLatestFive(t *testing.T) {
	team := &models.Team{ID: 1, Country: "Brazil"}
	var matches []*models.Match
	// L W W W W W L, oldest first
	results := []bool{false, true, true, true, true, true, false}
	for i, won := range results {
		if won {
			matches = append(matches, scored(i+1, 1, 2, 1, 0))
		} else {
			matches = append(matches, scored(i+1, 1, 2, 0, 1))
		}
	}
	got := buildTeamAnalytics(team, matches, nil).Summary.RecentForm
	if !reflect.DeepEqual(got, []string{"L", "W", "W", "W", "W"}) {
		t.Fatalf("recent form = %v", got)
	}
}

func TestTeamAnalyticsServiceAndDashboard(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	teams := h.register(t, 8)
	if _, err := h.bracket.CreateTournament(ctx); err != nil {
		t.Fatalf("CreateTournament: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := h.matches.SimulateRound(ctx); err != nil {
			t.Fatalf("SimulateRound: %v", err)
		}
	}

	a, err := h.analytics.TeamAnalytics(ctx, "bRaZiL")
	if err != nil {
		t.Fatalf("TeamAnalytics: %v", err)
	}
	if a.Team.ID != teams[0].ID || a.Summary.Played < 1 || a.Summary.Played > 3 {
		t.Fatalf("analytics = %+v", a.Summary)
	}
	if a.Summary.Wins+a.Summary.Losses != a.Summary.Played {
		t.Fatalf("wins + losses != played: %+v", a.Summary)
	}
	if _, err := h.analytics.TeamAnalytics(ctx, "Atlantis"); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("unknown country err = %v", err)
	}

	stats, err := h.dashboard.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TeamsTotal != 8 || stats.MatchesTotal != 7 || stats.MatchesCompleted != 7 || stats.Stage != models.StageCompleted {
		t.Fatalf("stats = %+v", stats)
	}

	standings, err := h.analytics.Standings(ctx)
	if err != nil {
		t.Fatalf("Standings: %v", err)
	}
	total := 0
	for _, row := range standings {
		total += row.Goals
	}
	if total != stats.GoalsTotal {
		t.Fatalf("standings goals = %d, dashboard goals = %d", total, stats.GoalsTotal)
	}
}
