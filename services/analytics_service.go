package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/cup-simulator/models"
	"github.com/Dosada05/cup-simulator/repositories"
	"golang.org/x/sync/errgroup"
)

// RecentFormLength is how many latest results recent_form carries.
const RecentFormLength = 5

type AnalyticsService interface {
	TeamAnalytics(ctx context.Context, country string) (*models.TeamAnalytics, error)
	Standings(ctx context.Context) ([]models.ScorerStanding, error)
}

type analyticsService struct {
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
}

func NewAnalyticsService(teamRepo repositories.TeamRepository, matchRepo repositories.MatchRepository) AnalyticsService {
	return &analyticsService{teamRepo: teamRepo, matchRepo: matchRepo}
}

func (s *analyticsService) TeamAnalytics(ctx context.Context, country string) (*models.TeamAnalytics, error) {
	var (
		team    *models.Team
		teams   []*models.Team
		matches []*models.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.teamRepo.GetByCountry(gctx, country)
		if err != nil {
			return mapTeamRepoError(err)
		}
		team = t
		return nil
	})
	g.Go(func() error {
		list, err := s.teamRepo.List(gctx)
		teams = list
		return err
	})
	g.Go(func() error {
		list, err := s.completedMatches(gctx)
		matches = list
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buildTeamAnalytics(team, matches, teamIndex(teams)), nil
}

func (s *analyticsService) Standings(ctx context.Context) ([]models.ScorerStanding, error) {
	matches, err := s.completedMatches(ctx)
	if err != nil {
		return nil, err
	}
	return buildStandings(matches), nil
}

func (s *analyticsService) completedMatches(ctx context.Context) ([]*models.Match, error) {
	status := models.MatchStatusCompleted
	matches, err := s.matchRepo.List(ctx, nil, repositories.MatchFilter{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("failed to list completed matches: %w", err)
	}
	return matches, nil
}

// buildTeamAnalytics expects matches ordered by creation (id asc).
func buildTeamAnalytics(team *models.Team, matches []*models.Match, teams map[int]*models.Team) *models.TeamAnalytics {
	out := &models.TeamAnalytics{
		Team:             team,
		TopScorers:       []models.TeamScorer{},
		RecordByOpponent: []models.OpponentRecord{},
	}
	form := make([]string, 0)
	byOpponent := make(map[int]*models.OpponentRecord)
	scorers := make(map[string]int)

	for _, m := range matches {
		if !m.IsCompleted() || !m.Involves(team.ID) {
			continue
		}
		scored, conceded := m.Goals(team.ID)
		won := m.Result.WinnerID == team.ID

		out.Summary.Played++
		out.Summary.GoalsFor += scored
		out.Summary.GoalsAgainst += conceded
		if won {
			out.Summary.Wins++
			form = append(form, "W")
		} else {
			out.Summary.Losses++
			form = append(form, "L")
		}

		oppID := m.Opponent(team.ID)
		rec, ok := byOpponent[oppID]
		if !ok {
			rec = &models.OpponentRecord{OpponentID: oppID, Opponent: "Unknown"}
			if opp := teams[oppID]; opp != nil {
				rec.Opponent = opp.Country
			}
			byOpponent[oppID] = rec
		}
		rec.Played++
		rec.GoalsFor += scored
		rec.GoalsAgainst += conceded
		if won {
			rec.Wins++
		} else {
			rec.Losses++
		}

		for _, g := range m.Result.GoalScorers {
			if g.TeamID == team.ID {
				scorers[g.Player]++
			}
		}
	}
	out.Summary.GoalDifference = out.Summary.GoalsFor - out.Summary.GoalsAgainst

	// последние N результатов, самый свежий первым
	if len(form) > RecentFormLength {
		form = form[len(form)-RecentFormLength:]
	}
	recent := make([]string, len(form))
	for i, r := range form {
		recent[len(form)-1-i] = r
	}
	out.Summary.RecentForm = recent

	for player, goals := range scorers {
		out.TopScorers = append(out.TopScorers, models.TeamScorer{Player: player, Goals: goals})
	}
	sort.Slice(out.TopScorers, func(i, j int) bool {
		a, b := out.TopScorers[i], out.TopScorers[j]
		if a.Goals != b.Goals {
			return a.Goals > b.Goals
		}
		return a.Player < b.Player
	})

	for _, rec := range byOpponent {
		out.RecordByOpponent = append(out.RecordByOpponent, *rec)
	}
	sort.Slice(out.RecordByOpponent, func(i, j int) bool {
		a, b := out.RecordByOpponent[i], out.RecordByOpponent[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Opponent < b.Opponent
	})
	return out
}

type scorerKey struct {
	player string
	teamID int
}

// buildStandings ranks scorers by goals desc, then matches asc, then name asc.
// Matches counts the distinct completed matches in which the player scored.
func buildStandings(matches []*models.Match) []models.ScorerStanding {
	rows := make(map[scorerKey]*models.ScorerStanding)
	seen := make(map[scorerKey]map[int]struct{})

	for _, m := range matches {
		if !m.IsCompleted() {
			continue
		}
		for _, g := range m.Result.GoalScorers {
			key := scorerKey{player: g.Player, teamID: g.TeamID}
			row, ok := rows[key]
			if !ok {
				row = &models.ScorerStanding{Player: g.Player, TeamID: g.TeamID, Team: g.Team}
				rows[key] = row
				seen[key] = make(map[int]struct{})
			}
			row.Goals++
			if _, counted := seen[key][m.ID]; !counted {
				seen[key][m.ID] = struct{}{}
				row.Matches++
			}
		}
	}

	standings := make([]models.ScorerStanding, 0, len(rows))
	for _, row := range rows {
		standings = append(standings, *row)
	}
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Goals != b.Goals {
			return a.Goals > b.Goals
		}
		if a.Matches != b.Matches {
			return a.Matches < b.Matches
		}
		if a.Player != b.Player {
			return a.Player < b.Player
		}
		return a.Team < b.Team
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}
