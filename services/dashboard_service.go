package services

import (
	"context"

	"github.com/Dosada05/cup-simulator/models"
	"github.com/Dosada05/cup-simulator/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
	bracket   BracketService
}

func NewDashboardService(
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	bracket BracketService,
) DashboardService {
	return &dashboardService{
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		bracket:   bracket,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	var (
		stats     models.DashboardStats
		completed []*models.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TeamsTotal, err = s.teamRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.MatchesTotal, err = s.matchRepo.Count(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		stats.Stage, err = s.bracket.Stage(gctx)
		return err
	})
	g.Go(func() (err error) {
		status := models.MatchStatusCompleted
		completed, err = s.matchRepo.List(gctx, nil, repositories.MatchFilter{Status: &status})
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}

	stats.MatchesCompleted = len(completed)
	for _, m := range completed {
		if m.Result == nil {
			continue
		}
		stats.GoalsTotal += m.Result.Team1Goals + m.Result.Team2Goals
		if m.Result.DecidedBy == models.DecidedByPenalties {
			stats.PenaltyShootouts++
		}
	}
	if standings := buildStandings(completed); len(standings) > 0 {
		top := standings[0]
		stats.TopScorer = &top
	}
	return stats, nil
}
