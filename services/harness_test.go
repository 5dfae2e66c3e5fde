package services

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Dosada05/cup-simulator/brackets"
	"github.com/Dosada05/cup-simulator/messaging"
	"github.com/Dosada05/cup-simulator/models"
	"github.com/Dosada05/cup-simulator/repositories"
	"github.com/Dosada05/cup-simulator/simulation"
	"github.com/Dosada05/cup-simulator/squad"
)

var countries = []string{
	"Brazil", "Argentina", "France", "Germany", "Spain",
	"England", "Italy", "Portugal", "Netherlands",
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededRand(seed uint64) func() *rand.Rand {
	var n atomic.Uint64
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(seed, n.Add(1)))
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type harness struct {
	store     *repositories.MemoryStore
	events    *recordingPublisher
	bracket   BracketService
	teams     TeamService
	matches   MatchService
	analytics AnalyticsService
	dashboard DashboardService
}

func newHarness(t *testing.T, opts ...MatchServiceOption) *harness {
	t.Helper()
	logger := discardLogger()
	store := repositories.NewMemoryStore()
	events := &recordingPublisher{}

	gen, err := squad.NewGenerator(squad.WithRand(seededRand(7)))
	if err != nil {
		t.Fatalf("squad generator: %v", err)
	}
	engine := simulation.NewEngine(logger, simulation.WithRand(seededRand(42)))

	bracket := NewBracketService(store.Teams(), store.Matches(), store, brackets.NewSingleEliminationGenerator(), events, logger)
	return &harness{
		store:     store,
		events:    events,
		bracket:   bracket,
		teams:     NewTeamService(store.Teams(), bracket, gen, events, logger),
		matches:   NewMatchService(store.Matches(), store.Teams(), bracket, engine, logger, opts...),
		analytics: NewAnalyticsService(store.Teams(), store.Matches()),
		dashboard: NewDashboardService(store.Teams(), store.Matches(), bracket),
	}
}

func (h *harness) register(t *testing.T, n int) []*models.Team {
	t.Helper()
	teams := make([]*models.Team, 0, n)
	for _, c := range countries[:n] {
		team, err := h.teams.Register(context.Background(), RegisterTeamInput{
			Country:        c,
			Manager:        c + " Manager",
			Representative: c + " Rep",
			Contact:        "federation@example.com",
		})
		if err != nil {
			t.Fatalf("register %s: %v", c, err)
		}
		teams = append(teams, team)
	}
	return teams
}

func (h *harness) matchCount(t *testing.T) int {
	t.Helper()
	n, err := h.store.Matches().Count(context.Background(), nil)
	if err != nil {
		t.Fatalf("count matches: %v", err)
	}
	return n
}

// regulationWin builds a 1-0 result for the given side.
func regulationWin(m *models.Match, team1Wins bool, scorer string) *models.MatchResult {
	res := &models.MatchResult{DecidedBy: models.DecidedByRegulation, Mode: models.ModeQuick}
	if team1Wins {
		res.Team1Goals, res.WinnerID = 1, m.Team1ID
		res.GoalScorers = []models.GoalScorer{{Player: scorer, TeamID: m.Team1ID, Minute: 30}}
	} else {
		res.Team2Goals, res.WinnerID = 1, m.Team2ID
		res.GoalScorers = []models.GoalScorer{{Player: scorer, TeamID: m.Team2ID, Minute: 30}}
	}
	return res
}
