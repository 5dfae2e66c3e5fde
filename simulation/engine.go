// Package simulation turns two team snapshots into a completed match result.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Dosada05/cup-simulator/models"
	"github.com/Dosada05/cup-simulator/narrative"
)

var (
	ErrInvalidPairing = errors.New("invalid team pairing")
	ErrUnknownMode    = errors.New("unknown simulation mode")
)

const DefaultCommentaryTimeout = 8 * time.Second

// Engine is stateless apart from its collaborators; every Simulate call draws
// from its own random source, so calls may run on separate goroutines.
type Engine struct {
	logger            *slog.Logger
	narrator          narrative.Narrator
	commentaryTimeout time.Duration
	newRand           func() *rand.Rand
}

type Option func(*Engine)

// WithNarrator sets the commentary source for full mode. A nil narrator keeps
// the static fallback.
func WithNarrator(n narrative.Narrator, timeout time.Duration) Option {
	return func(e *Engine) {
		e.narrator = n
		if timeout > 0 {
			e.commentaryTimeout = timeout
		}
	}
}

func WithRand(newRand func() *rand.Rand) Option {
	return func(e *Engine) {
		e.newRand = newRand
	}
}

func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		logger:            logger,
		commentaryTimeout: DefaultCommentaryTimeout,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.narrator == nil {
		e.narrator = narrative.NewFallback()
	}
	return e
}

// Simulate plays team1 against team2. Once the pairing is valid it always
// returns a complete result with a winner; commentary failures only drop commentary.
func (e *Engine) Simulate(ctx context.Context, team1, team2 *models.Team, mode models.SimulationMode) (*models.MatchResult, error) {
	if err := validatePairing(team1, team2); err != nil {
		return nil, err
	}
	if mode != models.ModeQuick && mode != models.ModeFull {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	out := decide(e.newRand(), team1, team2)
	result := buildResult(out, team1, team2, mode)
	if mode == models.ModeQuick {
		return result, nil
	}

	result.Events = renderTimeline(e.newRand(), out, team1, team2)
	result.Commentary = e.commentary(ctx, team1, team2, result)
	return result, nil
}

func (e *Engine) commentary(ctx context.Context, team1, team2 *models.Team, result *models.MatchResult) []string {
	cctx, cancel := context.WithTimeout(ctx, e.commentaryTimeout)
	defer cancel()

	mc := narrative.MatchContext{Team1: team1, Team2: team2, Result: result}
	lines, err := e.narrator.GenerateCommentary(cctx, mc, result.Events)
	if err != nil {
		e.logger.Warn("commentary generation failed, continuing without commentary",
			slog.String("team1", team1.Country),
			slog.String("team2", team2.Country),
			slog.Any("error", err))
		return nil
	}
	return lines
}

func validatePairing(team1, team2 *models.Team) error {
	switch {
	case team1 == nil || team2 == nil:
		return fmt.Errorf("%w: both teams are required", ErrInvalidPairing)
	case team1.ID == team2.ID:
		return fmt.Errorf("%w: team %d cannot play itself", ErrInvalidPairing, team1.ID)
	case len(team1.Squad) == 0 || len(team2.Squad) == 0:
		return fmt.Errorf("%w: both teams need a squad", ErrInvalidPairing)
	}
	return nil
}

func buildResult(out outcome, team1, team2 *models.Team, mode models.SimulationMode) *models.MatchResult {
	result := &models.MatchResult{
		Team1Goals:  out.goals1,
		Team2Goals:  out.goals2,
		WinnerID:    team1.ID,
		DecidedBy:   out.decidedBy,
		Mode:        mode,
		GoalScorers: make([]models.GoalScorer, 0, len(out.goals)),
	}
	if out.winner == side2 {
		result.WinnerID = team2.ID
	}
	if out.penalties != nil {
		ps := fmt.Sprintf("%d-%d", out.penalties[0], out.penalties[1])
		result.PenaltyScore = &ps
	}
	for _, g := range out.goals {
		t := teamFor(g.side, team1, team2)
		result.GoalScorers = append(result.GoalScorers, models.GoalScorer{
			Player: g.player.Name,
			TeamID: t.ID,
			Team:   t.Country,
			Minute: g.minute,
		})
	}
	return result
}

func teamFor(s side, team1, team2 *models.Team) *models.Team {
	if s == side1 {
		return team1
	}
	return team2
}
