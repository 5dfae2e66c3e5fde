package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/cup-simulator/brackets"
	"github.com/Dosada05/cup-simulator/messaging"
	"github.com/Dosada05/cup-simulator/models"
	"github.com/Dosada05/cup-simulator/repositories"
	"github.com/google/uuid"
)

// BracketService владеет состоянием сетки: создание четвертьфиналов,
// запись результатов с переходом между раундами и сброс.
type BracketService interface {
	CreateTournament(ctx context.Context) ([]*models.Match, error)
	RecordResult(ctx context.Context, matchID int, result *models.MatchResult) (*RoundUpdate, error)
	// ResetTournament deletes every match and returns the report keys they carried.
	ResetTournament(ctx context.Context) ([]string, error)
	Stage(ctx context.Context) (models.TournamentStage, error)
	GetTournament(ctx context.Context) (*models.Tournament, error)
	// WithRegistrationOpen runs fn while no bracket is active, serialized with bracket changes.
	WithRegistrationOpen(ctx context.Context, fn func() error) error
}

// RoundUpdate describes what a recorded result changed.
type RoundUpdate struct {
	Match     *models.Match          `json:"match"`
	NextRound []*models.Match        `json:"next_round,omitempty"`
	Stage     models.TournamentStage `json:"stage"`
}

type bracketService struct {
	mu        sync.Mutex
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
	txRunner  repositories.TxRunner
	generator brackets.BracketGenerator
	events    messaging.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewBracketService(
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	txRunner repositories.TxRunner,
	generator brackets.BracketGenerator,
	events messaging.Publisher,
	logger *slog.Logger,
) BracketService {
	if events == nil {
		events = messaging.Nop()
	}
	return &bracketService{
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		txRunner:  txRunner,
		generator: generator,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// События публикуются только после снятия s.mu.

func (s *bracketService) CreateTournament(ctx context.Context) ([]*models.Match, error) {
	runID, created, err := s.createTournament(ctx)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, messaging.NewEvent(messaging.EventTournamentCreated, runID, created))
	return created, nil
}

func (s *bracketService) createTournament(ctx context.Context) (string, []*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, current, err := s.currentRun(ctx, nil)
	if err != nil {
		return "", nil, err
	}
	if brackets.Stage(current).IsActive() {
		return "", nil, ErrBracketExists
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if len(teams) != brackets.BracketSize {
		return "", nil, fmt.Errorf("%w: %d registered", ErrInsufficientTeams, len(teams))
	}

	teamIDs := make([]int, len(teams))
	teamsByID := make(map[int]*models.Team, len(teams))
	for i, t := range teams {
		teamIDs[i] = t.ID
		teamsByID[t.ID] = t
	}

	plan, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{TeamIDs: teamIDs})
	if err != nil {
		if errors.Is(err, brackets.ErrWrongTeamCount) {
			return "", nil, ErrInsufficientTeams
		}
		return "", nil, fmt.Errorf("failed to generate bracket: %w", err)
	}

	runID := uuid.NewString()
	created := make([]*models.Match, 0, models.RoundQuarterfinal.MatchCount())
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, bm := range plan {
			if bm.IsPlaceholder {
				continue
			}
			match, createErr := s.createMatch(ctx, exec, runID, bm)
			if createErr != nil {
				return createErr
			}
			created = append(created, match)
		}
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to create quarterfinals: %w", err)
	}

	for _, m := range created {
		m.Team1, m.Team2 = teamsByID[m.Team1ID], teamsByID[m.Team2ID]
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.String("run_id", runID),
		slog.String("format", s.generator.GetName()),
		slog.Int("matches", len(created)),
	)
	return runID, created, nil
}

func (s *bracketService) RecordResult(ctx context.Context, matchID int, result *models.MatchResult) (*RoundUpdate, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: result is required", ErrInvalidMatch)
	}

	update, err := s.recordResult(ctx, matchID, result)
	if err != nil {
		return nil, err
	}

	runID := update.Match.RunID
	s.logger.InfoContext(ctx, "match result recorded",
		slog.Int("match_id", matchID),
		slog.String("bracket_uid", update.Match.BracketUID),
		slog.Int("winner_id", result.WinnerID),
		slog.String("stage", string(update.Stage)),
	)
	s.publish(ctx, messaging.NewEvent(messaging.EventMatchCompleted, runID, update.Match))
	if len(update.NextRound) > 0 {
		s.publish(ctx, messaging.NewEvent(messaging.EventRoundCreated, runID, update.NextRound))
	}
	if update.Stage == models.StageCompleted {
		s.publish(ctx, messaging.NewEvent(messaging.EventTournamentCompleted, runID, map[string]int{"champion_id": result.WinnerID}))
	}
	return update, nil
}

func (s *bracketService) recordResult(ctx context.Context, matchID int, result *models.MatchResult) (*RoundUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	update := &RoundUpdate{}
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			return mapMatchRepoError(err)
		}
		if match.Status == models.MatchStatusCompleted {
			return ErrMatchAlreadyCompleted
		}
		if err := validateResult(match, result); err != nil {
			return err
		}

		completedAt := s.now().UTC()
		if err := s.matchRepo.Complete(ctx, exec, matchID, result, completedAt); err != nil {
			return mapMatchRepoError(err)
		}
		match.Status = models.MatchStatusCompleted
		match.Result = result
		match.CompletedAt = &completedAt
		update.Match = match

		runMatches, err := s.runMatches(ctx, exec, match.RunID)
		if err != nil {
			return err
		}

		// проверка и создание следующего раунда выполняются под s.mu
		if match.Round != models.RoundFinal && brackets.RoundComplete(match.Round, runMatches) {
			next, err := brackets.NextRound(match.Round, runMatches)
			if err != nil {
				return fmt.Errorf("failed to pair next round: %w", err)
			}
			for _, bm := range next {
				created, err := s.createMatch(ctx, exec, match.RunID, bm)
				if err != nil {
					return err
				}
				update.NextRound = append(update.NextRound, created)
				runMatches = append(runMatches, created)
			}
		}
		update.Stage = brackets.Stage(runMatches)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return update, nil
}

func (s *bracketService) ResetTournament(ctx context.Context) ([]string, error) {
	deleted, reportKeys, err := s.resetTournament(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament reset", slog.Int64("matches_deleted", deleted))
	s.publish(ctx, messaging.NewEvent(messaging.EventTournamentReset, "", map[string]int64{"matches_deleted": deleted}))
	return reportKeys, nil
}

func (s *bracketService) resetTournament(ctx context.Context) (int64, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		deleted    int64
		reportKeys []string
	)
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		matches, err := s.matchRepo.List(ctx, exec, repositories.MatchFilter{})
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}
		for _, m := range matches {
			if m.ReportKey != nil && *m.ReportKey != "" {
				reportKeys = append(reportKeys, *m.ReportKey)
			}
		}
		deleted, err = s.matchRepo.DeleteAll(ctx, exec)
		return err
	})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to reset tournament: %w", err)
	}
	return deleted, reportKeys, nil
}

func (s *bracketService) Stage(ctx context.Context) (models.TournamentStage, error) {
	_, current, err := s.currentRun(ctx, nil)
	if err != nil {
		return "", err
	}
	return brackets.Stage(current), nil
}

func (s *bracketService) GetTournament(ctx context.Context) (*models.Tournament, error) {
	runID, current, err := s.currentRun(ctx, nil)
	if err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	attachTeams(current, teamIndex(teams))

	view := &models.Tournament{
		RunID:         runID,
		Stage:         brackets.Stage(current),
		Quarterfinals: []models.Match{},
		Semifinals:    []models.Match{},
		Final:         []models.Match{},
	}
	for _, m := range current {
		switch m.Round {
		case models.RoundQuarterfinal:
			view.Quarterfinals = append(view.Quarterfinals, *m)
		case models.RoundSemifinal:
			view.Semifinals = append(view.Semifinals, *m)
		case models.RoundFinal:
			view.Final = append(view.Final, *m)
		}
	}
	if id, ok := brackets.ChampionID(current); ok {
		view.ChampionID = &id
		for _, t := range teams {
			if t.ID == id {
				view.Champion = t
			}
		}
	}
	return view, nil
}

func (s *bracketService) WithRegistrationOpen(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, current, err := s.currentRun(ctx, nil)
	if err != nil {
		return err
	}
	if brackets.Stage(current).IsActive() {
		return ErrRegistrationClosed
	}
	return fn()
}

// currentRun returns the run of the most recently created match and its matches.
// Older runs stay in storage for the golden boot until a reset.
func (s *bracketService) currentRun(ctx context.Context, exec repositories.SQLExecutor) (string, []*models.Match, error) {
	all, err := s.matchRepo.List(ctx, exec, repositories.MatchFilter{})
	if err != nil {
		return "", nil, fmt.Errorf("failed to list matches: %w", err)
	}
	if len(all) == 0 {
		return "", nil, nil
	}
	runID := all[len(all)-1].RunID
	return runID, filterRun(all, runID), nil
}

func (s *bracketService) runMatches(ctx context.Context, exec repositories.SQLExecutor, runID string) ([]*models.Match, error) {
	all, err := s.matchRepo.List(ctx, exec, repositories.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return filterRun(all, runID), nil
}

func (s *bracketService) createMatch(ctx context.Context, exec repositories.SQLExecutor, runID string, bm *brackets.BracketMatch) (*models.Match, error) {
	match := &models.Match{
		RunID:      runID,
		Round:      bm.Round,
		Slot:       bm.Slot,
		BracketUID: bm.UID,
		Team1ID:    *bm.Team1ID,
		Team2ID:    *bm.Team2ID,
		Status:     models.MatchStatusScheduled,
	}
	if err := s.matchRepo.Create(ctx, exec, match); err != nil {
		if errors.Is(err, repositories.ErrMatchSlotConflict) {
			return nil, fmt.Errorf("%w: %s already exists", ErrStateConflict, bm.UID)
		}
		if errors.Is(err, repositories.ErrMatchTeamInvalid) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMatch, bm.UID)
		}
		return nil, fmt.Errorf("failed to create match %s: %w", bm.UID, err)
	}
	return match, nil
}

func (s *bracketService) publish(ctx context.Context, event messaging.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", slog.String("type", event.Type), slog.Any("error", err))
	}
}

func validateResult(match *models.Match, result *models.MatchResult) error {
	if !match.Involves(result.WinnerID) {
		return fmt.Errorf("%w: winner %d, match %d", ErrInvalidResultForMatch, result.WinnerID, match.ID)
	}
	winnerGoals, loserGoals := result.Team1Goals, result.Team2Goals
	if result.WinnerID == match.Team2ID {
		winnerGoals, loserGoals = loserGoals, winnerGoals
	}
	switch result.DecidedBy {
	case models.DecidedByPenalties:
		if winnerGoals != loserGoals || result.PenaltyScore == nil {
			return fmt.Errorf("%w: penalties need a level score and a shootout result", ErrUnresolvedResult)
		}
		team1Kicks, team2Kicks, ok := parsePenaltyScore(*result.PenaltyScore)
		if !ok || team1Kicks == team2Kicks {
			return fmt.Errorf("%w: bad penalty score %q", ErrUnresolvedResult, *result.PenaltyScore)
		}
		if (team1Kicks > team2Kicks) != (result.WinnerID == match.Team1ID) {
			return fmt.Errorf("%w: penalty score %q does not match winner %d", ErrUnresolvedResult, *result.PenaltyScore, result.WinnerID)
		}
	case models.DecidedByRegulation, models.DecidedByExtraTime:
		if winnerGoals <= loserGoals {
			return fmt.Errorf("%w: winner scored %d against %d", ErrUnresolvedResult, winnerGoals, loserGoals)
		}
	default:
		return fmt.Errorf("%w: unknown decided_by %q", ErrInvalidMatch, result.DecidedBy)
	}
	return nil
}

// parsePenaltyScore reads "team1-team2" shootout goals.
func parsePenaltyScore(raw string) (int, int, bool) {
	left, right, found := strings.Cut(strings.TrimSpace(raw), "-")
	if !found {
		return 0, 0, false
	}
	team1, err1 := strconv.Atoi(left)
	team2, err2 := strconv.Atoi(right)
	if err1 != nil || err2 != nil || team1 < 0 || team2 < 0 {
		return 0, 0, false
	}
	return team1, team2, true
}

func filterRun(matches []*models.Match, runID string) []*models.Match {
	out := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.RunID == runID {
			out = append(out, m)
		}
	}
	return out
}

func teamIndex(teams []*models.Team) map[int]*models.Team {
	idx := make(map[int]*models.Team, len(teams))
	for _, t := range teams {
		idx[t.ID] = t
	}
	return idx
}

func attachTeams(matches []*models.Match, teams map[int]*models.Team) {
	for _, m := range matches {
		m.Team1 = teams[m.Team1ID]
		m.Team2 = teams[m.Team2ID]
	}
}

func mapMatchRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchNotScheduled):
		return ErrMatchAlreadyCompleted
	}
	return err
}
