package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/cup-simulator/models"
	"github.com/Dosada05/cup-simulator/narrative"
	"github.com/Dosada05/cup-simulator/repositories"
	"github.com/Dosada05/cup-simulator/simulation"
	"golang.org/x/sync/errgroup"
)

const (
	PreviewSourceGenerated = "generated"
	PreviewSourceFallback  = "fallback"
	PreviewSourceSummary   = "summary"

	defaultNarrativeTimeout = 8 * time.Second
	roundSimulationWorkers  = 4
)

var errNoNarrator = fmt.Errorf("%w: no narrator configured", ErrExternalService)

// MatchSimulator is satisfied by *simulation.Engine.
type MatchSimulator interface {
	Simulate(ctx context.Context, team1, team2 *models.Team, mode models.SimulationMode) (*models.MatchResult, error)
}

// ReportArchiver stores completed match reports. Satisfied by *storage.ReportArchiver.
type ReportArchiver interface {
	Archive(ctx context.Context, match *models.Match) (string, error)
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

type MatchService interface {
	ListMatches(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error)
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	SimulateMatch(ctx context.Context, id int, mode models.SimulationMode) (*RoundUpdate, error)
	SimulateRound(ctx context.Context) ([]*RoundUpdate, error)
	Preview(ctx context.Context, id int, regenerate bool) (*MatchPreview, error)
	PlayerAnalysis(ctx context.Context, id int, playerName string) (*PlayerAnalysis, error)
	ResetTournament(ctx context.Context) error
}

type MatchPreview struct {
	MatchID     int       `json:"match_id"`
	Preview     string    `json:"preview"`
	Source      string    `json:"source"`
	Cached      bool      `json:"cached"`
	GeneratedAt time.Time `json:"generated_at"`
}

type PlayerAnalysis struct {
	MatchID  int           `json:"match_id"`
	Player   models.Player `json:"player"`
	TeamID   int           `json:"team_id"`
	Team     string        `json:"team"`
	Goals    int           `json:"goals"`
	Minutes  []int         `json:"minutes"`
	Analysis string        `json:"analysis"`
	Source   string        `json:"source"`
}

type MatchServiceOption func(*matchService)

// WithNarrator sets the text producer tried before the static fallback.
func WithNarrator(n narrative.Narrator, timeout time.Duration) MatchServiceOption {
	return func(s *matchService) {
		s.narrator = n
		if timeout > 0 {
			s.narrativeTimeout = timeout
		}
	}
}

// WithReportArchiver enables archiving of full-mode match reports.
func WithReportArchiver(a ReportArchiver) MatchServiceOption {
	return func(s *matchService) {
		s.archiver = a
	}
}

type matchService struct {
	matchRepo        repositories.MatchRepository
	teamRepo         repositories.TeamRepository
	bracket          BracketService
	engine           MatchSimulator
	narrator         narrative.Narrator
	fallback         narrative.Narrator
	narrativeTimeout time.Duration
	archiver         ReportArchiver
	logger           *slog.Logger

	previewMu sync.Mutex
	previews  map[int]MatchPreview
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	bracket BracketService,
	engine MatchSimulator,
	logger *slog.Logger,
	opts ...MatchServiceOption,
) MatchService {
	s := &matchService{
		matchRepo:        matchRepo,
		teamRepo:         teamRepo,
		bracket:          bracket,
		engine:           engine,
		fallback:         narrative.NewFallback(),
		narrativeTimeout: defaultNarrativeTimeout,
		logger:           logger,
		previews:         make(map[int]MatchPreview),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *matchService) ListMatches(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error) {
	matches, err := s.matchRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	attachTeams(matches, teamIndex(teams))
	for _, m := range matches {
		s.populateReportURL(m)
	}
	return matches, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	if err := s.loadTeams(ctx, match); err != nil {
		return nil, err
	}
	s.populateReportURL(match)
	return match, nil
}

func (s *matchService) SimulateMatch(ctx context.Context, id int, mode models.SimulationMode) (*RoundUpdate, error) {
	if mode != models.ModeQuick && mode != models.ModeFull {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSimulationMode, mode)
	}

	match, err := s.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}

	result, err := s.engine.Simulate(ctx, match.Team1, match.Team2, mode)
	if err != nil {
		if errors.Is(err, simulation.ErrInvalidPairing) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMatch, err)
		}
		if errors.Is(err, simulation.ErrUnknownMode) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSimulationMode, err)
		}
		return nil, fmt.Errorf("failed to simulate match %d: %w", id, err)
	}

	update, err := s.bracket.RecordResult(ctx, id, result)
	if err != nil {
		return nil, err
	}
	update.Match.Team1, update.Match.Team2 = match.Team1, match.Team2

	if mode == models.ModeFull {
		s.archive(ctx, update.Match)
	}
	if len(update.NextRound) > 0 {
		teams, err := s.teamRepo.List(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load teams for next round", slog.Any("error", err))
		} else {
			attachTeams(update.NextRound, teamIndex(teams))
		}
	}
	return update, nil
}

// SimulateRound plays every scheduled match of the current round in quick mode.
// The bracket advances once, when the last of them is recorded.
func (s *matchService) SimulateRound(ctx context.Context) ([]*RoundUpdate, error) {
	status := models.MatchStatusScheduled
	scheduled, err := s.matchRepo.List(ctx, nil, repositories.MatchFilter{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled matches: %w", err)
	}
	if len(scheduled) == 0 {
		return nil, ErrRoundNotReady
	}

	updates := make([]*RoundUpdate, len(scheduled))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(roundSimulationWorkers)
	for i, m := range scheduled {
		g.Go(func() error {
			update, err := s.SimulateMatch(gctx, m.ID, models.ModeQuick)
			if err != nil {
				return fmt.Errorf("match %d: %w", m.ID, err)
			}
			updates[i] = update
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "round simulated", slog.Int("matches", len(updates)))
	return updates, nil
}

func (s *matchService) Preview(ctx context.Context, id int, regenerate bool) (*MatchPreview, error) {
	if !regenerate {
		s.previewMu.Lock()
		cached, ok := s.previews[id]
		s.previewMu.Unlock()
		if ok {
			cached.Cached = true
			return &cached, nil
		}
	}

	match, err := s.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	mc := matchContext(match)

	preview := MatchPreview{MatchID: id, Source: PreviewSourceGenerated}
	preview.Preview, err = s.generate(ctx, func(ctx context.Context, n narrative.Narrator) (string, error) {
		return n.GeneratePreview(ctx, mc)
	})
	if err != nil {
		if !errors.Is(err, errNoNarrator) {
			s.logger.WarnContext(ctx, "preview generation failed, using fallback", slog.Int("match_id", id), slog.Any("error", err))
		}
		preview.Preview, _ = s.fallback.GeneratePreview(ctx, mc)
		preview.Source = PreviewSourceFallback
	}
	preview.GeneratedAt = time.Now().UTC()

	s.previewMu.Lock()
	s.previews[id] = preview
	s.previewMu.Unlock()
	return &preview, nil
}

func (s *matchService) PlayerAnalysis(ctx context.Context, id int, playerName string) (*PlayerAnalysis, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, ErrPlayerNameRequired
	}
	match, err := s.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	analysis := &PlayerAnalysis{MatchID: id, Minutes: []int{}}
	found := false
	for _, team := range []*models.Team{match.Team1, match.Team2} {
		if team == nil {
			continue
		}
		if p, ok := team.PlayerByName(playerName); ok {
			analysis.Player, analysis.TeamID, analysis.Team = p, team.ID, team.Country
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, playerName)
	}

	if match.Result != nil {
		for _, g := range match.Result.GoalScorers {
			if g.Player == playerName && g.TeamID == analysis.TeamID {
				analysis.Goals++
				analysis.Minutes = append(analysis.Minutes, g.Minute)
			}
		}
	}
	if analysis.Goals == 0 {
		analysis.Analysis = fmt.Sprintf("%s did not score in this match.", playerName)
		analysis.Source = PreviewSourceSummary
		return analysis, nil
	}

	mc := matchContext(match)
	analysis.Source = PreviewSourceGenerated
	analysis.Analysis, err = s.generate(ctx, func(ctx context.Context, n narrative.Narrator) (string, error) {
		return n.AnalyzePlayer(ctx, mc, playerName)
	})
	if err != nil {
		if !errors.Is(err, errNoNarrator) {
			s.logger.WarnContext(ctx, "player analysis failed, using fallback",
				slog.Int("match_id", id), slog.String("player", playerName), slog.Any("error", err))
		}
		analysis.Analysis, _ = s.fallback.AnalyzePlayer(ctx, mc, playerName)
		analysis.Source = PreviewSourceFallback
	}
	return analysis, nil
}

// ResetTournament clears the bracket, then drops archived reports and cached previews.
func (s *matchService) ResetTournament(ctx context.Context) error {
	reportKeys, err := s.bracket.ResetTournament(ctx)
	if err != nil {
		return err
	}

	s.previewMu.Lock()
	s.previews = make(map[int]MatchPreview)
	s.previewMu.Unlock()

	if s.archiver == nil {
		return nil
	}
	for _, key := range reportKeys {
		if err := s.archiver.Remove(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "failed to remove match report", slog.String("key", key), slog.Any("error", err))
		}
	}
	return nil
}

// generate asks the configured narrator with a bounded timeout.
func (s *matchService) generate(ctx context.Context, fn func(context.Context, narrative.Narrator) (string, error)) (string, error) {
	if s.narrator == nil {
		return "", errNoNarrator
	}
	nctx, cancel := context.WithTimeout(ctx, s.narrativeTimeout)
	defer cancel()

	text, err := fn(nctx, s.narrator)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", ErrExternalService)
	}
	return text, nil
}

func (s *matchService) archive(ctx context.Context, match *models.Match) {
	if s.archiver == nil {
		return
	}
	key, err := s.archiver.Archive(ctx, match)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to archive match report", slog.Int("match_id", match.ID), slog.Any("error", err))
		return
	}
	if err := s.matchRepo.SetReportKey(ctx, match.ID, key); err != nil {
		s.logger.WarnContext(ctx, "failed to store report key", slog.Int("match_id", match.ID), slog.Any("error", err))
		// матч мог быть удалён сбросом турнира
		if rmErr := s.archiver.Remove(ctx, key); rmErr != nil {
			s.logger.WarnContext(ctx, "failed to remove match report", slog.String("key", key), slog.Any("error", rmErr))
		}
		return
	}
	match.ReportKey = &key
	s.populateReportURL(match)
}

func (s *matchService) populateReportURL(match *models.Match) {
	if s.archiver == nil || match.ReportKey == nil || *match.ReportKey == "" {
		return
	}
	if url := s.archiver.URL(*match.ReportKey); url != "" {
		match.ReportURL = &url
	}
}

// loadTeams fetches both sides of a match concurrently.
func (s *matchService) loadTeams(ctx context.Context, match *models.Match) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		team, err := s.teamRepo.GetByID(gctx, match.Team1ID)
		if err != nil {
			return mapTeamRepoError(err)
		}
		match.Team1 = team
		return nil
	})
	g.Go(func() error {
		team, err := s.teamRepo.GetByID(gctx, match.Team2ID)
		if err != nil {
			return mapTeamRepoError(err)
		}
		match.Team2 = team
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return fmt.Errorf("%w: match %d references a missing team", ErrInvalidMatch, match.ID)
		}
		return fmt.Errorf("failed to load teams for match %d: %w", match.ID, err)
	}
	return nil
}

func matchContext(m *models.Match) narrative.MatchContext {
	return narrative.MatchContext{
		MatchID: m.ID,
		Round:   m.Round,
		Team1:   m.Team1,
		Team2:   m.Team2,
		Result:  m.Result,
	}
}
