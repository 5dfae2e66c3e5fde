package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/cup-simulator/models"
)

// MemoryStore keeps teams and matches in process memory. It backs the
// service tests and the server when no DATABASE_URL is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	teams    map[int]*models.Team
	matches  map[int]*models.Match
	teamSeq  int
	matchSeq int
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		teams:   make(map[int]*models.Team),
		matches: make(map[int]*models.Match),
		now:     time.Now,
	}
}

func (s *MemoryStore) Teams() TeamRepository { return memoryTeams{s} }

func (s *MemoryStore) Matches() MatchRepository { return memoryMatches{s} }

// RunInTx serializes transactions and restores the match table when fn fails.
// Teams are not written inside transactions.
func (s *MemoryStore) RunInTx(ctx context.Context, fn func(exec SQLExecutor) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := make(map[int]*models.Match, len(s.matches))
	for id, m := range s.matches {
		snapshot[id] = m
	}
	seq := s.matchSeq
	s.mu.RUnlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.matches = snapshot
		s.matchSeq = seq
		s.mu.Unlock()
		return err
	}
	return nil
}

type memoryTeams struct{ s *MemoryStore }

func (r memoryTeams) Create(_ context.Context, team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.teams {
		if strings.EqualFold(existing.Country, team.Country) {
			return ErrTeamCountryConflict
		}
	}
	r.s.teamSeq++
	team.ID = r.s.teamSeq
	team.CreatedAt = r.s.now().UTC()
	r.s.teams[team.ID] = copyTeam(team)
	return nil
}

func (r memoryTeams) GetByID(_ context.Context, id int) (*models.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	team, ok := r.s.teams[id]
	if !ok {
		return nil, ErrTeamNotFound
	}
	return copyTeam(team), nil
}

func (r memoryTeams) GetByCountry(_ context.Context, country string) (*models.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, team := range r.s.teams {
		if strings.EqualFold(team.Country, country) {
			return copyTeam(team), nil
		}
	}
	return nil, ErrTeamNotFound
}

func (r memoryTeams) List(_ context.Context) ([]*models.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	teams := make([]*models.Team, 0, len(r.s.teams))
	for _, team := range r.s.teams {
		teams = append(teams, copyTeam(team))
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (r memoryTeams) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.teams), nil
}

type memoryMatches struct{ s *MemoryStore }

func (r memoryMatches) Create(_ context.Context, _ SQLExecutor, match *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if match.Team1ID == match.Team2ID {
		return ErrMatchTeamInvalid
	}
	if _, ok := r.s.teams[match.Team1ID]; !ok {
		return ErrMatchTeamInvalid
	}
	if _, ok := r.s.teams[match.Team2ID]; !ok {
		return ErrMatchTeamInvalid
	}
	for _, existing := range r.s.matches {
		if existing.RunID == match.RunID && existing.Round == match.Round && existing.Slot == match.Slot {
			return ErrMatchSlotConflict
		}
	}

	r.s.matchSeq++
	match.ID = r.s.matchSeq
	match.CreatedAt = r.s.now().UTC()
	if match.Status == "" {
		match.Status = models.MatchStatusScheduled
	}
	r.s.matches[match.ID] = copyMatch(match)
	return nil
}

func (r memoryMatches) GetByID(_ context.Context, _ SQLExecutor, id int) (*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	match, ok := r.s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return copyMatch(match), nil
}

func (r memoryMatches) List(_ context.Context, _ SQLExecutor, filter MatchFilter) ([]*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := make([]*models.Match, 0, len(r.s.matches))
	for _, m := range r.s.matches {
		if filter.Round != nil && m.Round != *filter.Round {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if filter.TeamID != nil && !m.Involves(*filter.TeamID) {
			continue
		}
		matches = append(matches, copyMatch(m))
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (r memoryMatches) Complete(_ context.Context, _ SQLExecutor, id int, result *models.MatchResult, completedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	match, ok := r.s.matches[id]
	if !ok {
		return ErrMatchNotFound
	}
	if match.Status != models.MatchStatusScheduled {
		return ErrMatchNotScheduled
	}
	updated := copyMatch(match)
	res := *result
	updated.Result = &res
	updated.Status = models.MatchStatusCompleted
	at := completedAt
	updated.CompletedAt = &at
	r.s.matches[id] = updated
	return nil
}

func (r memoryMatches) SetReportKey(_ context.Context, id int, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	match, ok := r.s.matches[id]
	if !ok {
		return ErrMatchNotFound
	}
	updated := copyMatch(match)
	updated.ReportKey = &key
	r.s.matches[id] = updated
	return nil
}

func (r memoryMatches) DeleteAll(_ context.Context, _ SQLExecutor) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := int64(len(r.s.matches))
	r.s.matches = make(map[int]*models.Match)
	return n, nil
}

func (r memoryMatches) Count(_ context.Context, status *models.MatchStatus) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if status == nil {
		return len(r.s.matches), nil
	}
	n := 0
	for _, m := range r.s.matches {
		if m.Status == *status {
			n++
		}
	}
	return n, nil
}

func copyTeam(t *models.Team) *models.Team {
	c := *t
	c.Squad = append([]models.Player(nil), t.Squad...)
	return &c
}

// Stored matches are replaced, never mutated, so results can be shared.
func copyMatch(m *models.Match) *models.Match {
	c := *m
	c.Team1 = nil
	c.Team2 = nil
	c.ReportURL = nil
	return &c
}
