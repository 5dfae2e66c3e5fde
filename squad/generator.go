// Package squad derives a team's strength rating and generated roster at registration time.
package squad

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Dosada05/cup-simulator/models"
	"gopkg.in/yaml.v3"
)

const (
	MinRating = 40
	MaxRating = 99

	// spread around a known nation's base rating
	knownJitter = 3
	// unknown nations land in [unknownBase, unknownBase+unknownSpan)
	unknownBase = 50
	unknownSpan = 31
	// each player is rated within playerSpread of the nation's base
	playerSpread = 6

	maxNameAttempts = 8
)

//go:embed pool.yaml
var poolYAML []byte

type formationLine struct {
	Position models.Position `yaml:"position"`
	Count    int             `yaml:"count"`
}

type namePool struct {
	Formation    []formationLine `yaml:"formation"`
	KnownRatings map[string]int  `yaml:"known_ratings"`
	FirstNames   []string        `yaml:"first_names"`
	LastNames    []string        `yaml:"last_names"`
}

// Generator builds ratings and squads. It holds no mutable state besides the pool,
// so a single instance is safe for concurrent use as long as newRand is.
type Generator struct {
	pool    namePool
	newRand func() *rand.Rand
}

type Option func(*Generator)

// WithRand overrides the random source factory, mostly for tests.
func WithRand(newRand func() *rand.Rand) Option {
	return func(g *Generator) {
		g.newRand = newRand
	}
}

func NewGenerator(opts ...Option) (*Generator, error) {
	var pool namePool
	if err := yaml.Unmarshal(poolYAML, &pool); err != nil {
		return nil, fmt.Errorf("failed to parse squad pool: %w", err)
	}
	if len(pool.FirstNames) == 0 || len(pool.LastNames) == 0 {
		return nil, fmt.Errorf("squad pool has no names")
	}
	size := 0
	for _, line := range pool.Formation {
		size += line.Count
	}
	if size == 0 {
		return nil, fmt.Errorf("squad pool formation is empty")
	}

	g := &Generator{
		pool: pool,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// SquadSize is the number of players Generate returns.
func (g *Generator) SquadSize() int {
	size := 0
	for _, line := range g.pool.Formation {
		size += line.Count
	}
	return size
}

// Generate returns a non-empty squad with unique player names, ordered by position
// line then shirt number, one captain, and the team rating: the squad average in
// [MinRating, MaxRating].
func (g *Generator) Generate(country string) (int, []models.Player) {
	rng := g.newRand()
	players := g.squad(rng, g.baseRating(rng, country))
	return TeamRating(players), players
}

// TeamRating averages the players' ratings, rounded and clamped.
func TeamRating(players []models.Player) int {
	if len(players) == 0 {
		return MinRating
	}
	total := 0
	for _, p := range players {
		total += p.Rating
	}
	return clampRating((2*total + len(players)) / (2 * len(players)))
}

func (g *Generator) baseRating(rng *rand.Rand, country string) int {
	key := strings.ToLower(strings.TrimSpace(country))
	var r int
	if base, ok := g.pool.KnownRatings[key]; ok {
		r = base - knownJitter + rng.IntN(2*knownJitter+1)
	} else {
		r = unknownBase + rng.IntN(unknownSpan)
	}
	return clampRating(r)
}

func (g *Generator) squad(rng *rand.Rand, base int) []models.Player {
	players := make([]models.Player, 0, g.SquadSize())
	used := make(map[string]bool, g.SquadSize())
	number := 1
	for _, line := range g.pool.Formation {
		for i := 0; i < line.Count; i++ {
			name := g.uniqueName(rng, used, number)
			used[name] = true
			players = append(players, models.Player{
				Name:     name,
				Position: line.Position,
				Number:   number,
				Rating:   clampRating(base - playerSpread + rng.IntN(2*playerSpread+1)),
			})
			number++
		}
	}
	players[rng.IntN(len(players))].Captain = true
	return players
}

func (g *Generator) uniqueName(rng *rand.Rand, used map[string]bool, number int) string {
	var name string
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name = g.pool.FirstNames[rng.IntN(len(g.pool.FirstNames))] + " " +
			g.pool.LastNames[rng.IntN(len(g.pool.LastNames))]
		if !used[name] {
			return name
		}
	}
	// shirt numbers are unique within a squad, so this always terminates
	return fmt.Sprintf("%s %d", name, number)
}

func clampRating(r int) int {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}
