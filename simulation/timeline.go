package simulation

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/Dosada05/cup-simulator/models"
)

const (
	startingEleven     = 11
	substitutionsTeam  = 3
	firstSubMinute     = 46
	lastSubMinute      = 88
	maxCardsPerMatch   = 5
	redCardProbability = 0.08
	halfTimeMinute     = 45
)

// eventOrder keeps same-minute events readable: kick off first, whistles last.
var eventOrder = map[models.EventType]int{
	models.EventKickOff:      0,
	models.EventGoal:         1,
	models.EventCard:         2,
	models.EventSubstitution: 3,
	models.EventHalfTime:     4,
	models.EventExtraTime:    5,
	models.EventFullTime:     6,
	models.EventPenalties:    7,
}

// renderTimeline lays the canonical outcome out as minute-ordered events. The
// goals come from the outcome untouched; cards and substitutions are decoration.
func renderTimeline(rng *rand.Rand, out outcome, team1, team2 *models.Team) []models.MatchEvent {
	events := []models.MatchEvent{
		{Minute: 1, Type: models.EventKickOff},
		{Minute: halfTimeMinute, Type: models.EventHalfTime},
	}

	score := [2]int{}
	for _, g := range out.goals {
		t := teamFor(g.side, team1, team2)
		score[g.side-1]++
		events = append(events, models.MatchEvent{
			Minute: g.minute,
			Type:   models.EventGoal,
			Player: g.player.Name,
			TeamID: t.ID,
			Team:   t.Country,
			Detail: fmt.Sprintf("%d-%d", score[0], score[1]),
		})
	}

	sides := [2]*pitch{newPitch(rng, team1), newPitch(rng, team2)}
	events = append(events, bookings(rng, sides)...)
	for _, p := range sides {
		events = append(events, p.substitutionEvents()...)
	}

	regulationScore := fmt.Sprintf("%d-%d", out.goals1, out.goals2)
	if out.decidedBy == models.DecidedByExtraTime {
		if out.winner == side1 {
			regulationScore = fmt.Sprintf("%d-%d", out.goals1-1, out.goals2)
		} else {
			regulationScore = fmt.Sprintf("%d-%d", out.goals1, out.goals2-1)
		}
	}

	switch out.decidedBy {
	case models.DecidedByRegulation:
		events = append(events, models.MatchEvent{Minute: regulationMinutes, Type: models.EventFullTime, Detail: regulationScore})
	default:
		events = append(events,
			models.MatchEvent{Minute: regulationMinutes, Type: models.EventExtraTime, Detail: regulationScore},
			models.MatchEvent{Minute: regulationMinutes + extraTimeMinutes, Type: models.EventFullTime, Detail: fmt.Sprintf("%d-%d", out.goals1, out.goals2)},
		)
	}
	if out.penalties != nil {
		winner := teamFor(out.winner, team1, team2)
		events = append(events, models.MatchEvent{
			Minute: regulationMinutes + extraTimeMinutes,
			Type:   models.EventPenalties,
			TeamID: winner.ID,
			Team:   winner.Country,
			Detail: fmt.Sprintf("%d-%d", out.penalties[0], out.penalties[1]),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Minute != events[j].Minute {
			return events[i].Minute < events[j].Minute
		}
		return eventOrder[events[i].Type] < eventOrder[events[j].Type]
	})
	return events
}

// startingLineup picks a 1-4-4-2 from the squad in shirt order and fills any
// gap from the rest, so a short squad still fields everyone it has.
func startingLineup(t *models.Team) (lineup, bench []models.Player) {
	quota := map[models.Position]int{
		models.PositionGoalkeeper: 1,
		models.PositionDefender:   4,
		models.PositionMidfielder: 4,
		models.PositionForward:    2,
	}
	for _, p := range t.Squad {
		if quota[p.Position] > 0 && len(lineup) < startingEleven {
			quota[p.Position]--
			lineup = append(lineup, p)
			continue
		}
		bench = append(bench, p)
	}
	for len(lineup) < startingEleven && len(bench) > 0 {
		lineup = append(lineup, bench[0])
		bench = bench[1:]
	}
	return lineup, bench
}

type substitution struct {
	minute int
	off    models.Player
	on     models.Player
}

// pitch tracks who is on the field for one team across regulation time.
type pitch struct {
	team    *models.Team
	lineup  []models.Player
	subs    []substitution
	yellow  map[string]bool
	sentOff map[string]bool
}

func newPitch(rng *rand.Rand, t *models.Team) *pitch {
	lineup, bench := startingLineup(t)
	return &pitch{
		team:    t,
		lineup:  lineup,
		subs:    plannedSubstitutions(rng, lineup, bench),
		yellow:  make(map[string]bool),
		sentOff: make(map[string]bool),
	}
}

// onPitch lists players on the field when an event at minute happens.
// Cards sort before substitutions within a minute, so a player leaving at
// minute is still on and the replacement is not yet.
func (p *pitch) onPitch(minute int) []models.Player {
	offAt := make(map[string]int, len(p.subs))
	for _, s := range p.subs {
		offAt[s.off.Name] = s.minute
	}

	var players []models.Player
	for _, pl := range p.lineup {
		if m, ok := offAt[pl.Name]; ok && m < minute {
			continue
		}
		if !p.sentOff[pl.Name] {
			players = append(players, pl)
		}
	}
	for _, s := range p.subs {
		if s.minute < minute && !p.sentOff[s.on.Name] {
			players = append(players, s.on)
		}
	}
	return players
}

// book cards a player; a second yellow is a red. A player sent off loses
// any substitution planned for him at or after the card.
func (p *pitch) book(minute int, player models.Player, red bool) models.MatchEvent {
	if p.yellow[player.Name] {
		red = true
	}
	colour := "yellow"
	if red {
		colour = "red"
		p.sentOff[player.Name] = true
		kept := p.subs[:0]
		for _, s := range p.subs {
			if s.off.Name == player.Name && s.minute >= minute {
				continue
			}
			kept = append(kept, s)
		}
		p.subs = kept
	} else {
		p.yellow[player.Name] = true
	}
	return models.MatchEvent{
		Minute: minute,
		Type:   models.EventCard,
		Player: player.Name,
		TeamID: p.team.ID,
		Team:   p.team.Country,
		Detail: colour,
	}
}

func (p *pitch) substitutionEvents() []models.MatchEvent {
	events := make([]models.MatchEvent, 0, len(p.subs))
	for _, s := range p.subs {
		events = append(events, models.MatchEvent{
			Minute: s.minute,
			Type:   models.EventSubstitution,
			Player: s.off.Name,
			TeamID: p.team.ID,
			Team:   p.team.Country,
			Detail: "on: " + s.on.Name,
		})
	}
	return events
}

// bookings hands out cards in minute order to players on the pitch at that minute.
func bookings(rng *rand.Rand, sides [2]*pitch) []models.MatchEvent {
	minutes := make([]int, rng.IntN(maxCardsPerMatch+1))
	for i := range minutes {
		minutes[i] = 1 + rng.IntN(regulationMinutes)
	}
	sort.Ints(minutes)

	var events []models.MatchEvent
	for _, minute := range minutes {
		first := rng.IntN(2)
		red := rng.Float64() < redCardProbability
		for _, idx := range []int{first, 1 - first} {
			candidates := sides[idx].onPitch(minute)
			if len(candidates) == 0 {
				continue
			}
			player := candidates[rng.IntN(len(candidates))]
			events = append(events, sides[idx].book(minute, player, red))
			break
		}
	}
	return events
}

func plannedSubstitutions(rng *rand.Rand, lineup, bench []models.Player) []substitution {
	// goalkeepers stay on
	var outfield []models.Player
	for _, p := range lineup {
		if p.Position != models.PositionGoalkeeper {
			outfield = append(outfield, p)
		}
	}
	n := min(substitutionsTeam, len(outfield), len(bench))
	if n == 0 {
		return nil
	}

	offIdx := rng.Perm(len(outfield))[:n]
	onIdx := rng.Perm(len(bench))[:n]
	subs := make([]substitution, 0, n)
	for i := 0; i < n; i++ {
		subs = append(subs, substitution{
			minute: firstSubMinute + rng.IntN(lastSubMinute-firstSubMinute+1),
			off:    outfield[offIdx[i]],
			on:     bench[onIdx[i]],
		})
	}
	return subs
}
