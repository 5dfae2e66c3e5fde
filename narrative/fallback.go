package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dosada05/cup-simulator/models"
)

// Fallback builds static but valid text from the match data alone.
type Fallback struct{}

func NewFallback() *Fallback {
	return &Fallback{}
}

func (f *Fallback) GeneratePreview(_ context.Context, mc MatchContext) (string, error) {
	t1, t2 := mc.names()
	var b strings.Builder
	fmt.Fprintf(&b, "%s preview: %s vs %s.", roundTitle(mc.Round), t1, t2)
	if mc.Team1 != nil && mc.Team2 != nil {
		switch {
		case mc.Team1.Rating > mc.Team2.Rating:
			fmt.Fprintf(&b, " %s arrive as favourites with a rating of %d against %d.", t1, mc.Team1.Rating, mc.Team2.Rating)
		case mc.Team2.Rating > mc.Team1.Rating:
			fmt.Fprintf(&b, " %s arrive as favourites with a rating of %d against %d.", t2, mc.Team2.Rating, mc.Team1.Rating)
		default:
			fmt.Fprintf(&b, " Both sides are rated %d, so expect a tight contest.", mc.Team1.Rating)
		}
	}
	b.WriteString(" A place in the next round is on the line.")
	return b.String(), nil
}

func (f *Fallback) GenerateCommentary(_ context.Context, mc MatchContext, events []models.MatchEvent) ([]string, error) {
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, describeEvent(ev))
	}
	return lines, nil
}

func (f *Fallback) AnalyzePlayer(_ context.Context, mc MatchContext, player string) (string, error) {
	if mc.Result == nil {
		return fmt.Sprintf("%s has not featured in a completed match yet.", player), nil
	}
	goals := 0
	var minutes []string
	team := ""
	for _, g := range mc.Result.GoalScorers {
		if g.Player == player {
			goals++
			minutes = append(minutes, fmt.Sprintf("%d'", g.Minute))
			team = g.Team
		}
	}
	if goals == 0 {
		return fmt.Sprintf("%s did not score in this match.", player), nil
	}
	noun := "goal"
	if goals > 1 {
		noun = "goals"
	}
	return fmt.Sprintf("%s scored %d %s for %s (%s). Analysis is currently unavailable, but the numbers speak for themselves.",
		player, goals, noun, team, strings.Join(minutes, ", ")), nil
}

func describeEvent(ev models.MatchEvent) string {
	switch ev.Type {
	case models.EventKickOff:
		return fmt.Sprintf("%d' The match is under way.", ev.Minute)
	case models.EventGoal:
		return fmt.Sprintf("%d' GOAL! %s scores for %s. %s", ev.Minute, ev.Player, ev.Team, ev.Detail)
	case models.EventCard:
		return fmt.Sprintf("%d' %s card for %s (%s).", ev.Minute, ev.Detail, ev.Player, ev.Team)
	case models.EventSubstitution:
		return fmt.Sprintf("%d' Substitution for %s: %s off, %s.", ev.Minute, ev.Team, ev.Player, ev.Detail)
	case models.EventHalfTime:
		return fmt.Sprintf("%d' Half time.", ev.Minute)
	case models.EventFullTime:
		return fmt.Sprintf("%d' Full time. %s", ev.Minute, ev.Detail)
	case models.EventExtraTime:
		return fmt.Sprintf("%d' We go to extra time.", ev.Minute)
	case models.EventPenalties:
		return fmt.Sprintf("%d' Penalty shootout: %s", ev.Minute, ev.Detail)
	}
	return fmt.Sprintf("%d' %s", ev.Minute, ev.Type)
}

func roundTitle(r models.Round) string {
	switch r {
	case models.RoundQuarterfinal:
		return "Quarterfinal"
	case models.RoundSemifinal:
		return "Semifinal"
	case models.RoundFinal:
		return "Final"
	}
	return "Match"
}
