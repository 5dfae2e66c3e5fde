// Package narrative produces preview, commentary and player analysis text for matches.
// Providers are pluggable; Fallback always succeeds and needs no network.
package narrative

import (
	"context"
	"errors"

	"github.com/Dosada05/cup-simulator/models"
)

// ErrUnavailable wraps every provider failure (transport, status, empty answer).
var ErrUnavailable = errors.New("text generation unavailable")

// MatchContext is the read-only view of a match handed to a narrator.
type MatchContext struct {
	MatchID int
	Round   models.Round
	Team1   *models.Team
	Team2   *models.Team
	Result  *models.MatchResult
}

type Narrator interface {
	GeneratePreview(ctx context.Context, mc MatchContext) (string, error)
	GenerateCommentary(ctx context.Context, mc MatchContext, events []models.MatchEvent) ([]string, error)
	AnalyzePlayer(ctx context.Context, mc MatchContext, player string) (string, error)
}

func (mc MatchContext) names() (string, string) {
	t1, t2 := "TBD", "TBD"
	if mc.Team1 != nil {
		t1 = mc.Team1.Country
	}
	if mc.Team2 != nil {
		t2 = mc.Team2.Country
	}
	return t1, t2
}
