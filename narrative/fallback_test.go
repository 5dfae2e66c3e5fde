package narrative

import (
	"context"
	"strings"
	"testing"

	"github.com/Dosada05/cup-simulator/models"
)

func TestFallbackPreviewNamesFavourite(t *testing.T) {
	f := NewFallback()
	text, err := f.GeneratePreview(context.Background(), testContext())
	if err != nil {
		t.Fatalf("GeneratePreview() error = %v", err)
	}
	if !strings.HasPrefix(text, "Semifinal preview: Brazil vs Japan.") {
		t.Errorf("preview = %q", text)
	}
	if !strings.Contains(text, "Brazil arrive as favourites") {
		t.Errorf("preview does not name the favourite: %q", text)
	}

	again, _ := f.GeneratePreview(context.Background(), testContext())
	if again != text {
		t.Errorf("fallback preview is not deterministic: %q vs %q", again, text)
	}
}

func TestFallbackCommentaryOneLinePerEvent(t *testing.T) {
	events := []models.MatchEvent{
		{Minute: 1, Type: models.EventKickOff},
		{Minute: 33, Type: models.EventGoal, Player: "Lucas Silva", TeamID: 1, Team: "Brazil", Detail: "1-0"},
		{Minute: 90, Type: models.EventFullTime, Detail: "1-0"},
	}
	lines, err := NewFallback().GenerateCommentary(context.Background(), testContext(), events)
	if err != nil {
		t.Fatalf("GenerateCommentary() error = %v", err)
	}
	if len(lines) != len(events) {
		t.Fatalf("got %d lines, want %d", len(lines), len(events))
	}
	if !strings.Contains(lines[1], "Lucas Silva") || !strings.HasPrefix(lines[1], "33'") {
		t.Errorf("goal line = %q", lines[1])
	}
}

func TestFallbackAnalyzePlayer(t *testing.T) {
	mc := testContext()
	mc.Result = &models.MatchResult{
		GoalScorers: []models.GoalScorer{
			{Player: "Lucas Silva", TeamID: 1, Team: "Brazil", Minute: 12},
			{Player: "Lucas Silva", TeamID: 1, Team: "Brazil", Minute: 77},
		},
	}
	f := NewFallback()

	text, _ := f.AnalyzePlayer(context.Background(), mc, "Lucas Silva")
	if !strings.Contains(text, "scored 2 goals for Brazil (12', 77')") {
		t.Errorf("analysis = %q", text)
	}

	text, _ = f.AnalyzePlayer(context.Background(), mc, "Nobody")
	if !strings.Contains(text, "did not score") {
		t.Errorf("analysis for non-scorer = %q", text)
	}
}
