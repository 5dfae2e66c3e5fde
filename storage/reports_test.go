package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/cup-simulator/models"
)

func TestReportArchiverRoundTrip(t *testing.T) {
	uploader := NewMemoryUploader("https://cdn.example.com/cup/")
	archiver := NewReportArchiver(uploader)
	done := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

	match := &models.Match{
		ID: 5, RunID: "run-7", Round: models.RoundSemifinal, BracketUID: "SF1",
		Team1ID: 1, Team2ID: 2, Status: models.MatchStatusCompleted, CompletedAt: &done,
		Team1:  &models.Team{ID: 1, Country: "Brazil"},
		Team2:  &models.Team{ID: 2, Country: "Spain"},
		Result: &models.MatchResult{Team1Goals: 2, Team2Goals: 1, WinnerID: 1, DecidedBy: models.DecidedByRegulation},
	}

	key, err := archiver.Archive(context.Background(), match)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if key != "reports/run-7/match-5.json" {
		t.Fatalf("key = %q", key)
	}
	if got := archiver.URL(key); got != "https://cdn.example.com/cup/reports/run-7/match-5.json" {
		t.Fatalf("URL = %q", got)
	}

	body, ok := uploader.Object(key)
	if !ok {
		t.Fatal("object not stored")
	}
	var report MatchReport
	if err := json.NewDecoder(body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Team1 != "Brazil" || report.Result.WinnerID != 1 || report.BracketUID != "SF1" {
		t.Fatalf("report = %+v", report)
	}

	if err := archiver.Remove(context.Background(), key); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := archiver.Remove(context.Background(), key); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("second Remove err = %v", err)
	}
}

func TestArchiveRejectsScheduledMatch(t *testing.T) {
	archiver := NewReportArchiver(NewMemoryUploader(""))
	if _, err := archiver.Archive(context.Background(), &models.Match{ID: 1}); err == nil {
		t.Fatal("expected error for scheduled match")
	}
	if got := archiver.URL("reports/x.json"); got != "" {
		t.Fatalf("URL without base = %q, want empty", got)
	}
}
