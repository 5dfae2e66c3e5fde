package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/Dosada05/cup-simulator/models"
)

// MatchReport is the archived JSON document of a completed match.
type MatchReport struct {
	MatchID     int                 `json:"match_id"`
	RunID       string              `json:"run_id"`
	BracketUID  string              `json:"bracket_uid"`
	Round       models.Round        `json:"round"`
	Team1       string              `json:"team1"`
	Team2       string              `json:"team2"`
	Result      *models.MatchResult `json:"result"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	ArchivedAt  time.Time           `json:"archived_at"`
}

type ReportArchiver struct {
	uploader FileUploader
	prefix   string
}

func NewReportArchiver(uploader FileUploader) *ReportArchiver {
	return &ReportArchiver{uploader: uploader, prefix: "reports"}
}

// ReportKey builds reports/<run-id>/match-<id>.json.
func (a *ReportArchiver) ReportKey(runID string, matchID int) string {
	return path.Join(a.prefix, runID, "match-"+strconv.Itoa(matchID)+".json")
}

// Archive uploads the report of a completed match and returns its object key.
func (a *ReportArchiver) Archive(ctx context.Context, match *models.Match) (string, error) {
	if match == nil || !match.IsCompleted() {
		return "", fmt.Errorf("match is not completed")
	}
	report := MatchReport{
		MatchID:     match.ID,
		RunID:       match.RunID,
		BracketUID:  match.BracketUID,
		Round:       match.Round,
		Result:      match.Result,
		CompletedAt: match.CompletedAt,
		ArchivedAt:  time.Now().UTC(),
	}
	if match.Team1 != nil {
		report.Team1 = match.Team1.Country
	}
	if match.Team2 != nil {
		report.Team2 = match.Team2.Country
	}

	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report for match %d: %w", match.ID, err)
	}
	key := a.ReportKey(match.RunID, match.ID)
	if _, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body)); err != nil {
		return "", err
	}
	return key, nil
}

func (a *ReportArchiver) Remove(ctx context.Context, key string) error {
	return a.uploader.Delete(ctx, key)
}

func (a *ReportArchiver) URL(key string) string {
	return a.uploader.GetPublicURL(key)
}
