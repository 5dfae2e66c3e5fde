package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/cup-simulator/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchNotScheduled = errors.New("match is not in scheduled state")
	ErrMatchSlotConflict = errors.New("bracket slot already has a match")
	ErrMatchTeamInvalid  = errors.New("match team conflict or invalid")
)

type MatchFilter struct {
	Round  *models.Round
	Status *models.MatchStatus
	TeamID *int
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.Match, error)
	// Complete stores the result only if the match is still scheduled.
	Complete(ctx context.Context, exec SQLExecutor, id int, result *models.MatchResult, completedAt time.Time) error
	SetReportKey(ctx context.Context, id int, key string) error
	DeleteAll(ctx context.Context, exec SQLExecutor) (int64, error)
	Count(ctx context.Context, status *models.MatchStatus) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, run_id, round, slot, bracket_uid, team1_id, team2_id, status, result, report_key, created_at, completed_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (run_id, round, slot, bracket_uid, team1_id, team2_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		match.RunID,
		match.Round,
		match.Slot,
		match.BracketUID,
		match.Team1ID,
		match.Team2ID,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	match, err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE 1=1`)

	args := []interface{}{}
	placeholderIndex := 1

	if filter.Round != nil {
		queryBuilder.WriteString(" AND round = $" + strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Round)
		placeholderIndex++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
		placeholderIndex++
	}
	if filter.TeamID != nil {
		queryBuilder.WriteString(" AND (team1_id = $" + strconv.Itoa(placeholderIndex) +
			" OR team2_id = $" + strconv.Itoa(placeholderIndex) + ")")
		args = append(args, *filter.TeamID)
	}
	queryBuilder.WriteString(" ORDER BY id ASC")

	rows, err := r.getExecutor(exec).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Complete(ctx context.Context, exec SQLExecutor, id int, result *models.MatchResult, completedAt time.Time) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result for match %d: %w", id, err)
	}
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET status = $1, result = $2, completed_at = $3
		WHERE id = $4 AND status = $5`
	res, err := executor.ExecContext(ctx, query,
		models.MatchStatusCompleted, payload, completedAt, id, models.MatchStatusScheduled)
	if err != nil {
		return fmt.Errorf("failed to complete match %d: %w", id, err)
	}
	if err := checkAffectedRows(res, ErrMatchNotScheduled); err != nil {
		if !errors.Is(err, ErrMatchNotScheduled) {
			return err
		}
		// distinguish a missing match from one that was already completed
		if _, getErr := r.GetByID(ctx, executor, id); getErr != nil {
			return getErr
		}
		return ErrMatchNotScheduled
	}
	return nil
}

func (r *postgresMatchRepository) SetReportKey(ctx context.Context, id int, key string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE matches SET report_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to set report key for match %d: %w", id, err)
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteAll(ctx context.Context, exec SQLExecutor) (int64, error) {
	res, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n, nil
}

func (r *postgresMatchRepository) Count(ctx context.Context, status *models.MatchStatus) (int, error) {
	query := `SELECT COUNT(*) FROM matches`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return n, nil
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var result []byte
	if err := row.Scan(
		&match.ID,
		&match.RunID,
		&match.Round,
		&match.Slot,
		&match.BracketUID,
		&match.Team1ID,
		&match.Team2ID,
		&match.Status,
		&result,
		&match.ReportKey,
		&match.CreatedAt,
		&match.CompletedAt,
	); err != nil {
		return nil, err
	}
	if len(result) > 0 {
		match.Result = &models.MatchResult{}
		if err := json.Unmarshal(result, match.Result); err != nil {
			return nil, fmt.Errorf("failed to decode result of match %d: %w", match.ID, err)
		}
	}
	return match, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "matches_run_round_slot_key" {
				return ErrMatchSlotConflict
			}
		case "23503", "23514": // foreign_key_violation, check_violation
			return ErrMatchTeamInvalid
		}
	}
	return err
}
