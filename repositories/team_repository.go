package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/cup-simulator/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamCountryConflict = errors.New("team country already registered")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByCountry(ctx context.Context, country string) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	Count(ctx context.Context) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, country, manager, representative, contact, rating, squad, created_at`

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	squad, err := json.Marshal(team.Squad)
	if err != nil {
		return fmt.Errorf("failed to marshal squad for %s: %w", team.Country, err)
	}
	query := `
		INSERT INTO teams (country, manager, representative, contact, rating, squad)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		team.Country,
		team.Manager,
		team.Representative,
		team.Contact,
		team.Rating,
		squad,
	).Scan(&team.ID, &team.CreatedAt)
	return handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	team, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team by id %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) GetByCountry(ctx context.Context, country string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE LOWER(country) = LOWER($1)`
	team, err := scanTeam(r.db.QueryRowContext(ctx, query, country))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team %q: %w", country, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTeam(row rowScanner) (*models.Team, error) {
	team := &models.Team{}
	var squad []byte
	if err := row.Scan(
		&team.ID,
		&team.Country,
		&team.Manager,
		&team.Representative,
		&team.Contact,
		&team.Rating,
		&squad,
		&team.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(squad, &team.Squad); err != nil {
		return nil, fmt.Errorf("failed to decode squad of team %d: %w", team.ID, err)
	}
	return team, nil
}

func handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == "teams_country_key" { // unique_violation
			return ErrTeamCountryConflict
		}
	}
	return err
}
