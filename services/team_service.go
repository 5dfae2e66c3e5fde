package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/Dosada05/cup-simulator/messaging"
	"github.com/Dosada05/cup-simulator/models"
	"github.com/Dosada05/cup-simulator/repositories"
	"github.com/go-playground/validator/v10"
)

// SquadGenerator derives rating and squad for a newly registered country.
type SquadGenerator interface {
	Generate(country string) (int, []models.Player)
}

type TeamService interface {
	Register(ctx context.Context, input RegisterTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByCountry(ctx context.Context, country string) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
}

type RegisterTeamInput struct {
	Country        string `json:"country" validate:"required,min=2,max=56"`
	Manager        string `json:"manager" validate:"required,max=150"`
	Representative string `json:"representative" validate:"required,max=150"`
	Contact        string `json:"contact" validate:"required,email,max=255"`
}

type teamService struct {
	teamRepo  repositories.TeamRepository
	bracket   BracketService
	generator SquadGenerator
	validate  *validator.Validate
	events    messaging.Publisher
	logger    *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	bracket BracketService,
	generator SquadGenerator,
	events messaging.Publisher,
	logger *slog.Logger,
) TeamService {
	if events == nil {
		events = messaging.Nop()
	}
	return &teamService{
		teamRepo:  teamRepo,
		bracket:   bracket,
		generator: generator,
		validate:  newValidator(),
		events:    events,
		logger:    logger,
	}
}

func (s *teamService) Register(ctx context.Context, input RegisterTeamInput) (*models.Team, error) {
	input.Country = strings.TrimSpace(input.Country)
	input.Manager = strings.TrimSpace(input.Manager)
	input.Representative = strings.TrimSpace(input.Representative)
	input.Contact = strings.TrimSpace(input.Contact)

	if err := validateStruct(ctx, s.validate, input); err != nil {
		return nil, err
	}

	var team *models.Team
	err := s.bracket.WithRegistrationOpen(ctx, func() error {
		rating, squad := s.generator.Generate(input.Country)
		team = &models.Team{
			Country:        input.Country,
			Manager:        input.Manager,
			Representative: input.Representative,
			Contact:        input.Contact,
			Rating:         rating,
			Squad:          squad,
		}
		if err := s.teamRepo.Create(ctx, team); err != nil {
			if errors.Is(err, repositories.ErrTeamCountryConflict) {
				return fmt.Errorf("%w: %s", ErrDuplicateTeam, input.Country)
			}
			return fmt.Errorf("failed to create team: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "team registered",
		slog.Int("team_id", team.ID),
		slog.String("country", team.Country),
		slog.Int("rating", team.Rating),
	)
	if err := s.events.Publish(ctx, messaging.NewEvent(messaging.EventTeamRegistered, "", team)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", slog.String("type", messaging.EventTeamRegistered), slog.Any("error", err))
	}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}
	return team, nil
}

func (s *teamService) GetByCountry(ctx context.Context, country string) (*models.Team, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, ErrTeamNotFound
	}
	team, err := s.teamRepo.GetByCountry(ctx, country)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}
	return team, nil
}

func (s *teamService) List(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func mapTeamRepoError(err error) error {
	if errors.Is(err, repositories.ErrTeamNotFound) {
		return ErrTeamNotFound
	}
	return err
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct converts validator failures into FieldErrors keyed by json name.
func validateStruct(ctx context.Context, v *validator.Validate, payload interface{}) error {
	err := v.StructCtx(ctx, payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describeFieldError(fe)
	}
	return fields
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be provided"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}
