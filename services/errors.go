package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Категории ошибок. Конкретные ошибки оборачивают свою категорию,
// поэтому errors.Is(err, ErrStateConflict) работает для всех конфликтов.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrStateConflict    = errors.New("state conflict")
	ErrInvalidMatch     = errors.New("invalid match")
	ErrExternalService  = errors.New("external service failure")
)

var (
	// Ошибки валидации
	ErrDuplicateTeam         = fmt.Errorf("%w: country is already registered", ErrValidationFailed)
	ErrInsufficientTeams     = fmt.Errorf("%w: exactly 8 registered teams are required", ErrValidationFailed)
	ErrInvalidSimulationMode = fmt.Errorf("%w: unknown simulation mode", ErrValidationFailed)
	ErrPlayerNameRequired    = fmt.Errorf("%w: player name is required", ErrValidationFailed)

	// Некорректные матчи
	ErrInvalidResultForMatch = fmt.Errorf("%w: result winner is not one of the match teams", ErrInvalidMatch)
	ErrUnresolvedResult      = fmt.Errorf("%w: level score without a tie-break", ErrInvalidMatch)

	// Конфликты состояния
	ErrBracketExists         = fmt.Errorf("%w: an active bracket already exists", ErrStateConflict)
	ErrMatchAlreadyCompleted = fmt.Errorf("%w: match is already completed", ErrStateConflict)
	ErrRoundNotReady         = fmt.Errorf("%w: no scheduled matches in the current round", ErrStateConflict)
	ErrRegistrationClosed    = fmt.Errorf("%w: registration is closed while a bracket is active", ErrStateConflict)

	// Не найдено
	ErrTeamNotFound   = fmt.Errorf("%w: team not found", ErrNotFound)
	ErrMatchNotFound  = fmt.Errorf("%w: match not found", ErrNotFound)
	ErrPlayerNotFound = fmt.Errorf("%w: player not found in match squads", ErrNotFound)

	// Аутентификация
	ErrInvalidCredentials   = errors.New("invalid admin password")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
)

// FieldErrors collects per-field validation messages. It unwraps to ErrValidationFailed.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error {
	return ErrValidationFailed
}
