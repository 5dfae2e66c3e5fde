package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/cup-simulator/messaging"
	"github.com/Dosada05/cup-simulator/squad"
)

func TestRegisterTeamGeneratesRatingAndSquad(t *testing.T) {
	h := newHarness(t)
	team, err := h.teams.Register(context.Background(), RegisterTeamInput{
		Country:        "  Uruguay ",
		Manager:        "Marcelo",
		Representative: "AUF",
		Contact:        "auf@example.com",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if team.ID == 0 || team.Country != "Uruguay" {
		t.Fatalf("team = %+v", team)
	}
	if team.Rating < squad.MinRating || team.Rating > squad.MaxRating {
		t.Fatalf("rating %d out of range", team.Rating)
	}
	if len(team.Squad) == 0 {
		t.Fatal("empty squad")
	}
	if h.events.count(messaging.EventTeamRegistered) != 1 {
		t.Fatal("team.registered not published")
	}
}

func TestRegisterTeamValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.teams.Register(ctx, RegisterTeamInput{Country: "X", Contact: "not-an-email"})
	var fields FieldErrors
	if !errors.As(err, &fields) || !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("err = %v, want FieldErrors", err)
	}
	for _, key := range []string{"country", "manager", "representative", "contact"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing field error for %q in %v", key, fields)
		}
	}

	valid := RegisterTeamInput{Country: "Japan", Manager: "M", Representative: "R", Contact: "jfa@example.com"}
	if _, err := h.teams.Register(ctx, valid); err != nil {
		t.Fatalf("Register: %v", err)
	}
	valid.Country = "JAPAN"
	if _, err := h.teams.Register(ctx, valid); !errors.Is(err, ErrDuplicateTeam) {
		t.Fatalf("duplicate err = %v, want ErrDuplicateTeam", err)
	}
	teams, _ := h.teams.List(ctx)
	if len(teams) != 1 {
		t.Fatalf("teams = %d, want 1", len(teams))
	}
}

func TestGetTeam(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teams := h.register(t, 2)

	got, err := h.teams.GetByCountry(ctx, "argentina")
	if err != nil || got.ID != teams[1].ID {
		t.Fatalf("GetByCountry = %v, %v", got, err)
	}
	if _, err := h.teams.GetByCountry(ctx, ""); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("empty country err = %v", err)
	}
	if _, err := h.teams.GetByID(ctx, 77); !errors.Is(err, ErrTeamNotFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID err = %v", err)
	}
}
