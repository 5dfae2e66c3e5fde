package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Dosada05/cup-simulator/messaging"
	"github.com/Dosada05/cup-simulator/models"
	"github.com/Dosada05/cup-simulator/repositories"
)

type sentEmail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (m *fakeMailer) SendEmail(to []string, subject string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

func notifierFixture(t *testing.T, mailer Mailer) (*MatchResultNotifier, *models.Team, *models.Team) {
	t.Helper()
	store := repositories.NewMemoryStore()
	ctx := context.Background()

	senegal := &models.Team{Country: "Senegal", Manager: "M", Representative: "R", Contact: "fsf@example.com", Rating: 80}
	ghana := &models.Team{Country: "Ghana", Manager: "M", Representative: "R", Contact: "gfa@example.com", Rating: 75}
	for _, team := range []*models.Team{senegal, ghana} {
		if err := store.Teams().Create(ctx, team); err != nil {
			t.Fatalf("create %s: %v", team.Country, err)
		}
	}
	return NewMatchResultNotifier(store.Teams(), mailer, discardLogger()), senegal, ghana
}

func TestMatchResultNotifierSendsToBothFederations(t *testing.T) {
	mailer := &fakeMailer{}
	notifier, senegal, ghana := notifierFixture(t, mailer)

	penalties := "5-4"
	match := &models.Match{
		ID:      3,
		Round:   models.RoundSemifinal,
		Team1ID: senegal.ID,
		Team2ID: ghana.ID,
		Status:  models.MatchStatusCompleted,
		Result: &models.MatchResult{
			Team1Goals:   1,
			Team2Goals:   1,
			WinnerID:     senegal.ID,
			DecidedBy:    models.DecidedByPenalties,
			PenaltyScore: &penalties,
			GoalScorers: []models.GoalScorer{
				{Player: "Ismaila Diatta", TeamID: senegal.ID, Minute: 12},
				{Player: "Kwame Boateng", TeamID: ghana.ID, Minute: 77},
			},
		},
	}

	ctx := context.Background()
	if err := notifier.Publish(ctx, messaging.NewEvent(messaging.EventRoundCreated, "run", nil)); err != nil {
		t.Fatalf("Publish(round.created) error = %v", err)
	}
	if err := notifier.Publish(ctx, messaging.NewEvent(messaging.EventMatchCompleted, "run", match)); err != nil {
		t.Fatalf("Publish(match.completed) error = %v", err)
	}
	notifier.Wait()

	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mailer.sent))
	}
	email := mailer.sent[0]
	if strings.Join(email.to, ",") != "fsf@example.com,gfa@example.com" {
		t.Errorf("recipients = %v", email.to)
	}
	if email.subject != "Match Result: Senegal vs Ghana - Semifinal" {
		t.Errorf("subject = %q", email.subject)
	}
	for _, want := range []string{"Senegal 1 - 1 Ghana", "Winner: Senegal (penalties)", "Penalties: 5-4", "Ismaila Diatta (Senegal)", "Kwame Boateng (Ghana)"} {
		if !strings.Contains(email.body, want) {
			t.Errorf("body missing %q:\n%s", want, email.body)
		}
	}
}

func TestMatchResultNotifierSwallowsMailerErrors(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	notifier, senegal, ghana := notifierFixture(t, mailer)

	match := &models.Match{
		ID: 1, Round: models.RoundFinal, Team1ID: senegal.ID, Team2ID: ghana.ID,
		Result: &models.MatchResult{Team1Goals: 2, WinnerID: senegal.ID, DecidedBy: models.DecidedByRegulation},
	}
	if err := notifier.Publish(context.Background(), messaging.NewEvent(messaging.EventMatchCompleted, "run", match)); err != nil {
		t.Fatalf("Publish() error = %v, want nil", err)
	}
	notifier.Wait()
}

func TestMatchResultNotifierWithBracket(t *testing.T) {
	mailer := &fakeMailer{}
	h := newHarness(t)
	notifier := NewMatchResultNotifier(h.store.Teams(), mailer, discardLogger())
	bracket := NewBracketService(h.store.Teams(), h.store.Matches(), h.store, nil, messaging.FanOut{h.events, notifier}, discardLogger())
	h.register(t, 8)
	created, err := h.bracket.CreateTournament(context.Background())
	if err != nil {
		t.Fatalf("CreateTournament() error = %v", err)
	}

	if _, err := bracket.RecordResult(context.Background(), created[0].ID, regulationWin(created[0], true, "Scorer One")); err != nil {
		t.Fatalf("RecordResult() error = %v", err)
	}
	notifier.Wait()

	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mailer.sent))
	}
	if !strings.Contains(mailer.sent[0].subject, "Quarterfinal") {
		t.Errorf("subject = %q", mailer.sent[0].subject)
	}
}
