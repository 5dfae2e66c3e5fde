package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/cup-simulator/models"
)

func testContext() MatchContext {
	return MatchContext{
		MatchID: 3,
		Round:   models.RoundSemifinal,
		Team1:   &models.Team{ID: 1, Country: "Brazil", Rating: 90},
		Team2:   &models.Team{ID: 2, Country: "Japan", Rating: 78},
	}
}

func TestChatClientPreview(t *testing.T) {
	var gotAuth, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel = req.Model
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Big night in the semis.  "}}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(ChatClientConfig{BaseURL: srv.URL + "/", APIKey: "secret", Model: "test-model"})
	text, err := c.GeneratePreview(context.Background(), testContext())
	if err != nil {
		t.Fatalf("GeneratePreview() error = %v", err)
	}
	if text != "Big night in the semis." {
		t.Errorf("GeneratePreview() = %q", text)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization header = %q", gotAuth)
	}
	if gotModel != "test-model" {
		t.Errorf("model = %q, want test-model", gotModel)
	}
}

func TestChatClientCommentarySplitsLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"Kick off!\n\n  Goal for Brazil \nFull time."}}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(ChatClientConfig{BaseURL: srv.URL})
	events := []models.MatchEvent{
		{Minute: 1, Type: models.EventKickOff},
		{Minute: 12, Type: models.EventGoal, Player: "A", TeamID: 1, Team: "Brazil"},
		{Minute: 90, Type: models.EventFullTime},
	}
	lines, err := c.GenerateCommentary(context.Background(), testContext(), events)
	if err != nil {
		t.Fatalf("GenerateCommentary() error = %v", err)
	}
	want := []string{"Kick off!", "Goal for Brazil", "Full time."}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestChatClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"empty choices", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewChatClient(ChatClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
			_, err := c.AnalyzePlayer(context.Background(), testContext(), "Someone")
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("AnalyzePlayer() error = %v, want ErrUnavailable", err)
			}
		})
	}
}
