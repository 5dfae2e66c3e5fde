package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/cup-simulator/models"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 8 * time.Second

	systemPrompt = "You are a football journalist covering an international knockout cup. Be vivid but concise."
)

type ChatClientConfig struct {
	BaseURL string // e.g. https://api.openai.com/v1
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ChatClient talks to an OpenAI-compatible chat completions endpoint.
type ChatClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewChatClient(cfg ChatClientConfig) *ChatClient {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ChatClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *ChatClient) GeneratePreview(ctx context.Context, mc MatchContext) (string, error) {
	t1, t2 := mc.names()
	prompt := fmt.Sprintf("Write a three sentence %s preview for %s (rating %d) vs %s (rating %d).",
		roundTitle(mc.Round), t1, rating(mc.Team1), t2, rating(mc.Team2))
	return c.complete(ctx, prompt)
}

func (c *ChatClient) GenerateCommentary(ctx context.Context, mc MatchContext, events []models.MatchEvent) ([]string, error) {
	t1, t2 := mc.names()
	var b strings.Builder
	fmt.Fprintf(&b, "Write one short commentary line per event for %s vs %s. Answer with exactly %d lines, no numbering.\n", t1, t2, len(events))
	for _, ev := range events {
		b.WriteString(describeEvent(ev))
		b.WriteByte('\n')
	}
	text, err := c.complete(ctx, b.String())
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty commentary", ErrUnavailable)
	}
	return lines, nil
}

func (c *ChatClient) AnalyzePlayer(ctx context.Context, mc MatchContext, player string) (string, error) {
	t1, t2 := mc.names()
	var goals []string
	if mc.Result != nil {
		for _, g := range mc.Result.GoalScorers {
			if g.Player == player {
				goals = append(goals, fmt.Sprintf("%d'", g.Minute))
			}
		}
	}
	prompt := fmt.Sprintf("Give a two sentence performance analysis of %s in %s vs %s. Goals scored at: %s.",
		player, t1, t2, strings.Join(goals, ", "))
	return c.complete(ctx, prompt)
}

func (c *ChatClient) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API returned status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func rating(t *models.Team) int {
	if t == nil {
		return 0
	}
	return t.Rating
}
