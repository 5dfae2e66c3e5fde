package services

import (
	"bytes"
	"context"
	"crypto/tls"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/cup-simulator/messaging"
	"github.com/Dosada05/cup-simulator/models"
	"github.com/Dosada05/cup-simulator/repositories"
)

const (
	competitionName     = "African Nations League"
	smtpDialTimeout     = 10 * time.Second
	notificationTimeout = 30 * time.Second
)

//go:embed templates/match_result.html
var matchResultTemplate string

var matchResultTmpl = template.Must(template.New("match_result").Parse(matchResultTemplate))

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (c EmailConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// Mailer is satisfied by *EmailService.
type Mailer interface {
	SendEmail(to []string, subject string, body string) error
}

type EmailService struct {
	cfg EmailConfig
}

func NewEmailService(cfg EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	if len(to) == 0 {
		return errors.New("no recipients")
	}

	msg := []byte("To: " + strings.Join(to, ", ") + "\r\n" +
		"From: " + s.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	tlsconfig := &tls.Config{ServerName: s.cfg.Host}
	dialer := &net.Dialer{Timeout: smtpDialTimeout}

	var client *smtp.Client
	if s.cfg.Port == 465 {
		// Прямое TLS-соединение (обычно порт 465)
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("ошибка TLS соединения: %w", err)
		}
		client, err = smtp.NewClient(conn, s.cfg.Host)
		if err != nil {
			conn.Close()
			return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
		}
	} else {
		// STARTTLS (обычно порт 587)
		conn, err := dialer.Dial("tcp", addr)
		if err != nil {
			return fmt.Errorf("ошибка соединения SMTP: %w", err)
		}
		client, err = smtp.NewClient(conn, s.cfg.Host)
		if err != nil {
			conn.Close()
			return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
		}
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err = client.StartTLS(tlsconfig); err != nil {
				client.Close()
				return fmt.Errorf("ошибка команды STARTTLS: %w", err)
			}
		}
	}
	defer client.Quit()

	if s.cfg.User != "" {
		auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("ошибка аутентификации SMTP: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("ошибка MAIL FROM: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("ошибка RCPT TO: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("ошибка команды DATA: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("ошибка записи сообщения: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия DATA: %w", err)
	}

	return nil
}

// MatchResultNotifier emails both federations when one of their matches completes.
// It is plugged into the event fan-out next to the websocket and AMQP publishers.
type MatchResultNotifier struct {
	teamRepo repositories.TeamRepository
	mailer   Mailer
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewMatchResultNotifier(teamRepo repositories.TeamRepository, mailer Mailer, logger *slog.Logger) *MatchResultNotifier {
	return &MatchResultNotifier{
		teamRepo: teamRepo,
		mailer:   mailer,
		logger:   logger,
	}
}

// Publish schedules delivery and returns immediately. Other event types are ignored.
func (n *MatchResultNotifier) Publish(ctx context.Context, event messaging.Event) error {
	if event.Type != messaging.EventMatchCompleted {
		return nil
	}
	m, ok := event.Payload.(*models.Match)
	if !ok || m == nil || m.Result == nil {
		return nil
	}
	match := *m

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
		defer cancel()

		if err := n.notify(sendCtx, &match); err != nil {
			n.logger.Warn("failed to send match completion email", slog.Int("match_id", match.ID), slog.Any("error", err))
		}
	}()
	return nil
}

// Wait blocks until every scheduled email has been attempted.
func (n *MatchResultNotifier) Wait() {
	n.wg.Wait()
}

func (n *MatchResultNotifier) notify(ctx context.Context, match *models.Match) error {
	team1, err := n.teamRepo.GetByID(ctx, match.Team1ID)
	if err != nil {
		return fmt.Errorf("failed to load team %d: %w", match.Team1ID, err)
	}
	team2, err := n.teamRepo.GetByID(ctx, match.Team2ID)
	if err != nil {
		return fmt.Errorf("failed to load team %d: %w", match.Team2ID, err)
	}

	var recipients []string
	for _, contact := range []string{team1.Contact, team2.Contact} {
		if contact != "" && !containsFold(recipients, contact) {
			recipients = append(recipients, contact)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	subject, body, err := renderMatchResult(match, team1, team2)
	if err != nil {
		return err
	}
	if err := n.mailer.SendEmail(recipients, subject, body); err != nil {
		return err
	}

	n.logger.Info("match completion email sent", slog.Int("match_id", match.ID), slog.Int("recipients", len(recipients)))
	return nil
}

func renderMatchResult(match *models.Match, team1, team2 *models.Team) (string, string, error) {
	res := match.Result
	round := string(match.Round)
	if round != "" {
		round = strings.ToUpper(round[:1]) + round[1:]
	}

	winner := team2.Country
	if res.WinnerID == team1.ID {
		winner = team1.Country
	}
	decidedBy := ""
	if res.DecidedBy != models.DecidedByRegulation {
		decidedBy = strings.ReplaceAll(string(res.DecidedBy), "_", " ")
	}
	penalties := ""
	if res.PenaltyScore != nil {
		penalties = *res.PenaltyScore
	}

	scorers := make([]models.GoalScorer, len(res.GoalScorers))
	copy(scorers, res.GoalScorers)
	for i := range scorers {
		if scorers[i].Team != "" {
			continue
		}
		if scorers[i].TeamID == team1.ID {
			scorers[i].Team = team1.Country
		} else {
			scorers[i].Team = team2.Country
		}
	}

	data := struct {
		Competition  string
		Round        string
		Team1        string
		Team2        string
		Team1Goals   int
		Team2Goals   int
		Winner       string
		DecidedBy    string
		PenaltyScore string
		Scorers      []models.GoalScorer
	}{
		Competition:  competitionName,
		Round:        round,
		Team1:        team1.Country,
		Team2:        team2.Country,
		Team1Goals:   res.Team1Goals,
		Team2Goals:   res.Team2Goals,
		Winner:       winner,
		DecidedBy:    decidedBy,
		PenaltyScore: penalties,
		Scorers:      scorers,
	}

	var body bytes.Buffer
	if err := matchResultTmpl.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("ошибка выполнения шаблона match_result: %w", err)
	}

	subject := fmt.Sprintf("Match Result: %s vs %s - %s", team1.Country, team2.Country, round)
	return subject, body.String(), nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
