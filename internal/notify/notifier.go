// Package notify alerts the agency about priority applications.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal/model"
	"gopkg.in/gomail.v2"
)

// Notifier failures never fail a submission. Callers log and continue.
type Notifier interface {
	Notify(ctx context.Context, app *model.ScoredApplication) error
}

type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, *model.ScoredApplication) error { return nil }

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailNotifier struct {
	dialer  sender
	from    string
	to      []string
	agency  string
	timeout time.Duration
}

// NewNotifier returns a NoopNotifier when mail is disabled or has no recipients.
func NewNotifier(cfg *config.MailConfig, agency string) Notifier {
	if cfg == nil || !cfg.Enabled || cfg.Host == "" || len(cfg.To) == 0 {
		slog.Info("email alerts are disabled.")
		return NoopNotifier{}
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &EmailNotifier{dialer: d, from: cfg.From, to: cfg.To, agency: agency, timeout: cfg.Timeout}
}

// Notify gives up after the mail timeout. gomail has no deadline of its own, so a send that
// is still hanging then finishes in the background.
func (n *EmailNotifier) Notify(ctx context.Context, app *model.ScoredApplication) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to...)
	m.SetHeader("Subject", Subject(app))
	m.SetBody("text/plain", Body(app, n.agency))

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(m)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send priority alert: %w", err)
		}
	case <-ctx.Done():
		return fmt.Errorf("send priority alert: %w", ctx.Err())
	}
	slog.Info("priority alert sent.", slog.String("id", app.ID), slog.Int("score", app.Score))

	return nil
}

func Subject(app *model.ScoredApplication) string {
	return fmt.Sprintf("🔥 NOUVEAU TALENT : %s (Score %d)", app.Profile.Name, app.Score)
}

func Body(app *model.ScoredApplication, agency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nouveau candidat prioritaire pour %s.\n\n", agency)
	fmt.Fprintf(&b, "Nom : %s\n", app.Profile.Name)
	fmt.Fprintf(&b, "Score : %d/100\n", app.Score)
	fmt.Fprintf(&b, "Poste : %s\n", app.Profile.Position)
	fmt.Fprintf(&b, "Budget : %s\n", app.BudgetLabel)
	fmt.Fprintf(&b, "Vidéo : %s\n", app.Profile.Video)
	fmt.Fprintf(&b, "Contact : %s / %s\n", app.Profile.Email, app.Profile.Phone)
	return b.String()
}
