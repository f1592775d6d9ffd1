// Package intake turns a form submission into a scored, persisted application.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal/broker"
	"github.com/IliaW/lead-hunter/internal/model"
	"github.com/IliaW/lead-hunter/internal/notify"
	"github.com/IliaW/lead-hunter/internal/persistence"
	"github.com/IliaW/lead-hunter/internal/scoring"
	"github.com/IliaW/lead-hunter/internal/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ValidationError maps form fields to a message. Nothing is scored or stored when it is
// returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid application: " + strings.Join(parts, ", ")
}

type Result struct {
	Application *model.ScoredApplication `json:"application"`
	Priority    bool                     `json:"priority"`
	Message     string                   `json:"message"`
	Sink        string                   `json:"sink"`
}

type Service struct {
	policy       *scoring.Policy
	sinks        *persistence.SinkChain
	notifier     notify.Notifier
	events       broker.Publisher
	metrics      *telemetry.IntakeMetrics
	validate     *validator.Validate
	minAge       int
	maxAge       int
	defaultVideo string
	agency       string
	now          func() time.Time
	newID        func() string
	dispatches   sync.WaitGroup
}

func NewService(cfg *config.IntakeConfig, policy *scoring.Policy, sinks *persistence.SinkChain,
	notifier notify.Notifier, events broker.Publisher, metrics *telemetry.IntakeMetrics) *Service {
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	if events == nil {
		events = broker.NoopPublisher{}
	}
	if metrics == nil {
		metrics = telemetry.NoopMetrics().IntakeMetrics
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{
		policy:       policy,
		sinks:        sinks,
		notifier:     notifier,
		events:       events,
		metrics:      metrics,
		validate:     v,
		minAge:       cfg.MinAge,
		maxAge:       cfg.MaxAge,
		defaultVideo: cfg.DefaultVideo,
		agency:       cfg.AgencyName,
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
	}
}

func (s *Service) Policy() *scoring.Policy {
	return s.policy
}

// Submit validates, scores and persists one application. A ValidationError or an error
// wrapping persistence.ErrNotPersisted is returned on failure. The notification and the
// event are sent after Submit returns and their failures are logged only.
func (s *Service) Submit(ctx context.Context, profile model.ApplicantProfile) (*Result, error) {
	profile = normalize(profile)
	if err := s.check(profile); err != nil {
		s.metrics.RejectedCnt(1)
		slog.Info("application rejected.", slog.String("err", err.Error()))
		return nil, err
	}
	if profile.Video == "" {
		profile.Video = s.defaultVideo
	}

	score := s.policy.Score(profile.Age, profile.Budget, profile.Level, profile.Passport)
	app := &model.ScoredApplication{
		ID:          s.newID(),
		SubmittedAt: s.now(),
		Profile:     profile,
		BudgetLabel: s.policy.BudgetLabel(profile.Budget),
		Score:       score,
		Status:      s.policy.Classify(score),
	}

	sink, err := s.sinks.Append(ctx, app)
	if err != nil {
		slog.Error("application lost.", slog.String("id", app.ID), slog.String("err", err.Error()))
		return nil, err
	}
	s.metrics.SubmittedCnt(1)
	if sink != s.sinks.Primary() {
		s.metrics.FallbackCnt(1)
	}
	slog.Info("application saved.", slog.String("id", app.ID), slog.Int("score", app.Score),
		slog.String("status", string(app.Status)), slog.String("sink", sink))

	if app.Priority() {
		s.metrics.PriorityCnt(1)
	}
	s.dispatch(ctx, app)

	return &Result{
		Application: app,
		Priority:    app.Priority(),
		Message:     s.message(app),
		Sink:        sink,
	}, nil
}

// dispatch sends the priority alert and the application event in the background. Both
// outlive the request context; the notifier and the publisher carry their own deadlines.
func (s *Service) dispatch(ctx context.Context, app *model.ScoredApplication) {
	bg := context.WithoutCancel(ctx)
	s.dispatches.Add(1)
	go func() {
		defer s.dispatches.Done()
		if app.Priority() {
			if err := s.notifier.Notify(bg, app); err != nil {
				s.metrics.NotifyFailedCnt(1)
				slog.Warn("priority alert not sent.", slog.String("id", app.ID), slog.String("err", err.Error()))
			}
		}
		if err := s.events.Publish(bg, broker.EventApplicationScored, app.ID, app); err != nil {
			slog.Warn("application event not published.", slog.String("id", app.ID),
				slog.String("err", err.Error()))
		}
	}()
}

// Wait blocks until every background alert and event of past submissions is done.
func (s *Service) Wait() {
	s.dispatches.Wait()
}

func (s *Service) message(app *model.ScoredApplication) string {
	thanks := fmt.Sprintf("Merci %s ! Votre dossier a été transmis à l'équipe %s.", app.Profile.Name, s.agency)
	if app.Priority() {
		return fmt.Sprintf("%s Félicitations ! Votre profil a obtenu un Score IA de %d/100. "+
			"Vous êtes éligible à un entretien prioritaire. Un agent vous contactera sous 24h.", thanks, app.Score)
	}
	return thanks + " Votre candidature est bien enregistrée dans notre base de talents."
}

func (s *Service) check(p model.ApplicantProfile) error {
	fields := make(map[string]string)
	if err := s.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate application: %w", err)
		}
		for _, fe := range verrs {
			fields[fe.Field()] = "is required"
		}
	}
	if p.Age < s.minAge || p.Age > s.maxAge {
		fields["age"] = fmt.Sprintf("must be between %d and %d", s.minAge, s.maxAge)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func normalize(p model.ApplicantProfile) model.ApplicantProfile {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Nationality = strings.TrimSpace(p.Nationality)
	p.City = strings.TrimSpace(p.City)
	p.Video = strings.TrimSpace(p.Video)
	return p
}
