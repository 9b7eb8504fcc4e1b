package submissionservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/wingshot-club/wingshot-bot/app/eventbus"
	"github.com/wingshot-club/wingshot-bot/app/events"
	"github.com/wingshot-club/wingshot-bot/internal/observability"
	"github.com/wingshot-club/wingshot-bot/internal/store"
	"github.com/wingshot-club/wingshot-bot/internal/wire"
)

var (
	// ErrWeekNotOpen is returned when the target week exists but is not
	// accepting submissions.
	ErrWeekNotOpen = errors.New("submission: week is not accepting submissions")

	// ErrMissingSpecies is returned when the form carries no species field.
	ErrMissingSpecies = errors.New("submission: species field is required")
)

// SubmissionService implements the Service interface.
type SubmissionService struct {
	store   Datastore
	media   MediaStore
	bus     eventbus.EventBus
	logger  *slog.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	datastore Datastore,
	media MediaStore,
	bus eventbus.EventBus,
	logger *slog.Logger,
	metrics *observability.Metrics,
	tracer trace.Tracer,
) *SubmissionService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("submission")
	}
	return &SubmissionService{
		store:   datastore,
		media:   media,
		bus:     bus,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

// SubmitEntry runs one parsed form through the ingestion pipeline: validate
// the member and week, write attachment bytes into the content directory,
// then upsert the submission record keyed by (week, member).
func (s *SubmissionService) SubmitEntry(ctx context.Context, week int, memberID string, form *wire.Form) (*store.Submission, error) {
	ctx, span := s.tracer.Start(ctx, "SubmissionService.SubmitEntry")
	defer span.End()

	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("member %q: %w", memberID, err)
	}

	wk, err := s.store.GetWeek(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("week %d: %w", week, err)
	}
	if wk.Status != store.WeekStatusActive {
		return nil, fmt.Errorf("%w: week %d is %s", ErrWeekNotOpen, week, wk.Status)
	}

	species := strings.TrimSpace(form.Fields["species"])
	if species == "" {
		return nil, ErrMissingSpecies
	}
	description := strings.TrimSpace(form.Fields["description"])

	// A prior entry means this is a resubmission; the store carries the
	// original timestamp forward, we only note it for the event.
	_, err = s.store.GetSubmission(ctx, week, memberID)
	resubmission := err == nil

	photos := make([]string, 0, len(form.Attachments))
	for _, att := range form.Attachments {
		ref, err := s.media.SaveAttachment(ctx, week, memberID, att)
		if err != nil {
			return nil, fmt.Errorf("failed to store attachment %q: %w", att.Filename, err)
		}
		photos = append(photos, ref)
	}

	sub, err := s.store.UpsertSubmission(ctx, week, memberID, species, description, photos)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert submission: %w", err)
	}

	s.metrics.SubmissionsIngested.Inc()
	s.logger.InfoContext(ctx, "Submission ingested",
		slog.Int("week", week),
		slog.String("member_id", member.ID),
		slog.String("species", species),
		slog.Int("photos", len(photos)),
		slog.Bool("resubmission", resubmission),
	)

	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.TopicSubmissionReceived, events.SubmissionReceived{
			Week:         week,
			MemberID:     memberID,
			Species:      species,
			PhotoCount:   len(photos),
			Resubmission: resubmission,
		}); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish submission event",
				slog.String("error", err.Error()),
			)
		}
	}

	return sub, nil
}

// GetSubmission returns one member's entry for one week.
func (s *SubmissionService) GetSubmission(ctx context.Context, week int, memberID string) (*store.Submission, error) {
	ctx, span := s.tracer.Start(ctx, "SubmissionService.GetSubmission")
	defer span.End()
	return s.store.GetSubmission(ctx, week, memberID)
}

// GetWeekSubmissions returns every entry for one week.
func (s *SubmissionService) GetWeekSubmissions(ctx context.Context, week int) ([]store.Submission, error) {
	ctx, span := s.tracer.Start(ctx, "SubmissionService.GetWeekSubmissions")
	defer span.End()
	return s.store.GetSubmissionsForWeek(ctx, week)
}
