// Package judgingservice records head-to-head judgments written back by the
// external AI judge. The judge reads submissions through the public HTTP
// surface and is given no access to the parser or the backup mechanism;
// this service is its only write path.
package judgingservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/wingshot-club/wingshot-bot/app/eventbus"
	"github.com/wingshot-club/wingshot-bot/app/events"
	"github.com/wingshot-club/wingshot-bot/internal/store"
)

var (
	// ErrSelfJudgment is returned when both sides of a judgment are the
	// same member.
	ErrSelfJudgment = errors.New("judging: a member cannot be judged against themselves")

	// ErrInvalidWinner is returned when the winner is neither side of the
	// judgment.
	ErrInvalidWinner = errors.New("judging: winner must be one of the judged members")
)

// Service is the judgment surface consumed by the HTTP layer.
type Service interface {
	RecordJudgment(ctx context.Context, j store.Judgment) error
	GetJudgment(ctx context.Context, week int, memberA, memberB string) (*store.Judgment, error)
}

// Datastore is the slice of the document store this module touches.
type Datastore interface {
	GetMember(ctx context.Context, id string) (*store.Member, error)
	GetWeek(ctx context.Context, number int) (*store.Week, error)
	GetJudgment(ctx context.Context, week int, memberA, memberB string) (*store.Judgment, error)
	SaveJudgment(ctx context.Context, j store.Judgment) error
}

// JudgingService implements the Service interface.
type JudgingService struct {
	store  Datastore
	bus    eventbus.EventBus
	logger *slog.Logger
	tracer trace.Tracer
}

// NewJudgingService creates a new JudgingService.
func NewJudgingService(
	datastore Datastore,
	bus eventbus.EventBus,
	logger *slog.Logger,
	tracer trace.Tracer,
) *JudgingService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("judging")
	}
	return &JudgingService{
		store:  datastore,
		bus:    bus,
		logger: logger,
		tracer: tracer,
	}
}

// RecordJudgment validates identity fields and persists the judgment. The
// Result payload is pass-through; whatever the judge produced is stored
// untouched.
func (s *JudgingService) RecordJudgment(ctx context.Context, j store.Judgment) error {
	ctx, span := s.tracer.Start(ctx, "JudgingService.RecordJudgment")
	defer span.End()

	if j.MemberA == j.MemberB {
		return ErrSelfJudgment
	}
	if j.Winner != j.MemberA && j.Winner != j.MemberB {
		return fmt.Errorf("%w: %q", ErrInvalidWinner, j.Winner)
	}

	if _, err := s.store.GetWeek(ctx, j.Week); err != nil {
		return fmt.Errorf("week %d: %w", j.Week, err)
	}
	for _, id := range []string{j.MemberA, j.MemberB} {
		if _, err := s.store.GetMember(ctx, id); err != nil {
			return fmt.Errorf("member %q: %w", id, err)
		}
	}

	if err := s.store.SaveJudgment(ctx, j); err != nil {
		return fmt.Errorf("failed to save judgment: %w", err)
	}

	s.logger.InfoContext(ctx, "Judgment recorded",
		slog.Int("week", j.Week),
		slog.String("member_a", j.MemberA),
		slog.String("member_b", j.MemberB),
		slog.String("winner", j.Winner),
	)

	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.TopicJudgmentSaved, events.JudgmentSaved{
			Week:    j.Week,
			MemberA: j.MemberA,
			MemberB: j.MemberB,
			Winner:  j.Winner,
		}); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish judgment event",
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// GetJudgment returns the judgment for one (week, memberA, memberB) triple.
func (s *JudgingService) GetJudgment(ctx context.Context, week int, memberA, memberB string) (*store.Judgment, error) {
	ctx, span := s.tracer.Start(ctx, "JudgingService.GetJudgment")
	defer span.End()
	return s.store.GetJudgment(ctx, week, memberA, memberB)
}
