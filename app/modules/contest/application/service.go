// Package contestservice serves the roster, schedule, and computed
// standings, plus the admin surface: week status changes, whole-dataset
// export/replace, reset, and backup restore.
package contestservice

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/wingshot-club/wingshot-bot/app/eventbus"
	"github.com/wingshot-club/wingshot-bot/app/events"
	"github.com/wingshot-club/wingshot-bot/internal/store"
)

// Service is the contest surface consumed by the HTTP layer and storectl.
type Service interface {
	GetMembers(ctx context.Context) ([]store.Member, error)
	GetMember(ctx context.Context, id string) (*store.Member, error)
	GetSchedule(ctx context.Context) ([]store.Week, error)
	GetWeek(ctx context.Context, number int) (*store.Week, error)
	GetStandings(ctx context.Context) ([]store.StandingRow, error)
	SetWeekStatus(ctx context.Context, number int, status store.WeekStatus) (*store.Week, error)
	FullDataset(ctx context.Context) (*store.Dataset, error)
	ReplaceDataset(ctx context.Context, ds *store.Dataset) error
	ResetDataset(ctx context.Context) error
	ListBackups(ctx context.Context) ([]store.BackupInfo, error)
	RestoreBackup(ctx context.Context, name string) error
	ExportStandings(ctx context.Context, w io.Writer) error
}

// Datastore is the slice of the document store this module touches.
type Datastore interface {
	GetMembers(ctx context.Context) ([]store.Member, error)
	GetMember(ctx context.Context, id string) (*store.Member, error)
	GetSchedule(ctx context.Context) ([]store.Week, error)
	GetWeek(ctx context.Context, number int) (*store.Week, error)
	Standings(ctx context.Context) ([]store.StandingRow, error)
	SetWeekStatus(ctx context.Context, number int, status store.WeekStatus) (*store.Week, error)
	FullDataset(ctx context.Context) (*store.Dataset, error)
	Replace(ctx context.Context, ds *store.Dataset) error
	Reset(ctx context.Context) error
	Backups(ctx context.Context) ([]store.BackupInfo, error)
	RestoreBackup(ctx context.Context, name string) error
}

// ContestService implements the Service interface.
type ContestService struct {
	store  Datastore
	bus    eventbus.EventBus
	logger *slog.Logger
	tracer trace.Tracer
}

// NewContestService creates a new ContestService.
func NewContestService(
	datastore Datastore,
	bus eventbus.EventBus,
	logger *slog.Logger,
	tracer trace.Tracer,
) *ContestService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("contest")
	}
	return &ContestService{
		store:  datastore,
		bus:    bus,
		logger: logger,
		tracer: tracer,
	}
}

// GetMembers returns the roster.
func (s *ContestService) GetMembers(ctx context.Context) ([]store.Member, error) {
	return s.store.GetMembers(ctx)
}

// GetMember returns one member by ID.
func (s *ContestService) GetMember(ctx context.Context, id string) (*store.Member, error) {
	return s.store.GetMember(ctx, id)
}

// GetSchedule returns the full week schedule.
func (s *ContestService) GetSchedule(ctx context.Context) ([]store.Week, error) {
	return s.store.GetSchedule(ctx)
}

// GetWeek returns one week by number.
func (s *ContestService) GetWeek(ctx context.Context, number int) (*store.Week, error) {
	return s.store.GetWeek(ctx, number)
}

// GetStandings returns the computed win/loss table.
func (s *ContestService) GetStandings(ctx context.Context) ([]store.StandingRow, error) {
	ctx, span := s.tracer.Start(ctx, "ContestService.GetStandings")
	defer span.End()
	return s.store.Standings(ctx)
}

// SetWeekStatus updates one week's status and announces the change.
func (s *ContestService) SetWeekStatus(ctx context.Context, number int, status store.WeekStatus) (*store.Week, error) {
	ctx, span := s.tracer.Start(ctx, "ContestService.SetWeekStatus")
	defer span.End()

	week, err := s.store.SetWeekStatus(ctx, number, status)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Week status changed",
		slog.Int("week", number),
		slog.String("status", string(status)),
	)

	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.TopicWeekStatusChanged, events.WeekStatusChanged{
			Week:   number,
			Status: status,
		}); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish week status event",
				slog.String("error", err.Error()),
			)
		}
	}
	return week, nil
}

// FullDataset exports the whole dataset.
func (s *ContestService) FullDataset(ctx context.Context) (*store.Dataset, error) {
	return s.store.FullDataset(ctx)
}

// ReplaceDataset imports an externally supplied dataset.
func (s *ContestService) ReplaceDataset(ctx context.Context, ds *store.Dataset) error {
	ctx, span := s.tracer.Start(ctx, "ContestService.ReplaceDataset")
	defer span.End()
	return s.store.Replace(ctx, ds)
}

// ResetDataset restores the default dataset.
func (s *ContestService) ResetDataset(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "ContestService.ResetDataset")
	defer span.End()
	return s.store.Reset(ctx)
}

// ListBackups lists snapshots newest first.
func (s *ContestService) ListBackups(ctx context.Context) ([]store.BackupInfo, error) {
	return s.store.Backups(ctx)
}

// RestoreBackup restores one named snapshot.
func (s *ContestService) RestoreBackup(ctx context.Context, name string) error {
	ctx, span := s.tracer.Start(ctx, "ContestService.RestoreBackup")
	defer span.End()
	return s.store.RestoreBackup(ctx, name)
}

// ExportStandings writes the standings table as an XLSX workbook.
func (s *ContestService) ExportStandings(ctx context.Context, w io.Writer) error {
	ctx, span := s.tracer.Start(ctx, "ContestService.ExportStandings")
	defer span.End()

	rows, err := s.store.Standings(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute standings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Standings"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Rank", "Member", "Wins", "Losses"}); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{i + 1, row.Name, row.Wins, row.Losses}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
