// Package store owns the single JSON dataset on disk: members, schedule,
// submissions, and judgments. Every accessor re-reads the primary file so
// out-of-process edits (a manual restore, a hand edit) are observed on the
// next call, and every mutation snapshots the previous state into the
// backup directory before overwriting the primary.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/wingshot-club/wingshot-bot/internal/observability"
)

var (
	// ErrNotFound is returned when a member, week, submission, judgment,
	// or backup does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrInvalidStatus is returned when SetWeekStatus is handed a value
	// outside the status enumeration.
	ErrInvalidStatus = errors.New("store: invalid week status")

	// ErrInvalidDataset is returned when Replace is handed a dataset
	// missing one of the required top-level collections. Nothing is
	// written in that case.
	ErrInvalidDataset = errors.New("store: dataset missing required collections")
)

// Config locates the store's files on disk.
type Config struct {
	// Path is the primary dataset file.
	Path string
	// BackupDir holds timestamp-named snapshots of the primary file.
	BackupDir string
	// MaxBackups is the FIFO retention count; oldest snapshots beyond it
	// are deleted.
	MaxBackups int
}

// Store is the file-backed document store. A single process-wide mutex
// serializes every read-modify-write cycle: the file-per-dataset design is
// last-writer-wins at whole-file granularity, so concurrent upserts must
// not interleave their load and save steps.
type Store struct {
	cfg     Config
	logger  *slog.Logger
	metrics *observability.Metrics

	mu sync.Mutex
}

// New creates a Store. The primary file is created lazily on first access.
func New(cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &Store{cfg: cfg, logger: logger, metrics: metrics}
}

// load reads the dataset from the primary file. A missing or corrupt
// primary falls back to the default dataset, which is persisted immediately
// so subsequent readers agree; the data loss on corruption is deliberate
// and recoverable from backups. Callers must hold s.mu.
func (s *Store) load(ctx context.Context) *Dataset {
	data, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "Failed to read primary store file, reseeding",
				slog.String("path", s.cfg.Path),
				slog.String("error", err.Error()),
			)
		}
		return s.reseed(ctx)
	}

	ds := new(Dataset)
	if err := json.Unmarshal(data, ds); err != nil {
		s.logger.ErrorContext(ctx, "Primary store file corrupt, reseeding",
			slog.String("path", s.cfg.Path),
			slog.String("error", err.Error()),
		)
		return s.reseed(ctx)
	}

	ds.normalize()
	return ds
}

// reseed installs and persists the default dataset. No backup is taken:
// there is no prior state worth snapshotting, and the unreadable primary
// (if any) is already beyond saving.
func (s *Store) reseed(ctx context.Context) *Dataset {
	ds := DefaultDataset()
	if err := s.persist(ds); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist reseeded dataset",
			slog.String("error", err.Error()),
		)
	}
	return ds
}

// save runs the full write discipline: snapshot the existing primary,
// prune old snapshots, then overwrite the primary. A failed snapshot is
// logged but never blocks the write; availability of new data outranks
// backup completeness. Callers must hold s.mu.
func (s *Store) save(ctx context.Context, ds *Dataset) error {
	s.snapshot(ctx)
	if _, err := s.pruneBackups(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to list backup directory",
			slog.String("error", err.Error()),
		)
	}
	if err := s.persist(ds); err != nil {
		return fmt.Errorf("failed to write primary store file: %w", err)
	}
	s.metrics.StoreWrites.Inc()
	return nil
}

// persist serializes ds and replaces the primary file.
func (s *Store) persist(ds *Dataset) error {
	ds.normalize()
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	return writeFileAtomic(s.cfg.Path, data)
}

// writeFileAtomic replaces path through a temp file and rename, so a crash
// mid-write cannot leave a truncated file behind. Every primary write goes
// through here, including backup restores.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dataset-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// --- Read accessors -------------------------------------------------------

// GetMembers returns the full roster.
func (s *Store) GetMembers(ctx context.Context) ([]Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx).Members, nil
}

// GetMember returns one member by ID.
func (s *Store) GetMember(ctx context.Context, id string) (*Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.load(ctx).Members {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

// GetSchedule returns every scheduled week.
func (s *Store) GetSchedule(ctx context.Context) ([]Week, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx).Schedule, nil
}

// GetWeek returns one week by number.
func (s *Store) GetWeek(ctx context.Context, number int) (*Week, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.load(ctx).Schedule {
		if w.Number == number {
			return &w, nil
		}
	}
	return nil, ErrNotFound
}

// GetSubmission returns the submission for one (week, member) pair.
func (s *Store) GetSubmission(ctx context.Context, week int, memberID string) (*Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.load(ctx).Submissions {
		if sub.Week == week && sub.MemberID == memberID {
			return &sub, nil
		}
	}
	return nil, ErrNotFound
}

// GetSubmissionsForWeek returns every submission for one week.
func (s *Store) GetSubmissionsForWeek(ctx context.Context, week int) ([]Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := []Submission{}
	for _, sub := range s.load(ctx).Submissions {
		if sub.Week == week {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

// GetJudgment returns the judgment for one (week, memberA, memberB) triple.
func (s *Store) GetJudgment(ctx context.Context, week int, memberA, memberB string) (*Judgment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.load(ctx).Judgments {
		if j.Week == week && j.MemberA == memberA && j.MemberB == memberB {
			return &j, nil
		}
	}
	return nil, ErrNotFound
}

// --- Mutations ------------------------------------------------------------

// UpsertSubmission inserts or replaces the submission keyed by (week,
// memberID). On replace, the prior entry's creation timestamp is carried
// forward as PreviousSubmittedAt and a fresh ResubmittedAt is stamped.
func (s *Store) UpsertSubmission(ctx context.Context, week int, memberID, species, description string, photos []string) (*Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := s.load(ctx)
	now := time.Now().UTC()
	if photos == nil {
		photos = []string{}
	}

	sub := Submission{
		Week:        week,
		MemberID:    memberID,
		Species:     species,
		Description: description,
		Photos:      photos,
		SubmittedAt: now,
	}

	replaced := false
	for i, existing := range ds.Submissions {
		if existing.Week == week && existing.MemberID == memberID {
			prev := existing.SubmittedAt
			sub.PreviousSubmittedAt = &prev
			sub.ResubmittedAt = &now
			ds.Submissions[i] = sub
			replaced = true
			break
		}
	}
	if !replaced {
		ds.Submissions = append(ds.Submissions, sub)
	}

	if err := s.save(ctx, ds); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Submission upserted",
		slog.Int("week", week),
		slog.String("member_id", memberID),
		slog.Bool("resubmission", replaced),
	)
	return &sub, nil
}

// SaveJudgment inserts or replaces the judgment keyed by (week, memberA,
// memberB). The Result payload is pass-through; the store never inspects it.
func (s *Store) SaveJudgment(ctx context.Context, j Judgment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := s.load(ctx)
	if j.JudgedAt.IsZero() {
		j.JudgedAt = time.Now().UTC()
	}

	replaced := false
	for i, existing := range ds.Judgments {
		if existing.Week == j.Week && existing.MemberA == j.MemberA && existing.MemberB == j.MemberB {
			ds.Judgments[i] = j
			replaced = true
			break
		}
	}
	if !replaced {
		ds.Judgments = append(ds.Judgments, j)
	}

	if err := s.save(ctx, ds); err != nil {
		return err
	}
	s.metrics.JudgmentsSaved.Inc()
	return nil
}

// SetWeekStatus updates one week's status. Unrecognized statuses are
// rejected before any state is touched.
func (s *Store) SetWeekStatus(ctx context.Context, number int, status WeekStatus) (*Week, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ds := s.load(ctx)
	for i := range ds.Schedule {
		if ds.Schedule[i].Number == number {
			ds.Schedule[i].Status = status
			if err := s.save(ctx, ds); err != nil {
				return nil, err
			}
			week := ds.Schedule[i]
			return &week, nil
		}
	}
	return nil, ErrNotFound
}

// --- Standings ------------------------------------------------------------

// Standings computes the win/loss table by scanning all judgments: each
// judgment credits a win to its recorded winner and a loss to the other
// side. Sorted by wins descending, then losses ascending (fewer losses
// ranks higher on equal wins), then member ID for stability.
func (s *Store) Standings(ctx context.Context) ([]StandingRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := s.load(ctx)

	rows := make(map[string]*StandingRow, len(ds.Members))
	order := make([]string, 0, len(ds.Members))
	for _, m := range ds.Members {
		rows[m.ID] = &StandingRow{MemberID: m.ID, Name: m.Name}
		order = append(order, m.ID)
	}

	for _, j := range ds.Judgments {
		// Imported or hand-edited data can carry a winner that is neither
		// side; such judgments count for nobody.
		if j.Winner != j.MemberA && j.Winner != j.MemberB {
			continue
		}
		loser := j.MemberA
		if j.Winner == j.MemberA {
			loser = j.MemberB
		}
		if row, ok := rows[j.Winner]; ok {
			row.Wins++
		}
		if row, ok := rows[loser]; ok {
			row.Losses++
		}
	}

	table := make([]StandingRow, 0, len(order))
	for _, id := range order {
		table = append(table, *rows[id])
	}
	sort.SliceStable(table, func(i, k int) bool {
		if table[i].Wins != table[k].Wins {
			return table[i].Wins > table[k].Wins
		}
		if table[i].Losses != table[k].Losses {
			return table[i].Losses < table[k].Losses
		}
		return table[i].MemberID < table[k].MemberID
	})
	return table, nil
}

// --- Whole-dataset operations ---------------------------------------------

// FullDataset exports the current dataset, for manual backup flows.
func (s *Store) FullDataset(ctx context.Context) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx), nil
}

// Replace overwrites the whole dataset with an externally supplied one.
// The incoming dataset must carry all four top-level collections; a
// rejected replace leaves the store untouched.
func (s *Store) Replace(ctx context.Context, ds *Dataset) error {
	if ds == nil || ds.Members == nil || ds.Schedule == nil || ds.Submissions == nil || ds.Judgments == nil {
		return ErrInvalidDataset
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, ds)
}

// Reset restores the hard-coded default dataset. The outgoing state is
// snapshotted first, same as any other mutation.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, DefaultDataset())
}
