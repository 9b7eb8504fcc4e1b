package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	backupPrefix = "dataset-"
	backupSuffix = ".json"

	// backupStamp embeds nanoseconds so two writes in the same second
	// still produce distinct, lexicographically ordered names.
	backupStamp = "20060102-150405.000000000"
)

// BackupInfo describes one snapshot file in the backup directory.
type BackupInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// snapshot copies the current primary file into the backup directory under
// a timestamp-derived name. A missing primary means there is nothing to
// snapshot; any other failure is logged and swallowed so the write path
// stays available. Callers must hold s.mu.
func (s *Store) snapshot(ctx context.Context) {
	data, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.metrics.BackupFailures.Inc()
			s.logger.WarnContext(ctx, "Failed to read primary store file for backup",
				slog.String("error", err.Error()),
			)
		}
		return
	}

	if err := os.MkdirAll(s.cfg.BackupDir, 0o755); err != nil {
		s.metrics.BackupFailures.Inc()
		s.logger.WarnContext(ctx, "Failed to create backup directory",
			slog.String("dir", s.cfg.BackupDir),
			slog.String("error", err.Error()),
		)
		return
	}

	name := backupPrefix + time.Now().UTC().Format(backupStamp) + backupSuffix
	if err := os.WriteFile(filepath.Join(s.cfg.BackupDir, name), data, 0o644); err != nil {
		s.metrics.BackupFailures.Inc()
		s.logger.WarnContext(ctx, "Failed to write backup file",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return
	}
	s.metrics.BackupsCreated.Inc()
}

// pruneBackups deletes the oldest snapshots until at most MaxBackups
// remain, returning how many were deleted. Name ordering is creation
// ordering because names embed a zero-padded timestamp. Callers must
// hold s.mu.
func (s *Store) pruneBackups(ctx context.Context) (int, error) {
	names, err := s.backupNames()
	if err != nil {
		return 0, err
	}

	excess := len(names) - s.cfg.MaxBackups
	if s.cfg.MaxBackups <= 0 || excess <= 0 {
		return 0, nil
	}

	pruned := 0
	for _, name := range names[:excess] {
		if err := os.Remove(filepath.Join(s.cfg.BackupDir, name)); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete old backup",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		s.metrics.BackupsPruned.Inc()
		pruned++
	}
	return pruned, nil
}

// PruneBackups applies the retention limit on demand and reports how many
// snapshots were deleted. The write path prunes automatically; this exists
// for operator cleanup, such as after MaxBackups is lowered.
func (s *Store) PruneBackups(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned, err := s.pruneBackups(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list backups: %w", err)
	}
	return pruned, nil
}

// backupNames returns snapshot file names sorted oldest first.
func (s *Store) backupNames() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.BackupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Backups lists snapshots newest first.
func (s *Store) Backups(ctx context.Context) ([]BackupInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.backupNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	infos := make([]BackupInfo, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		info := BackupInfo{Name: name}
		if fi, err := os.Stat(filepath.Join(s.cfg.BackupDir, name)); err == nil {
			info.Size = fi.Size()
			info.CreatedAt = fi.ModTime().UTC()
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// RestoreBackup copies the named snapshot's content verbatim over the
// primary file. The outgoing primary is snapshotted first so the restore
// itself is undoable. An unknown name leaves the primary untouched.
func (s *Store) RestoreBackup(ctx context.Context, name string) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("%w: backup %q", ErrNotFound, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.cfg.BackupDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: backup %q", ErrNotFound, name)
		}
		return fmt.Errorf("failed to read backup %q: %w", name, err)
	}

	s.snapshot(ctx)
	if _, err := s.pruneBackups(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to list backup directory",
			slog.String("error", err.Error()),
		)
	}

	if err := writeFileAtomic(s.cfg.Path, data); err != nil {
		return fmt.Errorf("failed to restore backup %q: %w", name, err)
	}
	s.metrics.StoreWrites.Inc()

	s.logger.InfoContext(ctx, "Backup restored",
		slog.String("name", name),
	)
	return nil
}
