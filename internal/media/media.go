// Package media writes parsed attachment bytes into the content directory
// and hands back the path-like refs stored on submissions. Storage names
// are unique per attachment, so concurrent writes never collide and no
// locking is needed here.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/wingshot-club/wingshot-bot/internal/wire"
)

// RefPrefix is the leading segment of every attachment ref; the HTTP layer
// mounts the content store under the same prefix.
const RefPrefix = "content"

// ContentStore owns the on-disk attachment tree. Layout:
// <root>/week-<n>/<safe member id>/<storage name>.
type ContentStore struct {
	root   string
	logger *slog.Logger
}

// NewContentStore creates a ContentStore rooted at dir.
func NewContentStore(dir string, logger *slog.Logger) *ContentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentStore{root: dir, logger: logger}
}

// ServeHTTP serves stored attachments. The request path is an attachment
// ref with a leading slash; anything Resolve rejects is reported as not
// found, the same as a ref that never existed.
func (c *ContentStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimPrefix(r.URL.Path, "/")
	file, err := c.Resolve(ref)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, file)
}

// SaveAttachment writes one parsed attachment under the (week, member)
// directory and returns the ref recorded on the submission.
func (c *ContentStore) SaveAttachment(ctx context.Context, week int, memberID string, att wire.Attachment) (string, error) {
	weekDir := fmt.Sprintf("week-%d", week)
	memberDir := SafeSegment(memberID)

	dir := filepath.Join(c.root, weekDir, memberDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create content directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, att.StorageName), att.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}

	c.logger.InfoContext(ctx, "Attachment stored",
		slog.Int("week", week),
		slog.String("member_id", memberID),
		slog.String("storage_name", att.StorageName),
		slog.Int("bytes", len(att.Data)),
	)
	return path.Join(RefPrefix, weekDir, memberDir, att.StorageName), nil
}

// Resolve maps an attachment ref back to an absolute file path, rejecting
// anything that escapes the content root.
func (c *ContentStore) Resolve(ref string) (string, error) {
	rel, ok := strings.CutPrefix(ref, RefPrefix+"/")
	if !ok {
		return "", fmt.Errorf("invalid attachment ref %q", ref)
	}
	cleaned := path.Clean(rel)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || path.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid attachment ref %q", ref)
	}
	return filepath.Join(c.root, filepath.FromSlash(cleaned)), nil
}

// SafeSegment transliterates a human-readable identifier into a
// filesystem-safe path segment: every non-alphanumeric rune becomes '_'.
func SafeSegment(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
