package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingshot-club/wingshot-bot/internal/wire"
)

func TestSafeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mallory-wren", "mallory_wren"},
		{"Jesse Finch", "Jesse_Finch"},
		{"plain123", "plain123"},
		{"../../etc", "______etc"},
		{"", "_"},
		{"åke", "_ke"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeSegment(tt.in), "input %q", tt.in)
	}
}

func TestSaveAttachment(t *testing.T) {
	root := t.TempDir()
	c := NewContentStore(root, nil)

	payload := []byte{0x89, 0x50, 0x4E, 0x47, 0x00, 0xFF}
	ref, err := c.SaveAttachment(context.Background(), 3, "mallory-wren", wire.Attachment{
		FieldName:   "photo",
		Filename:    "eagle.png",
		MediaType:   "image/png",
		Data:        payload,
		StorageName: "abc123.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "content/week-3/mallory_wren/abc123.png", ref)

	stored, err := os.ReadFile(filepath.Join(root, "week-3", "mallory_wren", "abc123.png"))
	require.NoError(t, err)
	assert.Equal(t, payload, stored)
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	c := NewContentStore(root, nil)

	path, err := c.Resolve("content/week-3/mallory_wren/abc123.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "week-3", "mallory_wren", "abc123.png"), path)

	for _, ref := range []string{
		"week-3/mallory_wren/abc123.png",
		"content/../secrets.txt",
		"content/..",
		"content/",
	} {
		_, err := c.Resolve(ref)
		assert.Error(t, err, "ref %q should be rejected", ref)
	}
}

func TestServeHTTP(t *testing.T) {
	c := NewContentStore(t.TempDir(), nil)

	payload := []byte{0x89, 0x50, 0x4E, 0x47}
	ref, err := c.SaveAttachment(context.Background(), 2, "jesse-finch", wire.Attachment{
		FieldName:   "photo",
		Filename:    "heron.png",
		MediaType:   "image/png",
		Data:        payload,
		StorageName: "def456.png",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+ref, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.Bytes())
}

func TestServeHTTPRejectsEscapingPaths(t *testing.T) {
	dir := t.TempDir()
	c := NewContentStore(filepath.Join(dir, "content"), nil)

	// A sibling of the content root must stay unreachable.
	outside := filepath.Join(dir, "dataset.json")
	require.NoError(t, os.WriteFile(outside, []byte("{}"), 0o644))

	for _, target := range []string{
		"/content/../dataset.json",
		"/content/..",
		"/week-1/x/y.png",
	} {
		rec := httptest.NewRecorder()
		c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, "target %q", target)
	}
}
