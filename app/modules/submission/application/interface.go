package submissionservice

import (
	"context"

	"github.com/wingshot-club/wingshot-bot/internal/store"
	"github.com/wingshot-club/wingshot-bot/internal/wire"
)

// Service is the submission ingestion surface consumed by the HTTP layer.
type Service interface {
	SubmitEntry(ctx context.Context, week int, memberID string, form *wire.Form) (*store.Submission, error)
	GetSubmission(ctx context.Context, week int, memberID string) (*store.Submission, error)
	GetWeekSubmissions(ctx context.Context, week int) ([]store.Submission, error)
}

// Datastore is the slice of the document store this module reads and writes.
type Datastore interface {
	GetMember(ctx context.Context, id string) (*store.Member, error)
	GetWeek(ctx context.Context, number int) (*store.Week, error)
	GetSubmission(ctx context.Context, week int, memberID string) (*store.Submission, error)
	GetSubmissionsForWeek(ctx context.Context, week int) ([]store.Submission, error)
	UpsertSubmission(ctx context.Context, week int, memberID, species, description string, photos []string) (*store.Submission, error)
}

// MediaStore writes attachment bytes into the content directory.
type MediaStore interface {
	SaveAttachment(ctx context.Context, week int, memberID string, att wire.Attachment) (string, error)
}
