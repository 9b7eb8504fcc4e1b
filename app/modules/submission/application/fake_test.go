package submissionservice

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/wingshot-club/wingshot-bot/internal/store"
	"github.com/wingshot-club/wingshot-bot/internal/wire"
)

// ------------------------
// Fake Datastore
// ------------------------

type FakeDatastore struct {
	trace []string

	GetMemberFunc             func(ctx context.Context, id string) (*store.Member, error)
	GetWeekFunc               func(ctx context.Context, number int) (*store.Week, error)
	GetSubmissionFunc         func(ctx context.Context, week int, memberID string) (*store.Submission, error)
	GetSubmissionsForWeekFunc func(ctx context.Context, week int) ([]store.Submission, error)
	UpsertSubmissionFunc      func(ctx context.Context, week int, memberID, species, description string, photos []string) (*store.Submission, error)
}

func NewFakeDatastore() *FakeDatastore {
	return &FakeDatastore{trace: []string{}}
}

func (f *FakeDatastore) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeDatastore) GetMember(ctx context.Context, id string) (*store.Member, error) {
	f.record("GetMember")
	if f.GetMemberFunc != nil {
		return f.GetMemberFunc(ctx, id)
	}
	return &store.Member{ID: id, Name: "Fake Member"}, nil
}

func (f *FakeDatastore) GetWeek(ctx context.Context, number int) (*store.Week, error) {
	f.record("GetWeek")
	if f.GetWeekFunc != nil {
		return f.GetWeekFunc(ctx, number)
	}
	return &store.Week{Number: number, Status: store.WeekStatusActive}, nil
}

func (f *FakeDatastore) GetSubmission(ctx context.Context, week int, memberID string) (*store.Submission, error) {
	f.record("GetSubmission")
	if f.GetSubmissionFunc != nil {
		return f.GetSubmissionFunc(ctx, week, memberID)
	}
	return nil, store.ErrNotFound
}

func (f *FakeDatastore) GetSubmissionsForWeek(ctx context.Context, week int) ([]store.Submission, error) {
	f.record("GetSubmissionsForWeek")
	if f.GetSubmissionsForWeekFunc != nil {
		return f.GetSubmissionsForWeekFunc(ctx, week)
	}
	return []store.Submission{}, nil
}

func (f *FakeDatastore) UpsertSubmission(ctx context.Context, week int, memberID, species, description string, photos []string) (*store.Submission, error) {
	f.record("UpsertSubmission")
	if f.UpsertSubmissionFunc != nil {
		return f.UpsertSubmissionFunc(ctx, week, memberID, species, description, photos)
	}
	return &store.Submission{Week: week, MemberID: memberID, Species: species, Description: description, Photos: photos}, nil
}

// ------------------------
// Fake MediaStore
// ------------------------

type FakeMediaStore struct {
	Saved              []wire.Attachment
	SaveAttachmentFunc func(ctx context.Context, week int, memberID string, att wire.Attachment) (string, error)
}

func (f *FakeMediaStore) SaveAttachment(ctx context.Context, week int, memberID string, att wire.Attachment) (string, error) {
	f.Saved = append(f.Saved, att)
	if f.SaveAttachmentFunc != nil {
		return f.SaveAttachmentFunc(ctx, week, memberID, att)
	}
	return "content/fake/" + att.StorageName, nil
}

// ------------------------
// Fake EventBus
// ------------------------

type FakeEventBus struct {
	Published   []string
	PublishFunc func(ctx context.Context, topic string, payload any) error
}

func (f *FakeEventBus) Publish(ctx context.Context, topic string, payload any) error {
	f.Published = append(f.Published, topic)
	if f.PublishFunc != nil {
		return f.PublishFunc(ctx, topic, payload)
	}
	return nil
}

func (f *FakeEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *FakeEventBus) Close() error { return nil }
