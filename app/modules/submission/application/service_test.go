package submissionservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingshot-club/wingshot-bot/app/events"
	"github.com/wingshot-club/wingshot-bot/internal/store"
	"github.com/wingshot-club/wingshot-bot/internal/wire"
)

func newService(ds *FakeDatastore, ms *FakeMediaStore, bus *FakeEventBus) *SubmissionService {
	return NewSubmissionService(ds, ms, bus, slog.Default(), nil, nil)
}

func entryForm(species string, attachments ...wire.Attachment) *wire.Form {
	form := &wire.Form{Fields: map[string]string{}}
	if species != "" {
		form.Fields["species"] = species
	}
	form.Attachments = attachments
	return form
}

func TestSubmitEntry(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*FakeDatastore)
		form        *wire.Form
		wantErr     error
		wantPhotos  int
		wantTopic   bool
	}{
		{
			name:       "happy path with one photo",
			setup:      func(f *FakeDatastore) {},
			form:       entryForm("Bald Eagle", wire.Attachment{FieldName: "photo", Filename: "a.png", StorageName: "x.png", Data: []byte{1, 2}}),
			wantPhotos: 1,
			wantTopic:  true,
		},
		{
			name: "unknown member",
			setup: func(f *FakeDatastore) {
				f.GetMemberFunc = func(ctx context.Context, id string) (*store.Member, error) {
					return nil, store.ErrNotFound
				}
			},
			form:    entryForm("Bald Eagle"),
			wantErr: store.ErrNotFound,
		},
		{
			name: "unknown week",
			setup: func(f *FakeDatastore) {
				f.GetWeekFunc = func(ctx context.Context, number int) (*store.Week, error) {
					return nil, store.ErrNotFound
				}
			},
			form:    entryForm("Bald Eagle"),
			wantErr: store.ErrNotFound,
		},
		{
			name: "week not accepting submissions",
			setup: func(f *FakeDatastore) {
				f.GetWeekFunc = func(ctx context.Context, number int) (*store.Week, error) {
					return &store.Week{Number: number, Status: store.WeekStatusUpcoming}, nil
				}
			},
			form:    entryForm("Bald Eagle"),
			wantErr: ErrWeekNotOpen,
		},
		{
			name:    "missing species",
			setup:   func(f *FakeDatastore) {},
			form:    entryForm("   "),
			wantErr: ErrMissingSpecies,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeDS := NewFakeDatastore()
			tt.setup(fakeDS)
			fakeMedia := &FakeMediaStore{}
			fakeBus := &FakeEventBus{}

			sub, err := newService(fakeDS, fakeMedia, fakeBus).SubmitEntry(context.Background(), 1, "mallory-wren", tt.form)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, fakeBus.Published)
				return
			}

			require.NoError(t, err)
			assert.Len(t, sub.Photos, tt.wantPhotos)
			if tt.wantTopic {
				assert.Equal(t, []string{events.TopicSubmissionReceived}, fakeBus.Published)
			}
		})
	}
}

func TestSubmitEntryStoresAttachmentsBeforeUpsert(t *testing.T) {
	fakeDS := NewFakeDatastore()
	var upsertedPhotos []string
	fakeDS.UpsertSubmissionFunc = func(ctx context.Context, week int, memberID, species, description string, photos []string) (*store.Submission, error) {
		upsertedPhotos = photos
		return &store.Submission{Week: week, MemberID: memberID, Species: species, Photos: photos}, nil
	}
	fakeMedia := &FakeMediaStore{}

	form := entryForm("Osprey",
		wire.Attachment{FieldName: "photo", Filename: "a.png", StorageName: "one.png"},
		wire.Attachment{FieldName: "photo", Filename: "b.jpg", StorageName: "two.jpg"},
	)

	_, err := newService(fakeDS, fakeMedia, &FakeEventBus{}).SubmitEntry(context.Background(), 2, "jesse-finch", form)
	require.NoError(t, err)

	require.Len(t, fakeMedia.Saved, 2)
	assert.Equal(t, []string{"content/fake/one.png", "content/fake/two.jpg"}, upsertedPhotos)
}

func TestSubmitEntryAttachmentWriteFailure(t *testing.T) {
	fakeDS := NewFakeDatastore()
	fakeMedia := &FakeMediaStore{
		SaveAttachmentFunc: func(ctx context.Context, week int, memberID string, att wire.Attachment) (string, error) {
			return "", errors.New("disk full")
		},
	}

	form := entryForm("Osprey", wire.Attachment{FieldName: "photo", Filename: "a.png", StorageName: "one.png"})

	_, err := newService(fakeDS, fakeMedia, &FakeEventBus{}).SubmitEntry(context.Background(), 1, "jesse-finch", form)
	require.Error(t, err)
	// The upsert must not run when an attachment write failed.
	assert.NotContains(t, fakeDS.trace, "UpsertSubmission")
}

func TestSubmitEntryFlagsResubmission(t *testing.T) {
	fakeDS := NewFakeDatastore()
	fakeDS.GetSubmissionFunc = func(ctx context.Context, week int, memberID string) (*store.Submission, error) {
		return &store.Submission{Week: week, MemberID: memberID}, nil
	}
	fakeBus := &FakeEventBus{}
	var gotPayload events.SubmissionReceived
	fakeBus.PublishFunc = func(ctx context.Context, topic string, payload any) error {
		gotPayload = payload.(events.SubmissionReceived)
		return nil
	}

	_, err := newService(fakeDS, &FakeMediaStore{}, fakeBus).SubmitEntry(context.Background(), 1, "mallory-wren", entryForm("Merlin"))
	require.NoError(t, err)
	assert.True(t, gotPayload.Resubmission)
}
