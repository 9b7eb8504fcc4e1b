package submissionhandlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	submissionservice "github.com/wingshot-club/wingshot-bot/app/modules/submission/application"
	"github.com/wingshot-club/wingshot-bot/internal/store"
	"github.com/wingshot-club/wingshot-bot/internal/wire"
)

type fakeService struct {
	SubmitEntryFunc func(ctx context.Context, week int, memberID string, form *wire.Form) (*store.Submission, error)

	gotWeek   int
	gotMember string
	gotForm   *wire.Form
}

func (f *fakeService) SubmitEntry(ctx context.Context, week int, memberID string, form *wire.Form) (*store.Submission, error) {
	f.gotWeek, f.gotMember, f.gotForm = week, memberID, form
	if f.SubmitEntryFunc != nil {
		return f.SubmitEntryFunc(ctx, week, memberID, form)
	}
	return &store.Submission{Week: week, MemberID: memberID}, nil
}

func (f *fakeService) GetSubmission(ctx context.Context, week int, memberID string) (*store.Submission, error) {
	return nil, store.ErrNotFound
}

func (f *fakeService) GetWeekSubmissions(ctx context.Context, week int) ([]store.Submission, error) {
	return []store.Submission{}, nil
}

func newTestRouter(svc submissionservice.Service) http.Handler {
	h := NewSubmissionHandlers(svc, nil, nil, 1<<20)
	r := chi.NewRouter()
	r.Post("/api/weeks/{week}/submissions/{memberID}", h.CreateSubmission)
	r.Get("/api/weeks/{week}/submissions", h.GetWeekSubmissions)
	r.Get("/api/weeks/{week}/submissions/{memberID}", h.GetSubmission)
	return r
}

func multipartBody(boundary string) *bytes.Buffer {
	var buf bytes.Buffer
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString("Content-Disposition: form-data; name=\"species\"\r\n\r\nBald Eagle\r\n")
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString("Content-Disposition: form-data; name=\"photo\"; filename=\"a.png\"\r\n")
	buf.WriteString("Content-Type: image/png\r\n\r\n")
	buf.Write([]byte{0x89, 0x50, 0x4E, 0x47})
	buf.WriteString("\r\n--" + boundary + "--\r\n")
	return &buf
}

func TestCreateSubmission(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/weeks/3/submissions/mallory-wren", multipartBody("XYZ"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=XYZ")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 3, svc.gotWeek)
	assert.Equal(t, "mallory-wren", svc.gotMember)
	require.NotNil(t, svc.gotForm)
	assert.Equal(t, "Bald Eagle", svc.gotForm.Fields["species"])
	require.Len(t, svc.gotForm.Attachments, 1)
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, svc.gotForm.Attachments[0].Data)
}

func TestCreateSubmissionMissingBoundary(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/weeks/3/submissions/mallory-wren", multipartBody("XYZ"))
	req.Header.Set("Content-Type", "multipart/form-data")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSubmissionErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"unknown member or week", store.ErrNotFound, http.StatusNotFound},
		{"week closed", submissionservice.ErrWeekNotOpen, http.StatusConflict},
		{"missing species", submissionservice.ErrMissingSpecies, http.StatusBadRequest},
		{"internal failure", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{
				SubmitEntryFunc: func(ctx context.Context, week int, memberID string, form *wire.Form) (*store.Submission, error) {
					return nil, tt.serviceErr
				},
			}
			router := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/weeks/1/submissions/x", multipartBody("B"))
			req.Header.Set("Content-Type", "multipart/form-data; boundary=B")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCreateSubmissionInvalidWeek(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/weeks/notanumber/submissions/x", multipartBody("B"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=B")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
