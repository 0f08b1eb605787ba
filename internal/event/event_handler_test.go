package event_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hr-calendar/internal/domain"
	"hr-calendar/internal/event"
	eventerrors "hr-calendar/internal/event/errors"
	"hr-calendar/internal/middleware"
	"hr-calendar/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

type fakeEventService struct {
	event.Service
	createFn      func(ctx context.Context, p domain.Principal, req event.CreateEventRequest) (event.EventResponse, error)
	createLeaveFn func(ctx context.Context, p domain.Principal, req event.CreateLeaveRequest) (event.EventResponse, error)
	listFn        func(ctx context.Context, p domain.Principal, q event.ListEventsQuery) ([]event.EventResponse, error)
	rejectFn      func(ctx context.Context, p domain.Principal, id, reason string) (event.EventResponse, error)
	deleteFn      func(ctx context.Context, p domain.Principal, id string) error
	attachFn      func(ctx context.Context, p domain.Principal, id string, file event.SickNoteUpload) (event.EventResponse, error)
	openFn        func(ctx context.Context, p domain.Principal, name string) (storage.Object, error)
}

func (f *fakeEventService) Create(ctx context.Context, p domain.Principal, req event.CreateEventRequest) (event.EventResponse, error) {
	return f.createFn(ctx, p, req)
}

func (f *fakeEventService) CreateLeaveRequest(ctx context.Context, p domain.Principal, req event.CreateLeaveRequest) (event.EventResponse, error) {
	return f.createLeaveFn(ctx, p, req)
}

func (f *fakeEventService) List(ctx context.Context, p domain.Principal, q event.ListEventsQuery) ([]event.EventResponse, error) {
	return f.listFn(ctx, p, q)
}

func (f *fakeEventService) Reject(ctx context.Context, p domain.Principal, id, reason string) (event.EventResponse, error) {
	return f.rejectFn(ctx, p, id, reason)
}

func (f *fakeEventService) Delete(ctx context.Context, p domain.Principal, id string) error {
	return f.deleteFn(ctx, p, id)
}

func (f *fakeEventService) AttachSickNote(ctx context.Context, p domain.Principal, id string, file event.SickNoteUpload) (event.EventResponse, error) {
	return f.attachFn(ctx, p, id, file)
}

func (f *fakeEventService) OpenSickNote(ctx context.Context, p domain.Principal, name string) (storage.Object, error) {
	return f.openFn(ctx, p, name)
}

type fakeRBAC struct {
	allowed bool
	got     []domain.EnforceRequest
}

func (f *fakeRBAC) LoadPolicy(policies, inheritance [][]string) error { return nil }

func (f *fakeRBAC) Enforce(req domain.EnforceRequest) (bool, error) {
	f.got = append(f.got, req)
	return f.allowed, nil
}

func (f *fakeRBAC) Permissions(role string) ([]domain.PermissionResponse, error) { return nil, nil }

func newTestContext(method, target string, body io.Reader, p *domain.Principal) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, body)
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	if p != nil {
		middleware.SetPrincipal(c, *p)
	}
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestEventHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := domain.Principal{UserID: uuid.New(), CompanyID: uuid.New(), Role: domain.RoleEmployee}

	t.Run("created", func(t *testing.T) {
		svc := &fakeEventService{
			createFn: func(ctx context.Context, got domain.Principal, req event.CreateEventRequest) (event.EventResponse, error) {
				assert.Equal(t, p, got)
				assert.Equal(t, domain.EventTypeTraining, req.Type)
				return event.EventResponse{ID: "ev-1", Status: domain.StatusApproved}, nil
			},
		}
		c, w := newTestContext(http.MethodPost, "/events",
			strings.NewReader(`{"type":"Training","start_ts":"2026-03-05","end_ts":"2026-03-06"}`), &p)

		event.NewHandler(svc, &fakeRBAC{}).Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeEnvelope(t, w).Ok)
	})

	t.Run("unknown type fails validation", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/events",
			strings.NewReader(`{"type":"Party","start_ts":"2026-03-05","end_ts":"2026-03-06"}`), &p)

		event.NewHandler(&fakeEventService{}, &fakeRBAC{}).Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("no principal", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/events", strings.NewReader(`{}`), nil)

		event.NewHandler(&fakeEventService{}, &fakeRBAC{}).Create(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("service error is mapped", func(t *testing.T) {
		svc := &fakeEventService{
			createFn: func(context.Context, domain.Principal, event.CreateEventRequest) (event.EventResponse, error) {
				return event.EventResponse{}, eventerrors.ErrPastDated
			},
		}
		c, w := newTestContext(http.MethodPost, "/events",
			strings.NewReader(`{"type":"Other","start_ts":"2020-01-01","end_ts":"2020-01-02"}`), &p)

		event.NewHandler(svc, &fakeRBAC{}).Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, eventerrors.ErrPastDated.Message, decodeEnvelope(t, w).Error.Message)
	})
}

func TestEventHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := domain.Principal{UserID: uuid.New(), CompanyID: uuid.New(), Role: domain.RoleEmployee}

	t.Run("plain range needs no extra permission", func(t *testing.T) {
		rb := &fakeRBAC{}
		svc := &fakeEventService{
			listFn: func(ctx context.Context, _ domain.Principal, q event.ListEventsQuery) ([]event.EventResponse, error) {
				assert.Equal(t, "Leave", q.Type)
				return []event.EventResponse{{ID: "a"}}, nil
			},
		}
		c, w := newTestContext(http.MethodGet, "/events?start=2026-03-01&end=2026-04-01&type=Leave", nil, &p)

		event.NewHandler(svc, rb).List(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, rb.got)
	})

	t.Run("department filter is admin only", func(t *testing.T) {
		rb := &fakeRBAC{allowed: false}
		c, w := newTestContext(http.MethodGet, "/events?start=2026-03-01&end=2026-04-01&department=Ops", nil, &p)

		event.NewHandler(&fakeEventService{}, rb).List(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		require.Len(t, rb.got, 1)
		assert.Equal(t, domain.EnforceRequest{Role: domain.RoleEmployee, Resource: "event", Action: "filter_any"}, rb.got[0])
	})

	t.Run("admin may filter by user", func(t *testing.T) {
		admin := p
		admin.Role = domain.RoleAdmin
		target := uuid.NewString()
		svc := &fakeEventService{
			listFn: func(ctx context.Context, _ domain.Principal, q event.ListEventsQuery) ([]event.EventResponse, error) {
				assert.Equal(t, target, q.UserID)
				return nil, nil
			},
		}
		c, w := newTestContext(http.MethodGet, "/events?start=2026-03-01&end=2026-04-01&user_id="+target, nil, &admin)

		event.NewHandler(svc, &fakeRBAC{allowed: true}).List(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("range is required", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/events?start=2026-03-01", nil, &p)

		event.NewHandler(&fakeEventService{}, &fakeRBAC{}).List(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEventHandler_Reject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := domain.Principal{UserID: uuid.New(), CompanyID: uuid.New(), Role: domain.RoleSupervisor}

	t.Run("empty body uses the default reason", func(t *testing.T) {
		svc := &fakeEventService{
			rejectFn: func(ctx context.Context, _ domain.Principal, id, reason string) (event.EventResponse, error) {
				assert.Equal(t, "ev-1", id)
				assert.Empty(t, reason)
				return event.EventResponse{ID: id, Status: domain.StatusRejected}, nil
			},
		}
		c, w := newTestContext(http.MethodPost, "/leave/requests/ev-1/reject", nil, &p)
		c.Params = gin.Params{{Key: "id", Value: "ev-1"}}

		event.NewHandler(svc, &fakeRBAC{}).Reject(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("reason is passed through", func(t *testing.T) {
		svc := &fakeEventService{
			rejectFn: func(ctx context.Context, _ domain.Principal, id, reason string) (event.EventResponse, error) {
				assert.Equal(t, "overlaps release", reason)
				return event.EventResponse{}, nil
			},
		}
		c, w := newTestContext(http.MethodPost, "/leave/requests/ev-1/reject", strings.NewReader(`{"reason":"overlaps release"}`), &p)
		c.Params = gin.Params{{Key: "id", Value: "ev-1"}}

		event.NewHandler(svc, &fakeRBAC{}).Reject(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestEventHandler_CreateLeaveRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := domain.Principal{UserID: uuid.New(), CompanyID: uuid.New(), Role: domain.RoleEmployee}

	svc := &fakeEventService{
		createLeaveFn: func(ctx context.Context, _ domain.Principal, req event.CreateLeaveRequest) (event.EventResponse, error) {
			assert.Equal(t, "2026-03-10", req.StartTS)
			return event.EventResponse{Status: domain.StatusPending}, nil
		},
	}
	c, w := newTestContext(http.MethodPost, "/leave/requests", strings.NewReader(`{"start_ts":"2026-03-10","end_ts":"2026-03-12"}`), &p)

	event.NewHandler(svc, &fakeRBAC{}).CreateLeaveRequest(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestEventHandler_Delete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := domain.Principal{UserID: uuid.New(), CompanyID: uuid.New(), Role: domain.RoleEmployee}

	svc := &fakeEventService{
		deleteFn: func(context.Context, domain.Principal, string) error { return eventerrors.ErrNotOwner },
	}
	c, w := newTestContext(http.MethodDelete, "/events/x", nil, &p)
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}

	event.NewHandler(svc, &fakeRBAC{}).Delete(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEventHandler_SickNote(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := domain.Principal{UserID: uuid.New(), CompanyID: uuid.New(), Role: domain.RoleEmployee}

	t.Run("upload sniffs the content type", func(t *testing.T) {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		part, err := mw.CreateFormFile("file", "note.txt")
		require.NoError(t, err)
		_, _ = part.Write([]byte("%PDF-1.7\n1 0 obj"))
		require.NoError(t, mw.Close())

		svc := &fakeEventService{
			attachFn: func(ctx context.Context, _ domain.Principal, id string, file event.SickNoteUpload) (event.EventResponse, error) {
				assert.Equal(t, "application/pdf", file.ContentType)
				assert.Equal(t, "note.txt", file.FileName)
				b, _ := io.ReadAll(file.Body)
				assert.Equal(t, "%PDF-1.7\n1 0 obj", string(b))
				return event.EventResponse{ID: id}, nil
			},
		}
		c, w := newTestContext(http.MethodPost, "/events/ev-1/sick-note", body, &p)
		c.Request.Header.Set("Content-Type", mw.FormDataContentType())
		c.Params = gin.Params{{Key: "id", Value: "ev-1"}}

		event.NewHandler(svc, &fakeRBAC{}).UploadSickNote(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/events/ev-1/sick-note", strings.NewReader("{}"), &p)

		event.NewHandler(&fakeEventService{}, &fakeRBAC{}).UploadSickNote(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("download streams the object", func(t *testing.T) {
		svc := &fakeEventService{
			openFn: func(ctx context.Context, _ domain.Principal, name string) (storage.Object, error) {
				assert.Equal(t, "a.pdf", name)
				return storage.Object{Body: io.NopCloser(strings.NewReader("%PDF")), ContentType: "application/pdf", ContentLength: 4}, nil
			},
		}
		c, w := newTestContext(http.MethodGet, "/files/sick-notes/a.pdf", nil, &p)
		c.Params = gin.Params{{Key: "name", Value: "a.pdf"}}

		event.NewHandler(svc, &fakeRBAC{}).DownloadSickNote(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, "%PDF", w.Body.String())
	})

	t.Run("download forbidden", func(t *testing.T) {
		svc := &fakeEventService{
			openFn: func(context.Context, domain.Principal, string) (storage.Object, error) {
				return storage.Object{}, eventerrors.ErrSickNoteForbidden
			},
		}
		c, w := newTestContext(http.MethodGet, "/files/sick-notes/a.pdf", nil, &p)
		c.Params = gin.Params{{Key: "name", Value: "a.pdf"}}

		event.NewHandler(svc, &fakeRBAC{}).DownloadSickNote(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
