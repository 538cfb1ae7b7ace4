package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/reading-nook/internal/application"
	"github.com/example/reading-nook/internal/persistence"
)

type stubReadingService struct {
	listFunc func(ctx context.Context, principal application.Principal) ([]persistence.ReadingSession, error)
	logFunc  func(ctx context.Context, params application.LogReadingParams) (application.LogReadingResult, error)
	setFunc  func(ctx context.Context, params application.SetReadingParams) (application.SetReadingResult, error)
}

func (s *stubReadingService) ListSessions(ctx context.Context, principal application.Principal) ([]persistence.ReadingSession, error) {
	return s.listFunc(ctx, principal)
}

func (s *stubReadingService) LogReading(ctx context.Context, params application.LogReadingParams) (application.LogReadingResult, error) {
	return s.logFunc(ctx, params)
}

func (s *stubReadingService) SetReading(ctx context.Context, params application.SetReadingParams) (application.SetReadingResult, error) {
	return s.setFunc(ctx, params)
}

type stubBookService struct {
	listFunc   func(ctx context.Context, principal application.Principal) ([]persistence.Book, error)
	createFunc func(ctx context.Context, params application.CreateBookParams) (persistence.Book, error)
	updateFunc func(ctx context.Context, params application.UpdateBookParams) (persistence.Book, error)
	deleteFunc func(ctx context.Context, principal application.Principal, bookID string) error
}

func (s *stubBookService) ListBooks(ctx context.Context, principal application.Principal) ([]persistence.Book, error) {
	return s.listFunc(ctx, principal)
}

func (s *stubBookService) CreateBook(ctx context.Context, params application.CreateBookParams) (persistence.Book, error) {
	return s.createFunc(ctx, params)
}

func (s *stubBookService) UpdateBook(ctx context.Context, params application.UpdateBookParams) (persistence.Book, error) {
	return s.updateFunc(ctx, params)
}

func (s *stubBookService) DeleteBook(ctx context.Context, principal application.Principal, bookID string) error {
	return s.deleteFunc(ctx, principal, bookID)
}

func authedRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := ContextWithPrincipal(req.Context(), application.Principal{UserID: "user1"})
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestSessionHandler_Log_CreatedVsMerged(t *testing.T) {
	merged := false
	service := &stubReadingService{
		logFunc: func(_ context.Context, params application.LogReadingParams) (application.LogReadingResult, error) {
			return application.LogReadingResult{
				Session: persistence.ReadingSession{ID: "s1", Date: params.Date, Minutes: params.Minutes},
				Merged:  merged,
			}, nil
		},
	}
	handler := NewSessionHandler(service, nil)

	rec := httptest.NewRecorder()
	handler.Log(rec, authedRequest(t, http.MethodPost, "/api/reading-sessions", `{"date":"2026-08-27","minutes":30}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Reading session created successfully", env.Message)

	merged = true
	rec = httptest.NewRecorder()
	handler.Log(rec, authedRequest(t, http.MethodPost, "/api/reading-sessions", `{"date":"2026-08-27","minutes":15}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	env = decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Reading session updated successfully", env.Message)
}

func TestSessionHandler_Log_ValidationDetails(t *testing.T) {
	service := &stubReadingService{
		logFunc: func(context.Context, application.LogReadingParams) (application.LogReadingResult, error) {
			return application.LogReadingResult{}, &application.ValidationError{
				FieldErrors: map[string]string{"date": "date cannot be in the future"},
			}
		},
	}
	handler := NewSessionHandler(service, nil)

	rec := httptest.NewRecorder()
	handler.Log(rec, authedRequest(t, http.MethodPost, "/api/reading-sessions", `{"date":"2030-01-01","minutes":30}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "validation failed", env.Error)
	assert.Equal(t, "date cannot be in the future", env.Details["date"])
}

func TestSessionHandler_Log_MissingPrincipal(t *testing.T) {
	handler := NewSessionHandler(&stubReadingService{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reading-sessions", strings.NewReader(`{}`))
	handler.Log(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
}

func TestSessionHandler_Log_BadBody(t *testing.T) {
	handler := NewSessionHandler(&stubReadingService{}, nil)

	rec := httptest.NewRecorder()
	handler.Log(rec, authedRequest(t, http.MethodPost, "/api/reading-sessions", `{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
}

func TestSessionHandler_Set_DeletedEntry(t *testing.T) {
	service := &stubReadingService{
		setFunc: func(context.Context, application.SetReadingParams) (application.SetReadingResult, error) {
			return application.SetReadingResult{Deleted: true}, nil
		},
	}
	handler := NewSessionHandler(service, nil)

	rec := httptest.NewRecorder()
	handler.Set(rec, authedRequest(t, http.MethodPut, "/api/reading-sessions", `{"date":"2026-08-27","minutes":0}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Reading session removed", env.Message)
}

func TestBookHandler_Update_ForbiddenAndNotFound(t *testing.T) {
	service := &stubBookService{
		updateFunc: func(_ context.Context, params application.UpdateBookParams) (persistence.Book, error) {
			if params.BookID == "foreign" {
				return persistence.Book{}, application.ErrForbidden
			}
			return persistence.Book{}, application.ErrNotFound
		},
	}
	handler := NewBookHandler(service, nil)

	rec := httptest.NewRecorder()
	req := authedRequest(t, http.MethodPut, "/api/books/foreign", `{"title":"T"}`)
	req = req.WithContext(ContextWithBookID(req.Context(), "foreign"))
	handler.Update(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)

	rec = httptest.NewRecorder()
	req = authedRequest(t, http.MethodPut, "/api/books/missing", `{"title":"T"}`)
	req = req.WithContext(ContextWithBookID(req.Context(), "missing"))
	handler.Update(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookHandler_List_WrapsData(t *testing.T) {
	service := &stubBookService{
		listFunc: func(context.Context, application.Principal) ([]persistence.Book, error) {
			return []persistence.Book{
				{ID: "b1", Title: "One", Author: "A", Genre: "Fiction", Status: persistence.StatusToRead},
			}, nil
		},
	}
	handler := NewBookHandler(service, nil)

	rec := httptest.NewRecorder()
	handler.List(rec, authedRequest(t, http.MethodGet, "/api/books", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var books []bookDTO
	require.NoError(t, json.Unmarshal(raw, &books))
	require.Len(t, books, 1)
	assert.Equal(t, "One", books[0].Title)
	assert.NotNil(t, books[0].Quotes)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	service := &stubBookService{
		listFunc: func(context.Context, application.Principal) ([]persistence.Book, error) {
			return nil, nil
		},
	}
	router := NewRouter(RouterConfig{Books: NewBookHandler(service, nil)})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/books", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Header().Get("Allow"), http.MethodGet)
}

func TestRouter_BookPathResolution(t *testing.T) {
	var captured string
	service := &stubBookService{
		deleteFunc: func(_ context.Context, _ application.Principal, bookID string) error {
			captured = bookID
			return nil
		},
	}
	router := NewRouter(RouterConfig{Books: NewBookHandler(service, nil)})

	rec := httptest.NewRecorder()
	req := authedRequest(t, http.MethodDelete, "/api/books/book-42", "")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "book-42", captured)

	// A trailing sub-path is not a valid book id.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodDelete, "/api/books/book-42/extra", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicRoute(t *testing.T) {
	assert.True(t, PublicRoute("/api/auth/register"))
	assert.True(t, PublicRoute("/api/auth/login"))
	assert.False(t, PublicRoute("/api/auth/logout"))
	assert.False(t, PublicRoute("/api/books"))
}
