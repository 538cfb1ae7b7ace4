package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImportServiceForTest(t *testing.T) (*ImportService, *ReadingService, *BookService) {
	t.Helper()
	clock := newTestClock(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	nextID := sequentialIDs("import")

	reading := NewReadingService(newFakeReadingSessionRepo(), nextID, clock.NowFunc(), nil)
	shelf := NewBookService(newFakeBookRepo(), nextID, clock.NowFunc(), nil)
	return NewImportService(shelf, reading, nil), reading, shelf
}

func TestImportService_Import_CountsEverything(t *testing.T) {
	svc, reading, shelf := newImportServiceForTest(t)
	ctx := context.Background()
	principal := Principal{UserID: "user1"}

	result, err := svc.Import(ctx, ImportParams{
		Principal: principal,
		Books: []ImportBook{
			{Input: BookInput{Title: "One", Author: "A", Genre: "Fiction", Status: "Completed"}},
			{Input: BookInput{Title: "Two", Author: "B", Genre: "Mystery", Status: "To Read"}},
		},
		Sessions: []ImportSession{
			{Date: "2026-08-26", Minutes: 30},
			{Date: "2026-08-27", Minutes: 45},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.BooksCreated)
	assert.Equal(t, 2, result.SessionsCreated)
	assert.Empty(t, result.Errors)

	books, err := shelf.ListBooks(ctx, principal)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	sessions, err := reading.ListSessions(ctx, principal)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestImportService_Import_PartialFailure(t *testing.T) {
	svc, reading, _ := newImportServiceForTest(t)
	ctx := context.Background()
	principal := Principal{UserID: "user1"}

	result, err := svc.Import(ctx, ImportParams{
		Principal: principal,
		Books: []ImportBook{
			{Input: BookInput{Title: "Good", Author: "A", Genre: "Fiction", Status: "To Read"}},
			{Input: BookInput{Title: "", Author: "B", Genre: "Fiction", Status: "To Read"}},
			{Input: BookInput{Title: "Bad Status", Author: "C", Genre: "Fiction", Status: "Reading"}},
		},
		Sessions: []ImportSession{
			{Date: "2026-08-26", Minutes: 30},
			{Date: "not-a-date", Minutes: 30},
			{Date: "2026-08-27", Minutes: 0},
		},
	})
	require.NoError(t, err, "per-item failures never abort the batch")

	assert.Equal(t, 1, result.BooksCreated)
	assert.Equal(t, 1, result.SessionsCreated)
	assert.Len(t, result.Errors, 4)

	sessions, err := reading.ListSessions(ctx, principal)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestImportService_Import_ErrorMessageIsDeterministic(t *testing.T) {
	svc, _, _ := newImportServiceForTest(t)
	ctx := context.Background()
	principal := Principal{UserID: "user1"}

	// One item failing on several fields at once must always report the
	// same field, regardless of map iteration order.
	for run := 0; run < 5; run++ {
		result, err := svc.Import(ctx, ImportParams{
			Principal: principal,
			Books:     []ImportBook{{Input: BookInput{Status: "To Read"}}},
		})
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "book 0 (): author: author is required", result.Errors[0])
	}
}

func TestImportService_Import_SessionsMergeAdditively(t *testing.T) {
	svc, reading, _ := newImportServiceForTest(t)
	ctx := context.Background()
	principal := Principal{UserID: "user1"}

	_, err := reading.LogReading(ctx, LogReadingParams{Principal: principal, Date: "2026-08-26", Minutes: 20})
	require.NoError(t, err)

	result, err := svc.Import(ctx, ImportParams{
		Principal: principal,
		Sessions:  []ImportSession{{Date: "2026-08-26", Minutes: 15}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SessionsCreated)

	sessions, err := reading.ListSessions(ctx, principal)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 35, sessions[0].Minutes)
}

func TestImportService_Import_RequiresPrincipal(t *testing.T) {
	svc, _, _ := newImportServiceForTest(t)

	_, err := svc.Import(context.Background(), ImportParams{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
