package testfixtures

import (
	"context"
	"testing"

	"github.com/example/reading-nook/internal/application"
	"github.com/example/reading-nook/internal/persistence"
)

type capturingSessionRepo struct {
	added persistence.ReadingSession
}

func (c *capturingSessionRepo) FindSessionByDate(ctx context.Context, userID, date string) (persistence.ReadingSession, error) {
	return persistence.ReadingSession{}, persistence.ErrNotFound
}

func (c *capturingSessionRepo) ListSessions(ctx context.Context, userID string) ([]persistence.ReadingSession, error) {
	return nil, nil
}

func (c *capturingSessionRepo) AddMinutes(ctx context.Context, session persistence.ReadingSession) (persistence.ReadingSession, error) {
	c.added = session
	return session, nil
}

func (c *capturingSessionRepo) SetMinutes(ctx context.Context, session persistence.ReadingSession) (persistence.ReadingSession, error) {
	return session, nil
}

func (c *capturingSessionRepo) DeleteSessionByDate(ctx context.Context, userID, date string) error {
	return nil
}

func TestServiceFactoryNewReadingService(t *testing.T) {
	factory := NewServiceFactory(WithClock(NewClock(ReferenceTime())))
	repo := &capturingSessionRepo{}

	svc := factory.NewReadingService(ReadingServiceDeps{Sessions: repo})
	principal := application.Principal{UserID: "user-001"}
	date := ReferenceTime().AddDate(0, 0, -1).Format("2006-01-02")

	result, err := svc.LogReading(context.Background(), application.LogReadingParams{
		Principal: principal,
		Date:      date,
		Minutes:   30,
	})
	if err != nil {
		t.Fatalf("LogReading returned error: %v", err)
	}

	if result.Session.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", result.Session.ID)
	}
	if repo.added.ID != result.Session.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.added.ID)
	}
	if repo.added.Date != date || repo.added.Minutes != 30 {
		t.Fatalf("repository received unexpected entry: %+v", repo.added)
	}
}
